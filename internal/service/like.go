package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openmusic/openmusic-server/internal/cache"
	"github.com/openmusic/openmusic-server/internal/domain"
	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
	"github.com/openmusic/openmusic-server/internal/id"
	"github.com/openmusic/openmusic-server/internal/metrics"
	"github.com/openmusic/openmusic-server/internal/store"
)

func likeCacheKey(albumID string) string {
	return "albumlike:" + albumID
}

// LikeService toggles album likes and serves cached like counts.
type LikeService struct {
	store   store.Store
	cache   cache.Cache
	counts  cache.Aside[int]
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewLikeService creates a new like service. Counts are cached for ttl.
func NewLikeService(store store.Store, c cache.Cache, ttl time.Duration, m *metrics.Collector, logger *slog.Logger) *LikeService {
	return &LikeService{
		store: store,
		cache: c,
		counts: cache.Aside[int]{
			Cache:    c,
			TTL:      ttl,
			Logger:   logger,
			Observer: m,
		},
		metrics: m,
		logger:  logger,
	}
}

// Toggle likes the album if userID has not liked it yet, and removes the like
// otherwise. It reports whether the album is liked afterwards.
func (s *LikeService) Toggle(ctx context.Context, userID, albumID string) (bool, error) {
	likeID, err := id.Generate("like")
	if err != nil {
		return false, fmt.Errorf("generate like ID: %w", err)
	}

	var liked bool
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		ok, err := tx.AlbumExists(ctx, albumID)
		if err != nil {
			return fmt.Errorf("check album: %w", err)
		}
		if !ok {
			return domainerrors.NotFound(msgAlbumNotFound)
		}

		n, err := tx.DeleteAlbumLike(ctx, albumID, userID)
		if err != nil {
			return fmt.Errorf("delete album like: %w", err)
		}
		if n > 0 {
			liked = false
			return nil
		}

		got, err := tx.InsertAlbumLike(ctx, &domain.AlbumLike{
			ID:        likeID,
			UserID:    userID,
			AlbumID:   albumID,
			CreatedAt: time.Now(),
		})
		if err != nil || got == "" {
			return invariant("Failed to add album like", err)
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, err
	}

	cache.Invalidate(ctx, s.cache, s.logger, likeCacheKey(albumID))
	s.metrics.LikeToggled(liked)

	s.logger.Debug("album like toggled", "album_id", albumID, "user_id", userID, "liked", liked)
	return liked, nil
}

// Count returns the number of likes on an album, from the cache when possible.
func (s *LikeService) Count(ctx context.Context, albumID string) (domain.LikeCount, error) {
	n, fromCache, err := s.counts.GetOrPopulate(ctx, likeCacheKey(albumID), func(ctx context.Context) (int, error) {
		n, err := s.store.CountAlbumLikes(ctx, albumID)
		if errors.Is(err, store.ErrNotFound) {
			return 0, domainerrors.NotFound(msgAlbumNotFound)
		}
		if err != nil {
			return 0, fmt.Errorf("count album likes: %w", err)
		}
		return n, nil
	})
	if err != nil {
		return domain.LikeCount{}, err
	}
	return domain.LikeCount{Count: n, FromCache: fromCache}, nil
}
