package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
	"github.com/openmusic/openmusic-server/internal/media/images"
	"github.com/openmusic/openmusic-server/internal/store"
)

// CoverService stores album cover images.
type CoverService struct {
	store     store.Store
	processor *images.Processor
	logger    *slog.Logger
}

// NewCoverService creates a new cover service.
func NewCoverService(store store.Store, processor *images.Processor, logger *slog.Logger) *CoverService {
	return &CoverService{
		store:     store,
		processor: processor,
		logger:    logger,
	}
}

// Upload validates and stores data as the album's cover, replacing any
// previous one.
func (s *CoverService) Upload(ctx context.Context, albumID string, data []byte) (*images.Cover, error) {
	album, err := s.store.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, fromStore(err, msgAlbumNotFound, "get album")
	}

	cover, err := s.processor.Process(ctx, albumID, data)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateAlbumCover(ctx, albumID, cover.Key, cover.BlurHash); err != nil {
		// The album vanished between the lookup and the update.
		s.remove(ctx, cover.Key)
		return nil, fromStore(err, msgAlbumNotFound, "update album cover")
	}

	if album.HasCover() && album.Cover != cover.Key {
		s.remove(ctx, album.Cover)
	}

	s.logger.Info("album cover uploaded",
		"album_id", albumID,
		"key", cover.Key,
		"content_type", cover.ContentType,
		"size", cover.Size,
	)
	return cover, nil
}

// URL returns the public address of a stored cover, or "" for no cover.
func (s *CoverService) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.processor.Storage().URL(key)
}

// Open streams a stored cover.
func (s *CoverService) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.processor.Storage().Open(ctx, key)
	if errors.Is(err, images.ErrNotFound) {
		return nil, domainerrors.NotFound("Cover is not found")
	}
	if err != nil {
		return nil, fmt.Errorf("open cover: %w", err)
	}
	return rc, nil
}

// remove deletes a cover file, logging failures.
func (s *CoverService) remove(ctx context.Context, key string) {
	if err := s.processor.Storage().Delete(ctx, key); err != nil && !errors.Is(err, images.ErrNotFound) {
		s.logger.Warn("failed to delete cover", "key", key, "error", err)
	}
}
