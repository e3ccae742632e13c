package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openmusic/openmusic-server/internal/cache"
	"github.com/openmusic/openmusic-server/internal/domain"
	"github.com/openmusic/openmusic-server/internal/id"
	"github.com/openmusic/openmusic-server/internal/store"
)

const msgAlbumNotFound = "Album is not found"

// AlbumPayload is the body accepted when creating or replacing an album.
type AlbumPayload struct {
	Name string `json:"name" validate:"required"`
	Year int    `json:"year" validate:"required,min=1900,notfuture"`
}

// AlbumService manages albums and their track listings.
type AlbumService struct {
	store  store.Store
	cache  cache.Cache
	covers *CoverService
	logger *slog.Logger
}

// NewAlbumService creates a new album service. covers may be nil, in which
// case cover files are left in place when an album is deleted.
func NewAlbumService(store store.Store, c cache.Cache, covers *CoverService, logger *slog.Logger) *AlbumService {
	return &AlbumService{
		store:  store,
		cache:  c,
		covers: covers,
		logger: logger,
	}
}

// Create stores a new album and returns its ID.
func (s *AlbumService) Create(ctx context.Context, p AlbumPayload) (string, error) {
	if err := validate.Validate(p); err != nil {
		return "", err
	}

	albumID, err := id.Generate("album")
	if err != nil {
		return "", fmt.Errorf("generate album ID: %w", err)
	}

	album := &domain.Album{ID: albumID, Name: p.Name, Year: p.Year}
	album.InitTimestamps()

	if err := s.store.CreateAlbum(ctx, album); err != nil {
		return "", fromStore(err, msgAlbumNotFound, "create album")
	}

	s.logger.Info("album created", "album_id", albumID, "name", p.Name)
	return albumID, nil
}

// Get returns an album with its songs.
func (s *AlbumService) Get(ctx context.Context, albumID string) (*domain.AlbumWithSongs, error) {
	album, err := s.store.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, fromStore(err, msgAlbumNotFound, "get album")
	}

	songs, err := s.store.ListAlbumSongs(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("list album songs: %w", err)
	}

	return &domain.AlbumWithSongs{Album: *album, Songs: songs}, nil
}

// Update replaces an album's name and year.
func (s *AlbumService) Update(ctx context.Context, albumID string, p AlbumPayload) error {
	if err := validate.Validate(p); err != nil {
		return err
	}

	album := &domain.Album{ID: albumID, Name: p.Name, Year: p.Year}
	album.Touch()

	if err := s.store.UpdateAlbum(ctx, album); err != nil {
		return fromStore(err, msgAlbumNotFound, "update album")
	}
	return nil
}

// Delete removes an album together with its songs and likes.
func (s *AlbumService) Delete(ctx context.Context, albumID string) error {
	album, err := s.store.GetAlbum(ctx, albumID)
	if err != nil {
		return fromStore(err, msgAlbumNotFound, "get album")
	}

	if err := s.store.DeleteAlbum(ctx, albumID); err != nil {
		return fromStore(err, msgAlbumNotFound, "delete album")
	}

	cache.Invalidate(ctx, s.cache, s.logger, likeCacheKey(albumID))
	if album.HasCover() && s.covers != nil {
		s.covers.remove(ctx, album.Cover)
	}

	s.logger.Info("album deleted", "album_id", albumID)
	return nil
}
