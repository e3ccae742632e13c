package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openmusic/openmusic-server/internal/domain"
	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
	"github.com/openmusic/openmusic-server/internal/id"
	"github.com/openmusic/openmusic-server/internal/store"
)

const msgSongNotFound = "Song is not found"

// SongPayload is the body accepted when creating or replacing a song.
type SongPayload struct {
	Title     string `json:"title" validate:"required"`
	Year      int    `json:"year" validate:"required,min=1900,notfuture"`
	Genre     string `json:"genre" validate:"required"`
	Performer string `json:"performer" validate:"required"`
	Duration  *int   `json:"duration,omitempty" validate:"omitempty,min=0"`
	AlbumID   string `json:"albumId,omitempty"`
}

func (p SongPayload) song(songID string) *domain.Song {
	return &domain.Song{
		ID:        songID,
		AlbumID:   p.AlbumID,
		Title:     p.Title,
		Year:      p.Year,
		Genre:     p.Genre,
		Performer: p.Performer,
		Duration:  p.Duration,
	}
}

// SongService manages songs.
type SongService struct {
	store  store.Store
	logger *slog.Logger
}

// NewSongService creates a new song service.
func NewSongService(store store.Store, logger *slog.Logger) *SongService {
	return &SongService{store: store, logger: logger}
}

// Create stores a new song and returns its ID. A non-empty AlbumID must
// reference an existing album.
func (s *SongService) Create(ctx context.Context, p SongPayload) (string, error) {
	if err := validate.Validate(p); err != nil {
		return "", err
	}

	songID, err := id.Generate("song")
	if err != nil {
		return "", fmt.Errorf("generate song ID: %w", err)
	}

	if err := s.checkAlbum(ctx, p.AlbumID); err != nil {
		return "", err
	}

	song := p.song(songID)
	song.InitTimestamps()

	if err := s.store.CreateSong(ctx, song); err != nil {
		return "", fromStore(err, msgAlbumNotFound, "create song")
	}

	s.logger.Debug("song created", "song_id", songID, "album_id", p.AlbumID)
	return songID, nil
}

// List returns songs whose title and performer contain the given fragments,
// ignoring case and accents.
func (s *SongService) List(ctx context.Context, filter domain.SongFilter) ([]domain.SongSummary, error) {
	songs, err := s.store.ListSongs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	return songs, nil
}

// Get returns a song by ID.
func (s *SongService) Get(ctx context.Context, songID string) (*domain.Song, error) {
	song, err := s.store.GetSong(ctx, songID)
	if err != nil {
		return nil, fromStore(err, msgSongNotFound, "get song")
	}
	return song, nil
}

// Update replaces every field of a song.
func (s *SongService) Update(ctx context.Context, songID string, p SongPayload) error {
	if err := validate.Validate(p); err != nil {
		return err
	}

	song := p.song(songID)
	song.Touch()

	if err := s.checkAlbum(ctx, p.AlbumID); err != nil {
		return err
	}

	if err := s.store.UpdateSong(ctx, song); err != nil {
		return fromStore(err, msgSongNotFound, "update song")
	}
	return nil
}

// Delete removes a song. Playlist memberships referencing it go with it.
func (s *SongService) Delete(ctx context.Context, songID string) error {
	if err := s.store.DeleteSong(ctx, songID); err != nil {
		return fromStore(err, msgSongNotFound, "delete song")
	}
	return nil
}

func (s *SongService) checkAlbum(ctx context.Context, albumID string) error {
	if albumID == "" {
		return nil
	}
	ok, err := s.store.AlbumExists(ctx, albumID)
	if err != nil {
		return fmt.Errorf("check album: %w", err)
	}
	if !ok {
		return domainerrors.NotFound(msgAlbumNotFound)
	}
	return nil
}
