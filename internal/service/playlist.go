package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openmusic/openmusic-server/internal/access"
	"github.com/openmusic/openmusic-server/internal/domain"
	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
	"github.com/openmusic/openmusic-server/internal/id"
	"github.com/openmusic/openmusic-server/internal/metrics"
	"github.com/openmusic/openmusic-server/internal/store"
)

const msgPlaylistNotFound = "Playlist is not found"

// PlaylistPayload is the body accepted when creating a playlist.
type PlaylistPayload struct {
	Name string `json:"name" validate:"required"`
}

// PlaylistSongPayload names the song added to or removed from a playlist.
type PlaylistSongPayload struct {
	SongID string `json:"songId" validate:"required"`
}

// PlaylistService manages playlists, their songs and their activity log.
type PlaylistService struct {
	store   store.Store
	access  *access.Resolver
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewPlaylistService creates a new playlist service. metrics may be nil.
func NewPlaylistService(store store.Store, resolver *access.Resolver, m *metrics.Collector, logger *slog.Logger) *PlaylistService {
	return &PlaylistService{
		store:   store,
		access:  resolver,
		metrics: m,
		logger:  logger,
	}
}

// Create stores a playlist owned by ownerID and returns its ID.
func (s *PlaylistService) Create(ctx context.Context, ownerID string, p PlaylistPayload) (string, error) {
	if err := validate.Validate(p); err != nil {
		return "", err
	}

	playlistID, err := id.Generate("playlist")
	if err != nil {
		return "", fmt.Errorf("generate playlist ID: %w", err)
	}

	playlist := &domain.Playlist{
		ID:        playlistID,
		Name:      p.Name,
		Owner:     ownerID,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreatePlaylist(ctx, playlist); err != nil {
		return "", fromStore(err, msgUserNotFound, "create playlist")
	}

	s.logger.Info("playlist created", "playlist_id", playlistID, "owner", ownerID)
	return playlistID, nil
}

// List returns the playlists userID owns or collaborates on.
func (s *PlaylistService) List(ctx context.Context, userID string) ([]domain.PlaylistSummary, error) {
	playlists, err := s.store.ListPlaylistsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	return playlists, nil
}

// Delete removes a playlist. Only the owner may delete it.
func (s *PlaylistService) Delete(ctx context.Context, playlistID, userID string) error {
	if err := s.access.VerifyOwner(ctx, playlistID, userID); err != nil {
		return err
	}
	if err := s.store.DeletePlaylist(ctx, playlistID); err != nil {
		return fromStore(err, msgPlaylistNotFound, "delete playlist")
	}

	s.logger.Info("playlist deleted", "playlist_id", playlistID)
	return nil
}

// AddSong adds a song to a playlist on behalf of an owner or collaborator.
func (s *PlaylistService) AddSong(ctx context.Context, playlistID, userID string, p PlaylistSongPayload) error {
	if err := validate.Validate(p); err != nil {
		return err
	}
	if err := s.access.VerifyAccess(ctx, playlistID, userID); err != nil {
		return err
	}

	ok, err := s.store.SongExists(ctx, p.SongID)
	if err != nil {
		return fmt.Errorf("check song: %w", err)
	}
	if !ok {
		return domainerrors.NotFound(msgSongNotFound)
	}

	return s.addMembership(ctx, playlistID, p.SongID, userID)
}

// RemoveSong removes a song from a playlist on behalf of an owner or collaborator.
func (s *PlaylistService) RemoveSong(ctx context.Context, playlistID, userID string, p PlaylistSongPayload) error {
	if err := validate.Validate(p); err != nil {
		return err
	}
	if err := s.access.VerifyAccess(ctx, playlistID, userID); err != nil {
		return err
	}

	return s.removeMembership(ctx, playlistID, p.SongID, userID)
}

// Songs returns a playlist with its owner's username and its songs in the
// order they were added.
func (s *PlaylistService) Songs(ctx context.Context, playlistID, userID string) (*domain.PlaylistWithSongs, error) {
	if err := s.access.VerifyAccess(ctx, playlistID, userID); err != nil {
		return nil, err
	}

	summary, err := s.store.GetPlaylistSummary(ctx, playlistID)
	if err != nil {
		return nil, fromStore(err, msgPlaylistNotFound, "get playlist")
	}

	songs, err := s.store.ListPlaylistSongs(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list playlist songs: %w", err)
	}

	return &domain.PlaylistWithSongs{PlaylistSummary: *summary, Songs: songs}, nil
}

// Activities returns the playlist's add and delete history, oldest first.
// Only the owner may read it.
func (s *PlaylistService) Activities(ctx context.Context, playlistID, userID string) ([]domain.ActivityEntry, error) {
	if err := s.access.VerifyOwner(ctx, playlistID, userID); err != nil {
		return nil, err
	}

	entries, err := s.store.ListPlaylistActivities(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list playlist activities: %w", err)
	}
	return entries, nil
}
