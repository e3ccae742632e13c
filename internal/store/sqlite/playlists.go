package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openmusic/openmusic-server/internal/domain"
	"github.com/openmusic/openmusic-server/internal/store"
)

// CreatePlaylist inserts a new playlist. An unknown owner yields store.ErrNotFound.
func (s *Store) CreatePlaylist(ctx context.Context, p *domain.Playlist) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, name, owner, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.Owner, formatTime(p.CreatedAt),
	)
	if isForeignKeyViolation(err) {
		return store.ErrNotFound.WithMessage("owner not found")
	}
	if err != nil {
		return fmt.Errorf("insert playlist: %w", err)
	}
	return nil
}

// GetPlaylistOwner returns the owner's user ID.
func (s *Store) GetPlaylistOwner(ctx context.Context, id string) (string, error) {
	var owner string
	err := s.db.QueryRowContext(ctx, `SELECT owner FROM playlists WHERE id = ?`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound.WithMessage("playlist not found")
	}
	if err != nil {
		return "", fmt.Errorf("get playlist owner: %w", err)
	}
	return owner, nil
}

// GetPlaylistSummary returns a playlist joined with its owner's username.
func (s *Store) GetPlaylistSummary(ctx context.Context, id string) (*domain.PlaylistSummary, error) {
	var p domain.PlaylistSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.name, u.username
		FROM playlists p
		JOIN users u ON u.id = p.owner
		WHERE p.id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("playlist not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	return &p, nil
}

// ListPlaylistsForUser returns playlists the user owns or collaborates on.
func (s *Store) ListPlaylistsForUser(ctx context.Context, userID string) ([]domain.PlaylistSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, u.username
		FROM playlists p
		JOIN users u ON u.id = p.owner
		WHERE p.owner = ?
		   OR p.id IN (SELECT playlist_id FROM collaborations WHERE user_id = ?)
		ORDER BY p.created_at, p.id`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	playlists := []domain.PlaylistSummary{}
	for rows.Next() {
		var p domain.PlaylistSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Username); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// ListPlaylistSongs returns the songs in a playlist in the order they were added.
func (s *Store) ListPlaylistSongs(ctx context.Context, playlistID string) ([]domain.SongSummary, error) {
	return s.querySongSummaries(ctx, `
		SELECT s.id, s.title, s.performer
		FROM playlist_songs ps
		JOIN songs s ON s.id = ps.song_id
		WHERE ps.playlist_id = ?
		ORDER BY ps.created_at, ps.id`, playlistID)
}

// ListPlaylistActivities returns the activity log of a playlist, oldest first.
func (s *Store) ListPlaylistActivities(ctx context.Context, playlistID string) ([]domain.ActivityEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.username, s.title, a.action, a.time
		FROM playlist_song_activities a
		JOIN users u ON u.id = a.user_id
		JOIN songs s ON s.id = a.song_id
		WHERE a.playlist_id = ?
		ORDER BY a.time, a.rowid`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	entries := []domain.ActivityEntry{}
	for rows.Next() {
		var (
			e      domain.ActivityEntry
			action string
			at     string
		)
		if err := rows.Scan(&e.Username, &e.Title, &action, &at); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		e.Action = domain.ActivityAction(action)
		if e.Time, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("parse activity time: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeletePlaylist removes a playlist with its memberships, activities and collaborations.
func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	return expectAffected(result, "playlist not found")
}
