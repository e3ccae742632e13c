package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openmusic/openmusic-server/internal/domain"
	"github.com/openmusic/openmusic-server/internal/store"
)

// WithTx runs fn inside one transaction. Rollback is deferred, so every early
// return or panic releases the transaction; only a nil result from fn commits.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// txStore implements store.Tx on an open *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// InsertPlaylistSong adds a membership edge and returns its id.
func (t *txStore) InsertPlaylistSong(ctx context.Context, ps *domain.PlaylistSong) (string, error) {
	var id string
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO playlist_songs (id, playlist_id, song_id, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		ps.ID, ps.PlaylistID, ps.SongID, formatTime(ps.CreatedAt),
	).Scan(&id)
	if isUniqueViolation(err) {
		return "", store.ErrAlreadyExists.WithMessage("song is already in the playlist").WithCause(err)
	}
	if err != nil {
		return "", fmt.Errorf("insert playlist song: %w", err)
	}
	return id, nil
}

// DeletePlaylistSong removes the membership edge and reports how many rows went away.
func (t *txStore) DeletePlaylistSong(ctx context.Context, playlistID, songID string) (int64, error) {
	result, err := t.tx.ExecContext(ctx,
		`DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?`,
		playlistID, songID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete playlist song: %w", err)
	}
	return result.RowsAffected()
}

// InsertPlaylistActivity appends an activity record and returns its id.
func (t *txStore) InsertPlaylistActivity(ctx context.Context, a *domain.PlaylistActivity) (string, error) {
	var id string
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO playlist_song_activities (id, playlist_id, song_id, user_id, action, time)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		a.ID, a.PlaylistID, a.SongID, a.UserID, string(a.Action), formatTime(a.Time),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert playlist activity: %w", err)
	}
	return id, nil
}

// AlbumExists checks album presence inside the transaction.
func (t *txStore) AlbumExists(ctx context.Context, albumID string) (bool, error) {
	return exists(ctx, t.tx, `SELECT 1 FROM albums WHERE id = ?`, albumID)
}

// InsertAlbumLike records a like and returns its id.
func (t *txStore) InsertAlbumLike(ctx context.Context, like *domain.AlbumLike) (string, error) {
	var id string
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO user_album_likes (id, user_id, album_id, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		like.ID, like.UserID, like.AlbumID, formatTime(like.CreatedAt),
	).Scan(&id)
	if isUniqueViolation(err) {
		return "", store.ErrAlreadyExists.WithMessage("album already liked").WithCause(err)
	}
	if err != nil {
		return "", fmt.Errorf("insert album like: %w", err)
	}
	return id, nil
}

// DeleteAlbumLike removes a user's like and reports how many rows went away.
func (t *txStore) DeleteAlbumLike(ctx context.Context, albumID, userID string) (int64, error) {
	result, err := t.tx.ExecContext(ctx,
		`DELETE FROM user_album_likes WHERE album_id = ? AND user_id = ?`,
		albumID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete album like: %w", err)
	}
	return result.RowsAffected()
}
