package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/openmusic/openmusic-server/internal/domain"
	"github.com/openmusic/openmusic-server/internal/store"
)

// songColumns is the ordered list of columns selected in song queries.
// Must match the scan order in scanSong.
const songColumns = `id, album_id, title, year, genre, performer, duration, created_at, updated_at`

func scanSong(scanner interface{ Scan(dest ...any) error }) (*domain.Song, error) {
	var (
		s                    domain.Song
		albumID              sql.NullString
		duration             sql.NullInt64
		createdAt, updatedAt string
	)

	if err := scanner.Scan(&s.ID, &albumID, &s.Title, &s.Year, &s.Genre, &s.Performer,
		&duration, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	s.AlbumID = albumID.String
	if duration.Valid {
		d := int(duration.Int64)
		s.Duration = &d
	}

	var err error
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse song created_at: %w", err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse song updated_at: %w", err)
	}
	return &s, nil
}

// CreateSong inserts a new song. An unknown album yields store.ErrNotFound.
func (s *Store) CreateSong(ctx context.Context, song *domain.Song) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO songs (id, album_id, title, title_fold, year, genre, performer, performer_fold,
			duration, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		song.ID, nullString(song.AlbumID), song.Title, fold(song.Title), song.Year, song.Genre,
		song.Performer, fold(song.Performer), nullableInt(song.Duration),
		formatTime(song.CreatedAt), formatTime(song.UpdatedAt),
	)
	if isForeignKeyViolation(err) {
		return store.ErrNotFound.WithMessage("album not found")
	}
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("song already exists")
	}
	if err != nil {
		return fmt.Errorf("insert song: %w", err)
	}
	return nil
}

// GetSong retrieves a song by ID.
func (s *Store) GetSong(ctx context.Context, id string) (*domain.Song, error) {
	song, err := scanSong(s.db.QueryRowContext(ctx,
		`SELECT `+songColumns+` FROM songs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("song not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get song: %w", err)
	}
	return song, nil
}

// ListSongs returns song summaries matching the filter. Title and performer
// match as case- and accent-insensitive substrings and combine with AND.
func (s *Store) ListSongs(ctx context.Context, filter domain.SongFilter) ([]domain.SongSummary, error) {
	var (
		where []string
		args  []any
	)
	if filter.Title != "" {
		where = append(where, `title_fold LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(filter.Title))
	}
	if filter.Performer != "" {
		where = append(where, `performer_fold LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(filter.Performer))
	}

	query := `SELECT id, title, performer FROM songs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at, id`

	return s.querySongSummaries(ctx, query, args...)
}

// ListAlbumSongs returns the songs attached to an album.
func (s *Store) ListAlbumSongs(ctx context.Context, albumID string) ([]domain.SongSummary, error) {
	return s.querySongSummaries(ctx,
		`SELECT id, title, performer FROM songs WHERE album_id = ? ORDER BY created_at, id`, albumID)
}

// UpdateSong replaces every editable field of a song.
func (s *Store) UpdateSong(ctx context.Context, song *domain.Song) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE songs SET album_id = ?, title = ?, title_fold = ?, year = ?, genre = ?,
			performer = ?, performer_fold = ?, duration = ?, updated_at = ?
		WHERE id = ?`,
		nullString(song.AlbumID), song.Title, fold(song.Title), song.Year, song.Genre,
		song.Performer, fold(song.Performer), nullableInt(song.Duration),
		formatTime(song.UpdatedAt), song.ID,
	)
	if isForeignKeyViolation(err) {
		return store.ErrNotFound.WithMessage("album not found")
	}
	if err != nil {
		return fmt.Errorf("update song: %w", err)
	}
	return expectAffected(result, "song not found")
}

// DeleteSong removes a song along with its playlist memberships.
func (s *Store) DeleteSong(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete song: %w", err)
	}
	return expectAffected(result, "song not found")
}

// SongExists reports whether a song with the given ID exists.
func (s *Store) SongExists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, s.db, `SELECT 1 FROM songs WHERE id = ?`, id)
}

func (s *Store) querySongSummaries(ctx context.Context, query string, args ...any) ([]domain.SongSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query songs: %w", err)
	}
	defer rows.Close()

	songs := []domain.SongSummary{}
	for rows.Next() {
		var ss domain.SongSummary
		if err := rows.Scan(&ss.ID, &ss.Title, &ss.Performer); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, ss)
	}
	return songs, rows.Err()
}
