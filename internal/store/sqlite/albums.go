package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/openmusic/openmusic-server/internal/domain"
	"github.com/openmusic/openmusic-server/internal/store"
)

// albumColumns is the ordered list of columns selected in album queries.
// Must match the scan order in scanAlbum.
const albumColumns = `id, name, year, cover, cover_blur_hash, created_at, updated_at`

func scanAlbum(scanner interface{ Scan(dest ...any) error }) (*domain.Album, error) {
	var (
		a                    domain.Album
		cover, blurHash      sql.NullString
		createdAt, updatedAt string
	)

	if err := scanner.Scan(&a.ID, &a.Name, &a.Year, &cover, &blurHash, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	a.Cover = cover.String
	a.CoverBlurHash = blurHash.String

	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse album created_at: %w", err)
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse album updated_at: %w", err)
	}
	return &a, nil
}

// CreateAlbum inserts a new album.
func (s *Store) CreateAlbum(ctx context.Context, album *domain.Album) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO albums (`+albumColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		album.ID, album.Name, album.Year,
		nullString(album.Cover), nullString(album.CoverBlurHash),
		formatTime(album.CreatedAt), formatTime(album.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("album already exists")
	}
	if err != nil {
		return fmt.Errorf("insert album: %w", err)
	}
	return nil
}

// GetAlbum retrieves an album by ID.
func (s *Store) GetAlbum(ctx context.Context, id string) (*domain.Album, error) {
	a, err := scanAlbum(s.db.QueryRowContext(ctx,
		`SELECT `+albumColumns+` FROM albums WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("album not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get album: %w", err)
	}
	return a, nil
}

// UpdateAlbum replaces an album's name and year.
func (s *Store) UpdateAlbum(ctx context.Context, album *domain.Album) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE albums SET name = ?, year = ?, updated_at = ? WHERE id = ?`,
		album.Name, album.Year, formatTime(album.UpdatedAt), album.ID,
	)
	if err != nil {
		return fmt.Errorf("update album: %w", err)
	}
	return expectAffected(result, "album not found")
}

// UpdateAlbumCover sets the cover key and its blurhash.
func (s *Store) UpdateAlbumCover(ctx context.Context, id, cover, blurHash string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE albums SET cover = ?, cover_blur_hash = ?, updated_at = ? WHERE id = ?`,
		nullString(cover), nullString(blurHash), formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("update album cover: %w", err)
	}
	return expectAffected(result, "album not found")
}

// DeleteAlbum removes an album. Its songs go with it.
func (s *Store) DeleteAlbum(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM albums WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	return expectAffected(result, "album not found")
}

// AlbumExists reports whether an album with the given ID exists.
func (s *Store) AlbumExists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, s.db, `SELECT 1 FROM albums WHERE id = ?`, id)
}

// expectAffected converts a zero-row write into store.ErrNotFound.
func expectAffected(result sql.Result, notFoundMsg string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage(notFoundMsg)
	}
	return nil
}
