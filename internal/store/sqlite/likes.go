package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openmusic/openmusic-server/internal/store"
)

// CountAlbumLikes returns the number of likes on an album.
// A missing album yields store.ErrNotFound rather than zero.
func (s *Store) CountAlbumLikes(ctx context.Context, albumID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM user_album_likes WHERE album_id = a.id)
		FROM albums a WHERE a.id = ?`, albumID,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound.WithMessage("album not found")
	}
	if err != nil {
		return 0, fmt.Errorf("count album likes: %w", err)
	}
	return count, nil
}
