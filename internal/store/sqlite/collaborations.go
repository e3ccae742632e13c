package sqlite

import (
	"context"
	"fmt"

	"github.com/openmusic/openmusic-server/internal/domain"
	"github.com/openmusic/openmusic-server/internal/store"
)

// CreateCollaboration grants a user access to a playlist.
func (s *Store) CreateCollaboration(ctx context.Context, c *domain.Collaboration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collaborations (id, playlist_id, user_id, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.PlaylistID, c.UserID, formatTime(c.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("user is already a collaborator")
	}
	if isForeignKeyViolation(err) {
		return store.ErrNotFound.WithMessage("playlist or user not found")
	}
	if err != nil {
		return fmt.Errorf("insert collaboration: %w", err)
	}
	return nil
}

// DeleteCollaboration revokes a user's access to a playlist.
func (s *Store) DeleteCollaboration(ctx context.Context, playlistID, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM collaborations WHERE playlist_id = ? AND user_id = ?`, playlistID, userID)
	if err != nil {
		return fmt.Errorf("delete collaboration: %w", err)
	}
	return expectAffected(result, "collaboration not found")
}

// IsCollaborator reports whether the user collaborates on the playlist.
func (s *Store) IsCollaborator(ctx context.Context, playlistID, userID string) (bool, error) {
	return exists(ctx, s.db,
		`SELECT 1 FROM collaborations WHERE playlist_id = ? AND user_id = ?`, playlistID, userID)
}
