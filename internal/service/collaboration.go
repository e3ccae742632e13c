package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openmusic/openmusic-server/internal/access"
	"github.com/openmusic/openmusic-server/internal/domain"
	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
	"github.com/openmusic/openmusic-server/internal/id"
	"github.com/openmusic/openmusic-server/internal/store"
)

// CollaborationPayload names a playlist and the user to grant or revoke.
type CollaborationPayload struct {
	PlaylistID string `json:"playlistId" validate:"required"`
	UserID     string `json:"userId" validate:"required"`
}

// CollaborationService lets playlist owners share write access.
type CollaborationService struct {
	store  store.Store
	access *access.Resolver
	logger *slog.Logger
}

// NewCollaborationService creates a new collaboration service.
func NewCollaborationService(store store.Store, resolver *access.Resolver, logger *slog.Logger) *CollaborationService {
	return &CollaborationService{store: store, access: resolver, logger: logger}
}

// Add makes p.UserID a collaborator on p.PlaylistID. Only the owner may do so.
func (s *CollaborationService) Add(ctx context.Context, ownerID string, p CollaborationPayload) (string, error) {
	if err := validate.Validate(p); err != nil {
		return "", err
	}
	if err := s.access.VerifyOwner(ctx, p.PlaylistID, ownerID); err != nil {
		return "", err
	}

	ok, err := s.store.UserExists(ctx, p.UserID)
	if err != nil {
		return "", fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return "", domainerrors.NotFound(msgUserNotFound)
	}

	collabID, err := id.Generate("collab")
	if err != nil {
		return "", fmt.Errorf("generate collaboration ID: %w", err)
	}

	err = s.store.CreateCollaboration(ctx, &domain.Collaboration{
		ID:         collabID,
		PlaylistID: p.PlaylistID,
		UserID:     p.UserID,
		CreatedAt:  time.Now(),
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return "", domainerrors.Invariant("Failed to create collaboration, user is already a collaborator")
	}
	if err != nil {
		return "", fromStore(err, msgUserNotFound, "create collaboration")
	}

	s.logger.Info("collaboration added", "playlist_id", p.PlaylistID, "user_id", p.UserID)
	return collabID, nil
}

// Remove revokes p.UserID's collaboration on p.PlaylistID. Only the owner may do so.
func (s *CollaborationService) Remove(ctx context.Context, ownerID string, p CollaborationPayload) error {
	if err := validate.Validate(p); err != nil {
		return err
	}
	if err := s.access.VerifyOwner(ctx, p.PlaylistID, ownerID); err != nil {
		return err
	}

	err := s.store.DeleteCollaboration(ctx, p.PlaylistID, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.Invariant("Failed to delete collaboration")
	}
	if err != nil {
		return fmt.Errorf("delete collaboration: %w", err)
	}

	s.logger.Info("collaboration removed", "playlist_id", p.PlaylistID, "user_id", p.UserID)
	return nil
}
