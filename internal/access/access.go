// Package access decides whether a user may act on a playlist.
//
// A playlist's owner may do anything with it. A collaborator may read it and
// change its songs. Existence is checked before ownership, so a caller never
// learns that a playlist exists through a forbidden response.
package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
	"github.com/openmusic/openmusic-server/internal/store"
)

// Outcome is the kind of a Decision.
type Outcome int

const (
	// Allowed means the user may proceed.
	Allowed Outcome = iota
	// Denied means the playlist exists but the user lacks the relationship.
	Denied
	// NotFound means the playlist does not exist.
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	case NotFound:
		return "not_found"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Messages carried by non-allowed decisions.
const (
	ReasonNotOwner         = "you are not entitled to access this resource"
	ReasonPlaylistNotFound = "playlist not found"
)

// Decision is the result of an access check.
type Decision struct {
	Outcome Outcome
	Reason  string
}

// Allow returns an Allowed decision.
func Allow() Decision { return Decision{Outcome: Allowed} }

// Deny returns a Denied decision with the given reason.
func Deny(reason string) Decision { return Decision{Outcome: Denied, Reason: reason} }

// Missing returns a NotFound decision with the given reason.
func Missing(reason string) Decision { return Decision{Outcome: NotFound, Reason: reason} }

// Err converts the decision to a domain error, nil when allowed.
func (d Decision) Err() error {
	switch d.Outcome {
	case Allowed:
		return nil
	case NotFound:
		return domainerrors.NotFound(d.Reason)
	default:
		return domainerrors.Forbidden(d.Reason)
	}
}

// Store is the slice of persistence the resolver reads.
type Store interface {
	GetPlaylistOwner(ctx context.Context, playlistID string) (string, error)
	IsCollaborator(ctx context.Context, playlistID, userID string) (bool, error)
}

// Resolver answers ownership and access questions about playlists.
type Resolver struct {
	store  Store
	logger *slog.Logger
}

// NewResolver creates a resolver over s.
func NewResolver(s Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: s, logger: logger}
}

// Owner decides whether userID owns playlistID.
// The returned error is only set for infrastructure failures.
func (r *Resolver) Owner(ctx context.Context, playlistID, userID string) (Decision, error) {
	owner, err := r.store.GetPlaylistOwner(ctx, playlistID)
	if errors.Is(err, store.ErrNotFound) {
		return Missing(ReasonPlaylistNotFound), nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("get playlist owner: %w", err)
	}
	if owner != userID {
		return Deny(ReasonNotOwner), nil
	}
	return Allow(), nil
}

// Access decides whether userID owns or collaborates on playlistID.
// A denial from the owner check is kept as is when no collaboration matches,
// including when the collaboration lookup itself fails.
func (r *Resolver) Access(ctx context.Context, playlistID, userID string) (Decision, error) {
	d, err := r.Owner(ctx, playlistID, userID)
	if err != nil || d.Outcome != Denied {
		return d, err
	}

	ok, err := r.store.IsCollaborator(ctx, playlistID, userID)
	if err != nil {
		r.logger.Warn("collaborator lookup failed",
			"playlist_id", playlistID,
			"user_id", userID,
			"error", err,
		)
		return d, nil
	}
	if ok {
		return Allow(), nil
	}
	return d, nil
}

// VerifyOwner returns nil when userID owns playlistID, or the matching domain error.
func (r *Resolver) VerifyOwner(ctx context.Context, playlistID, userID string) error {
	d, err := r.Owner(ctx, playlistID, userID)
	if err != nil {
		return err
	}
	return d.Err()
}

// VerifyAccess returns nil when userID owns or collaborates on playlistID.
func (r *Resolver) VerifyAccess(ctx context.Context, playlistID, userID string) error {
	d, err := r.Access(ctx, playlistID, userID)
	if err != nil {
		return err
	}
	return d.Err()
}
