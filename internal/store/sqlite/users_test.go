package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openmusic/openmusic-server/internal/domain"
	"github.com/openmusic/openmusic-server/internal/store"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "user-1", "dicoding")

	got, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "dicoding" {
		t.Errorf("Username: got %q, want %q", got.Username, "dicoding")
	}
	if got.PasswordHash != user.PasswordHash {
		t.Errorf("PasswordHash: got %q, want %q", got.PasswordHash, user.PasswordHash)
	}
	if got.Fullname != user.Fullname {
		t.Errorf("Fullname: got %q, want %q", got.Fullname, user.Fullname)
	}

	byName, err := s.GetUserByUsername(ctx, "dicoding")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if byName.ID != "user-1" {
		t.Errorf("ID: got %q, want user-1", byName.ID)
	}

	ok, err := s.UserExists(ctx, "user-1")
	if err != nil || !ok {
		t.Errorf("UserExists: got %v, %v", ok, err)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "user-1", "dicoding")

	err := s.CreateUser(context.Background(), &domain.User{
		ID: "user-2", Username: "dicoding", PasswordHash: "x", Fullname: "Other", CreatedAt: time.Now(),
	})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "nonexistent")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var storeErr *store.Error
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected *store.Error, got %T: %v", err, err)
	}
	if storeErr.Code != store.ErrNotFound.Code {
		t.Errorf("expected status %d, got %d", store.ErrNotFound.Code, storeErr.Code)
	}
}

func TestAuthentications(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1", "dicoding")

	now := time.Now()
	live := &domain.Authentication{
		ID: "auth-1", UserID: "user-1", TokenHash: "hash-live",
		ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}
	stale := &domain.Authentication{
		ID: "auth-2", UserID: "user-1", TokenHash: "hash-stale",
		ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-2 * time.Hour),
	}
	for _, a := range []*domain.Authentication{live, stale} {
		if err := s.CreateAuthentication(ctx, a); err != nil {
			t.Fatalf("CreateAuthentication %s: %v", a.ID, err)
		}
	}

	got, err := s.GetAuthenticationByTokenHash(ctx, "hash-live")
	if err != nil {
		t.Fatalf("GetAuthenticationByTokenHash: %v", err)
	}
	if got.UserID != "user-1" || got.IsExpired(now) {
		t.Errorf("unexpected authentication: %+v", got)
	}

	n, err := s.DeleteExpiredAuthentications(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredAuthentications: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 expired session purged, got %d", n)
	}

	if err := s.DeleteAuthenticationByTokenHash(ctx, "hash-live"); err != nil {
		t.Fatalf("DeleteAuthenticationByTokenHash: %v", err)
	}
	if err := s.DeleteAuthenticationByTokenHash(ctx, "hash-live"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
