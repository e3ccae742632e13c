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

// CreateAuthentication stores a refresh token hash for a login session.
func (s *Store) CreateAuthentication(ctx context.Context, auth *domain.Authentication) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authentications (id, user_id, token_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		auth.ID, auth.UserID, auth.TokenHash, formatTime(auth.ExpiresAt), formatTime(auth.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert authentication: %w", err)
	}
	return nil
}

// GetAuthenticationByTokenHash looks up a session by its refresh token hash.
func (s *Store) GetAuthenticationByTokenHash(ctx context.Context, tokenHash string) (*domain.Authentication, error) {
	var (
		a                    domain.Authentication
		expiresAt, createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM authentications WHERE token_hash = ?`, tokenHash,
	).Scan(&a.ID, &a.UserID, &a.TokenHash, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("refresh token not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get authentication: %w", err)
	}

	if a.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &a, nil
}

// DeleteAuthenticationByTokenHash removes a session. Missing sessions yield store.ErrNotFound.
func (s *Store) DeleteAuthenticationByTokenHash(ctx context.Context, tokenHash string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM authentications WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return fmt.Errorf("delete authentication: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("refresh token not found")
	}
	return nil
}

// DeleteExpiredAuthentications purges sessions whose refresh token has expired.
func (s *Store) DeleteExpiredAuthentications(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM authentications WHERE expires_at <= ?`, formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired authentications: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
