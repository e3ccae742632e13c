package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openmusic/openmusic-server/internal/auth"
	"github.com/openmusic/openmusic-server/internal/domain"
	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
	"github.com/openmusic/openmusic-server/internal/id"
	"github.com/openmusic/openmusic-server/internal/store"
)

const (
	msgInvalidCredential   = "Invalid credential"
	msgInvalidRefreshToken = "Refresh token is invalid"
)

// LoginPayload carries user credentials.
type LoginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshPayload carries a refresh token for refresh and logout.
type RefreshPayload struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Tokens is the pair issued at login.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthenticationService issues and revokes tokens.
//
// Access tokens are stateless PASETO tokens. Refresh tokens are opaque; only
// their hashes are stored, one row per login.
type AuthenticationService struct {
	store  store.Store
	tokens *auth.TokenService
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthenticationService creates a new authentication service.
func NewAuthenticationService(store store.Store, tokens *auth.TokenService, logger *slog.Logger) *AuthenticationService {
	return &AuthenticationService{
		store:  store,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// Login verifies credentials and issues a new token pair.
func (s *AuthenticationService) Login(ctx context.Context, p LoginPayload) (*Tokens, error) {
	if err := validate.Validate(p); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, p.Username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.InvalidCredentials(msgInvalidCredential)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, p.Password)
	if err != nil {
		s.logger.Warn("stored password hash unreadable", "user_id", user.ID, "error", err)
		return nil, domainerrors.InvalidCredentials(msgInvalidCredential)
	}
	if !ok {
		return nil, domainerrors.InvalidCredentials(msgInvalidCredential)
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	authID, err := id.Generate("auth")
	if err != nil {
		return nil, fmt.Errorf("generate authentication ID: %w", err)
	}

	now := s.now()
	if err := s.store.CreateAuthentication(ctx, &domain.Authentication{
		ID:        authID,
		UserID:    user.ID,
		TokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt: now.Add(s.tokens.RefreshTokenDuration()),
		CreatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &Tokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh issues a new access token for a stored, unexpired refresh token.
func (s *AuthenticationService) Refresh(ctx context.Context, p RefreshPayload) (string, error) {
	if err := validate.Validate(p); err != nil {
		return "", err
	}

	session, err := s.lookup(ctx, p.RefreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return "", domainerrors.Invariant(msgInvalidRefreshToken)
	}
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes a refresh token.
func (s *AuthenticationService) Logout(ctx context.Context, p RefreshPayload) error {
	if err := validate.Validate(p); err != nil {
		return err
	}

	session, err := s.lookup(ctx, p.RefreshToken)
	if err != nil {
		return err
	}

	if err := s.store.DeleteAuthenticationByTokenHash(ctx, session.TokenHash); err != nil {
		return fromStore(err, msgInvalidRefreshToken, "delete refresh token")
	}

	s.logger.Info("user logged out", "user_id", session.UserID)
	return nil
}

// VerifyAccessToken validates an access token and returns its claims.
func (s *AuthenticationService) VerifyAccessToken(token string) (*auth.AccessClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired access token").WithCause(err)
	}
	return claims, nil
}

// DeleteExpired removes refresh tokens past their expiry.
func (s *AuthenticationService) DeleteExpired(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpiredAuthentications(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired authentications: %w", err)
	}
	return n, nil
}

// lookup finds the stored session for a refresh token. Expired sessions are
// deleted and reported as invalid.
func (s *AuthenticationService) lookup(ctx context.Context, refreshToken string) (*domain.Authentication, error) {
	hash := auth.HashRefreshToken(refreshToken)

	session, err := s.store.GetAuthenticationByTokenHash(ctx, hash)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Invariant(msgInvalidRefreshToken)
	}
	if err != nil {
		return nil, fmt.Errorf("get refresh token: %w", err)
	}

	if session.IsExpired(s.now()) {
		if err := s.store.DeleteAuthenticationByTokenHash(ctx, hash); err != nil && !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to delete expired refresh token", "user_id", session.UserID, "error", err)
		}
		return nil, domainerrors.Invariant(msgInvalidRefreshToken)
	}
	return session, nil
}
