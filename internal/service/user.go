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

const msgUserNotFound = "User is not found"

// UserPayload is the registration body.
type UserPayload struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=1024"`
	Fullname string `json:"fullname" validate:"required"`
}

// UserService registers and looks up users.
type UserService struct {
	store  store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store store.Store, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// Register creates a user and returns its ID. Usernames are unique.
func (s *UserService) Register(ctx context.Context, p UserPayload) (string, error) {
	if err := validate.Validate(p); err != nil {
		return "", err
	}

	_, err := s.store.GetUserByUsername(ctx, p.Username)
	switch {
	case err == nil:
		return "", domainerrors.Invariant("Failed to add user, username already taken")
	case !errors.Is(err, store.ErrNotFound):
		return "", fmt.Errorf("check username: %w", err)
	}

	passwordHash, err := auth.HashPassword(p.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return "", fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Username:     p.Username,
		PasswordHash: passwordHash,
		Fullname:     p.Fullname,
		CreatedAt:    time.Now(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same name.
		if errors.Is(err, store.ErrAlreadyExists) {
			return "", domainerrors.Invariant("Failed to add user, username already taken")
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", userID, "username", p.Username)
	return userID, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fromStore(err, msgUserNotFound, "get user")
	}
	return user, nil
}
