package domain

import "time"

// Authentication is a login session backed by a refresh token.
// Only the SHA-256 hash of the refresh token is stored.
type Authentication struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsExpired reports whether the refresh token can no longer be used.
func (a *Authentication) IsExpired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}
