package domain

import "time"

// Collaboration grants a non-owner user write access to a playlist.
type Collaboration struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlistId"`
	UserID     string    `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
}
