package domain

import "time"

// AlbumLike records that a user likes an album. At most one per (user, album).
type AlbumLike struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	AlbumID   string    `json:"albumId"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikeCount is an album's like total with its provenance.
type LikeCount struct {
	Count     int  `json:"count"`
	FromCache bool `json:"fromCache"`
}
