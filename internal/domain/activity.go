package domain

import "time"

// ActivityAction is the kind of membership change recorded in the activity log.
type ActivityAction string

const (
	// ActivityAdd records a song being added to a playlist.
	ActivityAdd ActivityAction = "add"
	// ActivityDelete records a song being removed from a playlist.
	ActivityDelete ActivityAction = "delete"
)

// IsValid reports whether the action is one the log accepts.
func (a ActivityAction) IsValid() bool {
	return a == ActivityAdd || a == ActivityDelete
}

// PlaylistActivity is an append-only audit record of a membership change.
type PlaylistActivity struct {
	ID         string         `json:"id"`
	PlaylistID string         `json:"playlistId"`
	SongID     string         `json:"songId"`
	UserID     string         `json:"userId"`
	Action     ActivityAction `json:"action"`
	Time       time.Time      `json:"time"`
}

// ActivityEntry is an activity record resolved for display.
type ActivityEntry struct {
	Username string         `json:"username"`
	Title    string         `json:"title"`
	Action   ActivityAction `json:"action"`
	Time     time.Time      `json:"time"`
}
