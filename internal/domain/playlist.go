package domain

import "time"

// Playlist is a user-curated ordered set of songs. Owner is the user ID that created it.
type Playlist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlaylistSummary is a playlist joined with its owner's username.
type PlaylistSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// PlaylistWithSongs is a playlist summary together with its songs.
type PlaylistWithSongs struct {
	PlaylistSummary
	Songs []SongSummary `json:"songs"`
}

// PlaylistSong is the membership edge between a playlist and a song.
type PlaylistSong struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlistId"`
	SongID     string    `json:"songId"`
	CreatedAt  time.Time `json:"createdAt"`
}
