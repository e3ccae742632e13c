package domain

// Song is a single track. AlbumID is empty for songs not attached to an album.
type Song struct {
	Timestamps
	ID        string `json:"id"`
	AlbumID   string `json:"albumId,omitempty"`
	Title     string `json:"title"`
	Year      int    `json:"year"`
	Genre     string `json:"genre"`
	Performer string `json:"performer"`
	// Duration in seconds, nil when unknown.
	Duration *int `json:"duration,omitempty"`
}

// Summary returns the listing form of the song.
func (s *Song) Summary() SongSummary {
	return SongSummary{ID: s.ID, Title: s.Title, Performer: s.Performer}
}

// SongSummary is the compact representation used in listings.
type SongSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Performer string `json:"performer"`
}

// SongFilter narrows song listings. Empty fields match everything.
type SongFilter struct {
	Title     string
	Performer string
}
