// Package domain contains the catalog entities shared by the store, services and API.
package domain

// Album is a collection of songs released together.
type Album struct {
	Timestamps
	ID   string `json:"id"`
	Name string `json:"name"`
	Year int    `json:"year"`
	// Cover is the storage key of the uploaded cover image, empty when none.
	Cover         string `json:"cover,omitempty"`
	CoverBlurHash string `json:"coverBlurHash,omitempty"`
}

// HasCover reports whether a cover image has been uploaded.
func (a *Album) HasCover() bool {
	return a.Cover != ""
}

// AlbumWithSongs is an album together with its track listing.
type AlbumWithSongs struct {
	Album
	Songs []SongSummary `json:"songs"`
}
