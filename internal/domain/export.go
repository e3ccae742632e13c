package domain

import "time"

// ExportRequest is the message published when a user asks for a playlist export.
type ExportRequest struct {
	PlaylistID  string `json:"playlistId"`
	TargetEmail string `json:"targetEmail"`
}

// PlaylistExport is the document produced by the export worker.
type PlaylistExport struct {
	Playlist    PlaylistWithSongs `json:"playlist"`
	TargetEmail string            `json:"targetEmail"`
	ExportedAt  time.Time         `json:"exportedAt"`
}
