package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openmusic/openmusic-server/internal/domain"
	"github.com/openmusic/openmusic-server/internal/service"
)

func (s *Server) registerPlaylistRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createPlaylist",
		Method:        http.MethodPost,
		Path:          APIPrefix + "/playlists",
		Summary:       "Create playlist",
		Description:   "Creates a playlist owned by the current user",
		Tags:          []string{"Playlists"},
		DefaultStatus: http.StatusCreated,
		Security:      authenticated,
	}, s.handleCreatePlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPlaylists",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/playlists",
		Summary:     "List playlists",
		Description: "Lists playlists the current user owns or collaborates on",
		Tags:        []string{"Playlists"},
		Security:    authenticated,
	}, s.handleListPlaylists)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePlaylist",
		Method:      http.MethodDelete,
		Path:        APIPrefix + "/playlists/{id}",
		Summary:     "Delete playlist",
		Description: "Deletes a playlist. Only the owner may do this.",
		Tags:        []string{"Playlists"},
		Security:    authenticated,
	}, s.handleDeletePlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addPlaylistSong",
		Method:        http.MethodPost,
		Path:          APIPrefix + "/playlists/{id}/songs",
		Summary:       "Add song to playlist",
		Description:   "Adds a song and records the activity. Owners and collaborators may do this.",
		Tags:          []string{"Playlists"},
		DefaultStatus: http.StatusCreated,
		Security:      authenticated,
	}, s.handleAddPlaylistSong)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPlaylistSongs",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/playlists/{id}/songs",
		Summary:     "Get playlist songs",
		Tags:        []string{"Playlists"},
		Security:    authenticated,
	}, s.handleGetPlaylistSongs)

	huma.Register(s.api, huma.Operation{
		OperationID: "removePlaylistSong",
		Method:      http.MethodDelete,
		Path:        APIPrefix + "/playlists/{id}/songs",
		Summary:     "Remove song from playlist",
		Description: "Removes a song and records the activity. Owners and collaborators may do this.",
		Tags:        []string{"Playlists"},
		Security:    authenticated,
	}, s.handleRemovePlaylistSong)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPlaylistActivities",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/playlists/{id}/activities",
		Summary:     "Get playlist activities",
		Description: "Returns the add and delete history of a playlist. Only the owner may see it.",
		Tags:        []string{"Playlists"},
		Security:    authenticated,
	}, s.handleGetPlaylistActivities)
}

// === DTOs ===

// CreatePlaylistInput wraps the create playlist request for Huma.
type CreatePlaylistInput struct {
	Body service.PlaylistPayload
}

// PlaylistIDData is the data member of the create playlist response.
type PlaylistIDData struct {
	PlaylistID string `json:"playlistId" doc:"Playlist ID"`
}

// CreatePlaylistOutput wraps the created playlist ID.
type CreatePlaylistOutput struct {
	Body Envelope[PlaylistIDData]
}

// PlaylistsData is the data member of the playlist listing.
type PlaylistsData struct {
	Playlists []domain.PlaylistSummary `json:"playlists"`
}

// ListPlaylistsOutput wraps the playlist listing for Huma.
type ListPlaylistsOutput struct {
	Body PlaylistsData
}

// PlaylistIDInput identifies a playlist by path.
type PlaylistIDInput struct {
	ID string `path:"id" doc:"Playlist ID"`
}

// PlaylistSongInput names a song in a playlist.
type PlaylistSongInput struct {
	ID   string `path:"id" doc:"Playlist ID"`
	Body service.PlaylistSongPayload
}

// PlaylistData is the data member of the playlist songs response.
type PlaylistData struct {
	Playlist *domain.PlaylistWithSongs `json:"playlist"`
}

// PlaylistSongsOutput wraps a playlist with its songs.
type PlaylistSongsOutput struct {
	Body PlaylistData
}

// ActivitiesData is the data member of the activities response.
type ActivitiesData struct {
	PlaylistID string                 `json:"playlistId"`
	Activities []domain.ActivityEntry `json:"activities"`
}

// ActivitiesOutput wraps the activity log for Huma.
type ActivitiesOutput struct {
	Body ActivitiesData
}

// === Handlers ===

func (s *Server) handleCreatePlaylist(ctx context.Context, input *CreatePlaylistInput) (*CreatePlaylistOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	playlistID, err := s.services.Playlist.Create(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &CreatePlaylistOutput{Body: reply("Playlist has been created", PlaylistIDData{PlaylistID: playlistID})}, nil
}

func (s *Server) handleListPlaylists(ctx context.Context, _ *struct{}) (*ListPlaylistsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	playlists, err := s.services.Playlist.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if playlists == nil {
		playlists = []domain.PlaylistSummary{}
	}
	return &ListPlaylistsOutput{Body: PlaylistsData{Playlists: playlists}}, nil
}

func (s *Server) handleDeletePlaylist(ctx context.Context, input *PlaylistIDInput) (*NoticeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Playlist.Delete(ctx, input.ID, userID); err != nil {
		return nil, err
	}
	return &NoticeOutput{Body: notice("Playlist has been deleted")}, nil
}

func (s *Server) handleAddPlaylistSong(ctx context.Context, input *PlaylistSongInput) (*NoticeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Playlist.AddSong(ctx, input.ID, userID, input.Body); err != nil {
		return nil, err
	}
	return &NoticeOutput{Body: notice("Song has been added to the playlist")}, nil
}

func (s *Server) handleGetPlaylistSongs(ctx context.Context, input *PlaylistIDInput) (*PlaylistSongsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	playlist, err := s.services.Playlist.Songs(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}
	if playlist.Songs == nil {
		playlist.Songs = []domain.SongSummary{}
	}
	return &PlaylistSongsOutput{Body: PlaylistData{Playlist: playlist}}, nil
}

func (s *Server) handleRemovePlaylistSong(ctx context.Context, input *PlaylistSongInput) (*NoticeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Playlist.RemoveSong(ctx, input.ID, userID, input.Body); err != nil {
		return nil, err
	}
	return &NoticeOutput{Body: notice("Song has been deleted from playlist")}, nil
}

func (s *Server) handleGetPlaylistActivities(ctx context.Context, input *PlaylistIDInput) (*ActivitiesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	activities, err := s.services.Playlist.Activities(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}
	if activities == nil {
		activities = []domain.ActivityEntry{}
	}
	return &ActivitiesOutput{Body: ActivitiesData{PlaylistID: input.ID, Activities: activities}}, nil
}
