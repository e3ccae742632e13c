package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openmusic/openmusic-server/internal/domain"
	"github.com/openmusic/openmusic-server/internal/service"
)

func (s *Server) registerSongRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createSong",
		Method:        http.MethodPost,
		Path:          APIPrefix + "/songs",
		Summary:       "Create song",
		Tags:          []string{"Songs"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateSong)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSongs",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/songs",
		Summary:     "List songs",
		Description: "Lists songs, optionally filtered by title and performer (case-insensitive substring match)",
		Tags:        []string{"Songs"},
	}, s.handleListSongs)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSong",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/songs/{id}",
		Summary:     "Get song",
		Tags:        []string{"Songs"},
	}, s.handleGetSong)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateSong",
		Method:      http.MethodPut,
		Path:        APIPrefix + "/songs/{id}",
		Summary:     "Update song",
		Tags:        []string{"Songs"},
	}, s.handleUpdateSong)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteSong",
		Method:      http.MethodDelete,
		Path:        APIPrefix + "/songs/{id}",
		Summary:     "Delete song",
		Tags:        []string{"Songs"},
	}, s.handleDeleteSong)
}

// === DTOs ===

// SongIDInput identifies a song by path.
type SongIDInput struct {
	ID string `path:"id" doc:"Song ID"`
}

// CreateSongInput wraps the create song request for Huma.
type CreateSongInput struct {
	Body service.SongPayload
}

// SongIDData is the data member of the create song response.
type SongIDData struct {
	SongID string `json:"songId" doc:"Song ID"`
}

// CreateSongOutput wraps the created song ID.
type CreateSongOutput struct {
	Body Envelope[SongIDData]
}

// ListSongsInput carries the optional song filters.
type ListSongsInput struct {
	Title     string `query:"title" doc:"Substring of the song title"`
	Performer string `query:"performer" doc:"Substring of the performer"`
}

// SongsData is the data member of the song listing.
type SongsData struct {
	Songs []domain.SongSummary `json:"songs"`
}

// ListSongsOutput wraps the song listing for Huma.
type ListSongsOutput struct {
	Body SongsData
}

// SongData is the data member of the song detail response.
type SongData struct {
	Song *domain.Song `json:"song"`
}

// SongOutput wraps the song detail for Huma.
type SongOutput struct {
	Body SongData
}

// UpdateSongInput wraps the update song request for Huma.
type UpdateSongInput struct {
	ID   string `path:"id" doc:"Song ID"`
	Body service.SongPayload
}

// === Handlers ===

func (s *Server) handleCreateSong(ctx context.Context, input *CreateSongInput) (*CreateSongOutput, error) {
	songID, err := s.services.Song.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &CreateSongOutput{Body: reply("Song has been added", SongIDData{SongID: songID})}, nil
}

func (s *Server) handleListSongs(ctx context.Context, input *ListSongsInput) (*ListSongsOutput, error) {
	songs, err := s.services.Song.List(ctx, domain.SongFilter{
		Title:     input.Title,
		Performer: input.Performer,
	})
	if err != nil {
		return nil, err
	}
	if songs == nil {
		songs = []domain.SongSummary{}
	}
	return &ListSongsOutput{Body: SongsData{Songs: songs}}, nil
}

func (s *Server) handleGetSong(ctx context.Context, input *SongIDInput) (*SongOutput, error) {
	song, err := s.services.Song.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SongOutput{Body: SongData{Song: song}}, nil
}

func (s *Server) handleUpdateSong(ctx context.Context, input *UpdateSongInput) (*NoticeOutput, error) {
	if err := s.services.Song.Update(ctx, input.ID, input.Body); err != nil {
		return nil, err
	}
	return &NoticeOutput{Body: notice("Song has been updated")}, nil
}

func (s *Server) handleDeleteSong(ctx context.Context, input *SongIDInput) (*NoticeOutput, error) {
	if err := s.services.Song.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &NoticeOutput{Body: notice("Song has been deleted")}, nil
}
