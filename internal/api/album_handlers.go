package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openmusic/openmusic-server/internal/domain"
	"github.com/openmusic/openmusic-server/internal/service"
)

func (s *Server) registerAlbumRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createAlbum",
		Method:        http.MethodPost,
		Path:          APIPrefix + "/albums",
		Summary:       "Create album",
		Description:   "Adds an album to the catalog",
		Tags:          []string{"Albums"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateAlbum)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAlbum",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/albums/{id}",
		Summary:     "Get album",
		Description: "Returns an album with its songs and cover URL",
		Tags:        []string{"Albums"},
	}, s.handleGetAlbum)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateAlbum",
		Method:      http.MethodPut,
		Path:        APIPrefix + "/albums/{id}",
		Summary:     "Update album",
		Description: "Replaces an album's name and year",
		Tags:        []string{"Albums"},
	}, s.handleUpdateAlbum)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAlbum",
		Method:      http.MethodDelete,
		Path:        APIPrefix + "/albums/{id}",
		Summary:     "Delete album",
		Description: "Deletes an album together with its songs, likes and cover",
		Tags:        []string{"Albums"},
	}, s.handleDeleteAlbum)

	huma.Register(s.api, huma.Operation{
		OperationID:   "toggleAlbumLike",
		Method:        http.MethodPost,
		Path:          APIPrefix + "/albums/{id}/likes",
		Summary:       "Like or unlike album",
		Description:   "Likes the album, or removes the like when the user already likes it",
		Tags:          []string{"Albums"},
		DefaultStatus: http.StatusCreated,
		Security:      authenticated,
	}, s.handleToggleAlbumLike)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAlbumLikes",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/albums/{id}/likes",
		Summary:     "Count album likes",
		Description: "Returns the number of likes; served from cache when possible",
		Tags:        []string{"Albums"},
	}, s.handleGetAlbumLikes)
}

// === DTOs ===

// AlbumIDInput identifies an album by path.
type AlbumIDInput struct {
	ID string `path:"id" doc:"Album ID"`
}

// CreateAlbumInput wraps the create album request for Huma.
type CreateAlbumInput struct {
	Body service.AlbumPayload
}

// AlbumIDData is the data member of the create album response.
type AlbumIDData struct {
	AlbumID string `json:"albumId" doc:"Album ID"`
}

// CreateAlbumOutput wraps the created album ID.
type CreateAlbumOutput struct {
	Body Envelope[AlbumIDData]
}

// AlbumResponse is an album as returned by the API.
type AlbumResponse struct {
	ID            string               `json:"id" doc:"Album ID"`
	Name          string               `json:"name" doc:"Album name"`
	Year          int                  `json:"year" doc:"Release year"`
	CoverURL      *string              `json:"coverUrl" doc:"Cover image URL, null when none"`
	CoverBlurHash string               `json:"coverBlurHash,omitempty" doc:"BlurHash placeholder for the cover"`
	Songs         []domain.SongSummary `json:"songs" doc:"Songs on the album"`
}

// AlbumData is the data member of the album response.
type AlbumData struct {
	Album AlbumResponse `json:"album"`
}

// AlbumOutput wraps the album response for Huma.
type AlbumOutput struct {
	Body AlbumData
}

// UpdateAlbumInput wraps the update album request for Huma.
type UpdateAlbumInput struct {
	ID   string `path:"id" doc:"Album ID"`
	Body service.AlbumPayload
}

// NoticeOutput wraps a message-only response.
type NoticeOutput struct {
	Body Notice
}

// LikesData is the data member of the like count response.
type LikesData struct {
	Likes int `json:"likes" doc:"Number of users who like the album"`
}

// AlbumLikesOutput wraps the like count and its provenance header.
type AlbumLikesOutput struct {
	DataSource string `header:"X-Data-Source" doc:"cache when served from the cache"`
	Body       LikesData
}

// === Handlers ===

func (s *Server) handleCreateAlbum(ctx context.Context, input *CreateAlbumInput) (*CreateAlbumOutput, error) {
	albumID, err := s.services.Album.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &CreateAlbumOutput{Body: reply("Album has been added", AlbumIDData{AlbumID: albumID})}, nil
}

func (s *Server) handleGetAlbum(ctx context.Context, input *AlbumIDInput) (*AlbumOutput, error) {
	album, err := s.services.Album.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &AlbumOutput{Body: AlbumData{Album: s.albumResponse(album)}}, nil
}

func (s *Server) handleUpdateAlbum(ctx context.Context, input *UpdateAlbumInput) (*NoticeOutput, error) {
	if err := s.services.Album.Update(ctx, input.ID, input.Body); err != nil {
		return nil, err
	}
	return &NoticeOutput{Body: notice("Album has been updated")}, nil
}

func (s *Server) handleDeleteAlbum(ctx context.Context, input *AlbumIDInput) (*NoticeOutput, error) {
	if err := s.services.Album.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &NoticeOutput{Body: notice("Album has been deleted")}, nil
}

func (s *Server) handleToggleAlbumLike(ctx context.Context, input *AlbumIDInput) (*NoticeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	liked, err := s.services.Like.Toggle(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	if liked {
		return &NoticeOutput{Body: notice("Album has been liked")}, nil
	}
	return &NoticeOutput{Body: notice("Album has been disliked")}, nil
}

func (s *Server) handleGetAlbumLikes(ctx context.Context, input *AlbumIDInput) (*AlbumLikesOutput, error) {
	count, err := s.services.Like.Count(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	out := &AlbumLikesOutput{Body: LikesData{Likes: count.Count}}
	if count.FromCache {
		out.DataSource = "cache"
	}
	return out, nil
}

func (s *Server) albumResponse(a *domain.AlbumWithSongs) AlbumResponse {
	resp := AlbumResponse{
		ID:            a.ID,
		Name:          a.Name,
		Year:          a.Year,
		CoverBlurHash: a.CoverBlurHash,
		Songs:         a.Songs,
	}
	if resp.Songs == nil {
		resp.Songs = []domain.SongSummary{}
	}
	if a.HasCover() {
		url := s.services.Cover.URL(a.Cover)
		resp.CoverURL = &url
	}
	return resp
}
