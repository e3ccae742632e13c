package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openmusic/openmusic-server/internal/service"
)

func (s *Server) registerExportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "exportPlaylist",
		Method:        http.MethodPost,
		Path:          APIPrefix + "/export/playlists/{id}",
		Summary:       "Export playlist",
		Description:   "Queues an export of the playlist for the given email address",
		Tags:          []string{"Exports"},
		DefaultStatus: http.StatusCreated,
		Security:      authenticated,
	}, s.handleExportPlaylist)
}

// ExportPlaylistInput wraps the export request for Huma.
type ExportPlaylistInput struct {
	ID   string `path:"id" doc:"Playlist ID"`
	Body service.ExportPayload
}

func (s *Server) handleExportPlaylist(ctx context.Context, input *ExportPlaylistInput) (*NoticeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Export.Request(ctx, input.ID, userID, input.Body); err != nil {
		return nil, err
	}
	return &NoticeOutput{Body: notice("Your request is being processed")}, nil
}
