package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openmusic/openmusic-server/internal/service"
)

func (s *Server) registerCollaborationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "addCollaboration",
		Method:        http.MethodPost,
		Path:          APIPrefix + "/collaborations",
		Summary:       "Add collaborator",
		Description:   "Grants a user write access to a playlist. Only the owner may do this.",
		Tags:          []string{"Collaborations"},
		DefaultStatus: http.StatusCreated,
		Security:      authenticated,
	}, s.handleAddCollaboration)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeCollaboration",
		Method:      http.MethodDelete,
		Path:        APIPrefix + "/collaborations",
		Summary:     "Remove collaborator",
		Tags:        []string{"Collaborations"},
		Security:    authenticated,
	}, s.handleRemoveCollaboration)
}

// CollaborationInput wraps a collaboration request for Huma.
type CollaborationInput struct {
	Body service.CollaborationPayload
}

// CollaborationIDData is the data member of the add collaborator response.
type CollaborationIDData struct {
	CollaborationID string `json:"collaborationId"`
}

// AddCollaborationOutput wraps the created collaboration ID.
type AddCollaborationOutput struct {
	Body Envelope[CollaborationIDData]
}

func (s *Server) handleAddCollaboration(ctx context.Context, input *CollaborationInput) (*AddCollaborationOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	id, err := s.services.Collaboration.Add(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &AddCollaborationOutput{Body: reply("Collaboration has been added", CollaborationIDData{CollaborationID: id})}, nil
}

func (s *Server) handleRemoveCollaboration(ctx context.Context, input *CollaborationInput) (*NoticeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Collaboration.Remove(ctx, userID, input.Body); err != nil {
		return nil, err
	}
	return &NoticeOutput{Body: notice("Collaboration has been deleted")}, nil
}
