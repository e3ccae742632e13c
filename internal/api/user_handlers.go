package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openmusic/openmusic-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "registerUser",
		Method:        http.MethodPost,
		Path:          APIPrefix + "/users",
		Summary:       "Register user",
		Description:   "Creates an account with a unique username",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegisterUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        APIPrefix + "/users/{id}",
		Summary:     "Get user",
		Tags:        []string{"Users"},
	}, s.handleGetUser)
}

// === DTOs ===

// RegisterUserInput wraps the registration request for Huma.
type RegisterUserInput struct {
	Body service.UserPayload
}

// UserIDData is the data member of the registration response.
type UserIDData struct {
	UserID string `json:"userId" doc:"User ID"`
}

// RegisterUserOutput wraps the created user ID.
type RegisterUserOutput struct {
	Body Envelope[UserIDData]
}

// GetUserInput identifies a user by path.
type GetUserInput struct {
	ID string `path:"id" doc:"User ID"`
}

// UserResponse is a user as returned by the API. The password hash never leaves the server.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
}

// UserData is the data member of the user response.
type UserData struct {
	User UserResponse `json:"user"`
}

// UserOutput wraps the user response for Huma.
type UserOutput struct {
	Body UserData
}

// === Handlers ===

func (s *Server) handleRegisterUser(ctx context.Context, input *RegisterUserInput) (*RegisterUserOutput, error) {
	userID, err := s.services.User.Register(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &RegisterUserOutput{Body: reply("User has been added", UserIDData{UserID: userID})}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *GetUserInput) (*UserOutput, error) {
	user, err := s.services.User.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: UserData{User: UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Fullname: user.Fullname,
	}}}, nil
}
