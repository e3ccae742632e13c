package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openmusic/openmusic-server/internal/service"
)

func (s *Server) registerAuthenticationRoutes() {
	limited := huma.Middlewares{s.rateLimit(s.authRateLimiter)}

	huma.Register(s.api, huma.Operation{
		OperationID:   "login",
		Method:        http.MethodPost,
		Path:          APIPrefix + "/authentications",
		Summary:       "Log in",
		Description:   "Exchanges credentials for an access token and a refresh token",
		Tags:          []string{"Authentications"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   limited,
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshAccessToken",
		Method:      http.MethodPut,
		Path:        APIPrefix + "/authentications",
		Summary:     "Refresh access token",
		Description: "Issues a new access token for a stored refresh token",
		Tags:        []string{"Authentications"},
		Middlewares: limited,
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodDelete,
		Path:        APIPrefix + "/authentications",
		Summary:     "Log out",
		Description: "Deletes the stored refresh token",
		Tags:        []string{"Authentications"},
	}, s.handleLogout)
}

// === DTOs ===

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body service.LoginPayload
}

// LoginOutput wraps the issued token pair.
type LoginOutput struct {
	Body Envelope[service.Tokens]
}

// RefreshInput wraps a refresh token request for Huma.
type RefreshInput struct {
	Body service.RefreshPayload
}

// AccessTokenData is the data member of the refresh response.
type AccessTokenData struct {
	AccessToken string `json:"accessToken"`
}

// RefreshOutput wraps the new access token.
type RefreshOutput struct {
	Body Envelope[AccessTokenData]
}

// === Handlers ===

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	tokens, err := s.services.Auth.Login(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &LoginOutput{Body: reply("Authentication has been added", *tokens)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
	accessToken, err := s.services.Auth.Refresh(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &RefreshOutput{Body: reply("Access token has been refreshed", AccessTokenData{AccessToken: accessToken})}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *RefreshInput) (*NoticeOutput, error) {
	if err := s.services.Auth.Logout(ctx, input.Body); err != nil {
		return nil, err
	}
	return &NoticeOutput{Body: notice("Refresh token has been deleted")}, nil
}
