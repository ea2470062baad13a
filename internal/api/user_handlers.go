package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkpost/inkpost-server/internal/api/dto"
	"github.com/inkpost/inkpost-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "registerUser",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Register",
		Description:   "Creates an account. Rate limited per client IP.",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{s.rateLimitAuth},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Login",
		Description: "Exchanges email and password for an access token. Rate limited per client IP.",
		Tags:        []string{"Auth"},
		Middlewares: huma.Middlewares{s.rateLimitAuth},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMe",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Current user",
		Description: "Returns the authenticated user's account",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMe)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateMe",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update current user",
		Description: "Changes the authenticated user's name and/or password",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateMe)
}

// RegisterInput wraps the registration request for huma.
type RegisterInput struct {
	Body dto.RegisterRequest
}

// LoginInput wraps the login request for huma.
type LoginInput struct {
	Body dto.LoginRequest
}

// MeInput carries only the caller's credentials.
type MeInput struct {
	Authorization string `header:"Authorization"`
}

// UpdateMeInput wraps the account update request for huma.
type UpdateMeInput struct {
	Authorization string `header:"Authorization"`
	Body          dto.UpdateMeRequest
}

// UserOutput wraps a user for huma.
type UserOutput struct {
	Body dto.User
}

// TokenOutput wraps a login response for huma.
type TokenOutput struct {
	Body dto.TokenResponse
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*UserOutput, error) {
	user, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		Name:     input.Body.Name,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: dto.NewUser(user)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*TokenOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &TokenOutput{Body: dto.TokenResponse{
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
		User:      dto.NewUser(resp.User),
	}}, nil
}

func (s *Server) handleGetMe(ctx context.Context, input *MeInput) (*UserOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: dto.NewUser(user)}, nil
}

func (s *Server) handleUpdateMe(ctx context.Context, input *UpdateMeInput) (*UserOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.UpdateMe(ctx, userID, service.UpdateMeRequest{
		Name:     input.Body.Name,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: dto.NewUser(user)}, nil
}
