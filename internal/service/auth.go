package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkpost/inkpost-server/internal/auth"
	"github.com/inkpost/inkpost-server/internal/domain"
	domainerrors "github.com/inkpost/inkpost-server/internal/errors"
	"github.com/inkpost/inkpost-server/internal/store"
	"github.com/inkpost/inkpost-server/internal/validation"
)

// AuthService handles accounts: registration, login and the caller's profile.
type AuthService struct {
	store     store.Store
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store store.Store, tokens *auth.TokenService, validator *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:     store,
		tokens:    tokens,
		validator: validator,
		logger:    logger,
	}
}

// RegisterRequest contains the data for a new account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"name" validate:"max=255"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateMeRequest changes the caller's profile. Nil fields are left alone.
type UpdateMeRequest struct {
	Name     *string `json:"name" validate:"omitnil,max=255"`
	Password *string `json:"password" validate:"omitnil,min=8,max=1024"`
}

// LoginResponse carries an access token and the authenticated user.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// Register creates an active, non-staff account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	return s.CreateUser(ctx, req, false)
}

// CreateUser creates an account, optionally with staff rights. Staff accounts
// are only created from the admin CLI.
func (s *AuthService) CreateUser(ctx context.Context, req RegisterRequest, staff bool) (user *domain.User, err error) {
	ctx, span := startSpan(ctx, "AuthService.CreateUser", 0)
	defer func() { endSpan(span, err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user = &domain.User{
		Email:        domain.NormalizeEmail(req.Email),
		Name:         req.Name,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      staff,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email, "staff", staff)
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown emails,
// wrong passwords and inactive accounts all yield the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (resp *LoginResponse, err error) {
	ctx, span := startSpan(ctx, "AuthService.Login", 0)
	defer func() { endSpan(span, err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil || !auth.VerifyPassword(user.PasswordHash, req.Password) || !user.IsActive {
		s.logger.Warn("login rejected", "email", domain.NormalizeEmail(req.Email))
		return nil, domainerrors.InvalidCredentials("unable to authenticate with provided credentials")
	}

	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &LoginResponse{Token: token, ExpiresAt: expires, User: user}, nil
}

// Authenticate resolves an access token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("Invalid or expired token")
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Unauthorized("Invalid or expired token")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return nil, domainerrors.Unauthorized("account is disabled")
	}
	return user, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return user, nil
}

// UpdateMe changes the caller's name and/or password.
func (s *AuthService) UpdateMe(ctx context.Context, userID int64, req UpdateMeRequest) (user *domain.User, err error) {
	ctx, span := startSpan(ctx, "AuthService.UpdateMe", userID)
	defer func() { endSpan(span, err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err = s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Password != nil {
		if user.PasswordHash, err = auth.HashPassword(*req.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("user updated", "user_id", user.ID, "password_changed", req.Password != nil)
	return user, nil
}
