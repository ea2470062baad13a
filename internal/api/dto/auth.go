// Package dto provides request and response types for the Inkpost API.
// These types are used by huma to generate OpenAPI documentation and to
// decode request bodies before services validate them.
package dto

import (
	"time"

	"github.com/inkpost/inkpost-server/internal/domain"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Email    string `json:"email" doc:"Account email address"`
	Password string `json:"password" doc:"Password (8-1024 chars)"`
	Name     string `json:"name,omitempty" doc:"Display name"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" doc:"Account email address"`
	Password string `json:"password" doc:"Account password"`
}

// UpdateMeRequest is the request body for changing the caller's account.
type UpdateMeRequest struct {
	Name     *string `json:"name,omitempty" doc:"New display name"`
	Password *string `json:"password,omitempty" doc:"New password (8-1024 chars)"`
}

// User is the public view of an account.
type User struct {
	ID        int64     `json:"id" doc:"User ID"`
	Email     string    `json:"email" doc:"Email address"`
	Name      string    `json:"name" doc:"Display name"`
	IsStaff   bool      `json:"is_staff" doc:"Whether the account has staff rights"`
	CreatedAt time.Time `json:"created_at" doc:"Registration time"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	Token     string    `json:"token" doc:"PASETO access token"`
	ExpiresAt time.Time `json:"expires_at" doc:"Token expiry"`
	User      User      `json:"user" doc:"Authenticated user"`
}

// NewUser converts a domain user.
func NewUser(u *domain.User) User {
	return User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsStaff:   u.IsStaff,
		CreatedAt: u.CreatedAt,
	}
}
