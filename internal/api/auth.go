package api

import (
	"context"
	"strings"

	domainerrors "github.com/inkpost/inkpost-server/internal/errors"
)

// authenticateRequest resolves a Bearer token to the caller's user ID.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (int64, error) {
	if authHeader == "" {
		return 0, domainerrors.Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, domainerrors.Unauthorized("Invalid authorization header format")
	}

	user, err := s.services.Auth.Authenticate(ctx, parts[1])
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// optionalUser is authenticateRequest for public reads: no header means an
// anonymous caller (ID 0), but a header that is present must be valid.
func (s *Server) optionalUser(ctx context.Context, authHeader string) (int64, error) {
	if authHeader == "" {
		return 0, nil
	}
	return s.authenticateRequest(ctx, authHeader)
}
