package auth

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/inkpost/inkpost-server/internal/domain"
	"github.com/inkpost/inkpost-server/internal/id"
)

const (
	tokenIssuer   = "inkpost-server"
	tokenAudience = "inkpost-client"
)

// AccessClaims are the decrypted contents of an access token.
type AccessClaims struct {
	UserID  int64  `json:"uid"`
	Email   string `json:"email"`
	IsStaff bool   `json:"staff"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// TokenService issues and verifies v4.local access tokens.
type TokenService struct {
	key      paseto.V4SymmetricKey
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte, lifetime time.Duration) (*TokenService, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", KeySize, len(key))
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("access token lifetime must be positive, got %s", lifetime)
	}

	symmetric, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create PASETO symmetric key: %w", err)
	}

	return &TokenService{key: symmetric, lifetime: lifetime, now: time.Now}, nil
}

// Issue creates an encrypted access token for user and returns it with its expiry.
func (s *TokenService) Issue(user *domain.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.lifetime)

	jti, err := id.Token()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token ID: %w", err)
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(strconv.FormatInt(user.ID, 10))
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expires)
	token.SetJti(jti)

	//nolint:errcheck // Set only fails for values that cannot be marshaled
	_ = token.Set("uid", user.ID)
	//nolint:errcheck // Set only fails for values that cannot be marshaled
	_ = token.Set("email", user.Email)
	//nolint:errcheck // Set only fails for values that cannot be marshaled
	_ = token.Set("staff", user.IsStaff)

	return token.V4Encrypt(s.key, nil), expires, nil
}

// Verify decrypts tokenString and checks issuer, audience and validity window.
func (s *TokenService) Verify(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("invalid token: missing user id")
	}

	return &claims, nil
}

// Lifetime returns the configured access token lifetime.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}
