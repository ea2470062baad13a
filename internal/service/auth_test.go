package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/inkpost/inkpost-server/internal/errors"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterRequest{Email: "Ann@Example.COM", Password: "correct horse", Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "Ann@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "Ann@EXAMPLE.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)

	authed, err := env.auth.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(context.Background(), RegisterRequest{Email: "not-an-email", Password: "short"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	var derr *domainerrors.Error
	require.True(t, domainerrors.As(err, &derr))
	details, ok := derr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "bob@example.com")

	_, err := env.auth.Register(context.Background(), RegisterRequest{Email: "bob@EXAMPLE.com", Password: "another pass"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrAlreadyExists))
}

func TestAuthService_LoginRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.user(t, "cy@example.com")

	_, err := env.auth.Login(ctx, LoginRequest{Email: "cy@example.com", Password: "wrong password"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))

	_, err = env.auth.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))

	u, err := env.store.GetUser(ctx, id)
	require.NoError(t, err)
	u.IsActive = false
	require.NoError(t, env.store.UpdateUser(ctx, u))

	_, err = env.auth.Login(ctx, LoginRequest{Email: "cy@example.com", Password: "correct horse"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_AuthenticateRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Authenticate(context.Background(), "v4.local.garbage")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

func TestAuthService_UpdateMe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.user(t, "dee@example.com")

	user, err := env.auth.UpdateMe(ctx, id, UpdateMeRequest{Name: ptr("Dee"), Password: ptr("brand new secret")})
	require.NoError(t, err)
	assert.Equal(t, "Dee", user.Name)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "dee@example.com", Password: "correct horse"})
	assert.Error(t, err)
	_, err = env.auth.Login(ctx, LoginRequest{Email: "dee@example.com", Password: "brand new secret"})
	assert.NoError(t, err)

	_, err = env.auth.UpdateMe(ctx, id, UpdateMeRequest{Password: ptr("short")})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestAuthService_CreateStaffUser(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.CreateUser(context.Background(), RegisterRequest{Email: "root@example.com", Password: "correct horse"}, true)
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
}
