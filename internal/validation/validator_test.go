package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/inkpost/inkpost-server/internal/errors"
	"github.com/inkpost/inkpost-server/internal/validation"
)

type registerInput struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=1024"`
	Name     string  `json:"name" validate:"max=255"`
	Detail   *string `json:"detail,omitempty" validate:"omitempty,notblank"`
}

func TestValidator_Success(t *testing.T) {
	v := validation.New()

	err := v.Validate(registerInput{Email: "ann@example.com", Password: "password123"})
	assert.NoError(t, err)
}

func TestValidator_Errors(t *testing.T) {
	v := validation.New()
	blank := "   "

	tests := []struct {
		name      string
		in        registerInput
		wantField string
		wantMsg   string
	}{
		{"missing email", registerInput{Password: "password123"}, "email", "is required"},
		{"bad email", registerInput{Email: "nope", Password: "password123"}, "email", "must be a valid email address"},
		{"short password", registerInput{Email: "a@b.co", Password: "short"}, "password", "must be at least 8 characters"},
		{"long name", registerInput{Email: "a@b.co", Password: "password123", Name: strings.Repeat("x", 256)}, "name", "must not exceed 255 characters"},
		{"blank detail", registerInput{Email: "a@b.co", Password: "password123", Detail: &blank}, "detail", "is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
			assert.Equal(t, 400, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

func TestValidator_UsesJSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(registerInput{Password: "password123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
	assert.NotContains(t, err.Error(), "Email")
}
