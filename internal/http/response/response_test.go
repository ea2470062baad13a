package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/inkpost/inkpost-server/internal/errors"
	"github.com/inkpost/inkpost-server/internal/logger"
	"github.com/inkpost/inkpost-server/internal/store"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusCreated, map[string]string{"header": "Intro"}, logger.Discard())

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	body := decode(t, w)
	assert.Equal(t, float64(Version), body["v"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"header": "Intro"}, body["data"])
}

func TestJSON_NilLogger(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, []int{1, 2}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{float64(1), float64(2)}, decode(t, w)["data"])
}

func TestError_StatusFromCode(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "no file", nil) }, http.StatusBadRequest, "VALIDATION"},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "no token", nil) }, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "gone", nil) }, http.StatusNotFound, "NOT_FOUND"},
		{"rate limited", func(w http.ResponseWriter) { TooManyRequests(w, "slow down", nil) }, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "oops", nil) }, http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, body["code"])
			assert.NotContains(t, body, "data")
		})
	}
}

func TestHandleError_DomainErrorKeepsDetails(t *testing.T) {
	w := httptest.NewRecorder()
	err := fmt.Errorf("upload: %w", domainerrors.ValidationWithDetails("validation failed", map[string]string{"image": "unsupported image format"}))

	HandleError(w, err, logger.Discard())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.Equal(t, "validation failed", body["message"])
	assert.Equal(t, map[string]any{"image": "unsupported image format"}, body["details"])
}

func TestHandleError_StoreError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, store.ErrNotFound, logger.Discard())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w)["code"])
}

func TestHandleError_UnknownErrorHidesCause(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, fmt.Errorf("disk on fire"), logger.Discard())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "INTERNAL", body["code"])
	assert.Equal(t, "internal server error", body["message"])
}
