// Package response writes the versioned JSON envelope from plain net/http
// handlers. Huma operations get the same shape from api.EnvelopeTransformer.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/inkpost/inkpost-server/internal/errors"
	"github.com/inkpost/inkpost-server/internal/store"
)

// Version is the envelope format version carried in the "v" field.
const Version = 1

// Envelope is the success shape: {"v":1,"success":true,"data":...}.
type Envelope struct {
	Version int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorEnvelope is the failure shape: {"v":1,"success":false,"code":...,"message":...}.
type ErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func write(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && logger != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// JSON writes data in a success envelope with the given status.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	write(w, status, Envelope{Version: Version, Success: true, Data: data}, logger)
}

// Success writes a 200 OK envelope.
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, data, logger)
}

// Error writes an error envelope. The status is derived from code.
func Error(w http.ResponseWriter, code domainerrors.Code, message string, details any, logger *slog.Logger) {
	write(w, code.HTTPStatus(), ErrorEnvelope{
		Version: Version,
		Code:    string(code),
		Message: message,
		Details: details,
	}, logger)
}

// BadRequest writes a 400 VALIDATION envelope.
func BadRequest(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, domainerrors.CodeValidation, message, nil, logger)
}

// Unauthorized writes a 401 envelope.
func Unauthorized(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, domainerrors.CodeUnauthorized, message, nil, logger)
}

// NotFound writes a 404 envelope.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, domainerrors.CodeNotFound, message, nil, logger)
}

// TooManyRequests writes a 429 envelope.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, domainerrors.CodeRateLimited, message, nil, logger)
}

// InternalError writes a 500 envelope.
func InternalError(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, domainerrors.CodeInternal, message, nil, logger)
}

// HandleError writes the envelope matching err. Domain errors keep their code
// and details, store errors map through their HTTP code, and anything else is
// logged and reported as a 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		Error(w, domainErr.Code, domainErr.Message, domainErr.Details, logger)
		return
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		Error(w, domainerrors.CodeForStatus(storeErr.HTTPCode()), storeErr.Message, nil, logger)
		return
	}

	if logger != nil {
		logger.Error("unhandled error", "error", err)
	}
	InternalError(w, "internal server error", logger)
}
