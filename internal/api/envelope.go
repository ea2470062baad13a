package api

import (
	"errors"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/inkpost/inkpost-server/internal/errors"
	"github.com/inkpost/inkpost-server/internal/http/response"
	"github.com/inkpost/inkpost-server/internal/store"
)

// EnvelopeVersion is the response envelope format version.
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps every huma response body in the versioned
// envelope. Errors become {"v","success":false,"code","message","details"};
// everything else becomes {"v","success":true,"data"}.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case response.Envelope, response.ErrorEnvelope, *response.Envelope, *response.ErrorEnvelope:
		return v, nil
	case *APIError:
		code := body.Code
		if code == "" {
			code = string(domainerrors.CodeForStatus(parseStatus(status)))
		}
		return response.ErrorEnvelope{
			Version: EnvelopeVersion,
			Code:    code,
			Message: body.Message,
			Details: body.Details,
		}, nil
	case error:
		var domainErr *domainerrors.Error
		if errors.As(body, &domainErr) {
			return response.ErrorEnvelope{
				Version: EnvelopeVersion,
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Details: domainErr.Details,
			}, nil
		}
		message := body.Error()
		var storeErr *store.Error
		if errors.As(body, &storeErr) {
			message = storeErr.Message
		}
		return response.ErrorEnvelope{
			Version: EnvelopeVersion,
			Code:    string(domainerrors.CodeForStatus(parseStatus(status))),
			Message: message,
		}, nil
	}

	return response.Envelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
}

func parseStatus(status string) int {
	n, err := strconv.Atoi(status)
	if err != nil {
		return 0
	}
	return n
}
