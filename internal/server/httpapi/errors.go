package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/borderease/internal/common"
	"github.com/dmitrijs2005/borderease/internal/logging"
	"github.com/dmitrijs2005/borderease/internal/server/services"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorBody{Error: msg})
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders err. Internal failures are logged and hidden
// from the caller.
func writeServiceError(ctx context.Context, w http.ResponseWriter, logger logging.Logger, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusInternalServerError:
		logger.Error(ctx, "request failed", "request_id", RequestIDFrom(ctx), "error", err)
		writeError(w, status, "internal server error")
	case http.StatusBadRequest:
		body := ErrorBody{Error: err.Error()}
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			body.Fields = ve.Fields
		}
		writeJSON(w, status, body)
	default:
		writeError(w, status, err.Error())
	}
}
