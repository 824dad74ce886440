package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"greenkart/internal/model"

	"github.com/rs/zerolog"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps a service-layer error to an HTTP response. Domain
// errors carry their code; anything else is an opaque 500.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Msg("unexpected handler error")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Code {
	case model.ErrCodeInvalidJSON,
		model.ErrCodeValidation,
		model.ErrCodeEmptyCart,
		model.ErrCodeInsufficientStock,
		model.ErrCodeProductNotFound,
		model.ErrCodeSignatureMismatch:
		status = http.StatusBadRequest
	case model.ErrCodeOrderNotFound:
		status = http.StatusNotFound
	case model.ErrCodeOrderNotDeletable:
		status = http.StatusConflict
	case model.ErrCodeUnauthorised:
		status = http.StatusUnauthorized
	case model.ErrCodeForbidden:
		status = http.StatusForbidden
	case model.ErrCodeGatewayFailure:
		status = http.StatusBadGateway
	}

	logger.Warn().
		Str("code", domainErr.Code).
		Str("error", domainErr.Message).
		Int("status", status).
		Msg("request failed")
	writeJSON(w, status, ErrorResponse{Error: domainErr.Message, Code: domainErr.Code})
}
