package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"bazaar/internal/middleware"
	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Warn().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:        http.StatusBadRequest,
	model.ErrCodeValidation:         http.StatusBadRequest,
	model.ErrCodeNotFound:           http.StatusNotFound,
	model.ErrCodeProductNotFound:    http.StatusNotFound,
	model.ErrCodeCartEntryNotFound:  http.StatusNotFound,
	model.ErrCodeOrderNotFound:      http.StatusNotFound,
	model.ErrCodeConflict:           http.StatusConflict,
	model.ErrCodeInvalidTransition:  http.StatusConflict,
	model.ErrCodeUnavailable:        http.StatusConflict,
	model.ErrCodePaymentVerify:      http.StatusBadRequest,
	model.ErrCodeGatewayUnavailable: http.StatusBadGateway,
	model.ErrCodeUnauthorised:       http.StatusUnauthorized,
	model.ErrCodeForbidden:          http.StatusForbidden,
}

// writeServiceError maps an error returned by a service to a response.
// Anything that is not a domain or validation error is logged and hidden
// behind a 500.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		logger.Debug().Err(err).Msg("validation failed")
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeValidation,
			Message: "Invalid request",
			Fields:  ve.Fields,
		})
		return
	}

	var de *model.DomainError
	if errors.As(err, &de) {
		status, ok := statusByCode[de.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		writeError(w, status, de.Code, de.Message, logger)
		return
	}

	logger.Error().Err(err).Msg("unhandled service error")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a JSON body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger zerolog.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		message := "Request body must be valid JSON"
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			message = "Request body is required"
		case errors.As(err, &syntaxErr):
			message = fmt.Sprintf("Malformed JSON at position %d", syntaxErr.Offset)
		case errors.As(err, &typeErr):
			message = fmt.Sprintf("Invalid value for field %q", typeErr.Field)
		}
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, message, logger)
		return false
	}
	return true
}

// pathID parses the named path segment as a UUID, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, fmt.Sprintf("Invalid %s format", name), logger)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewValidationError(name, fmt.Sprintf("invalid %s parameter", name))
	}
	return v, nil
}

// actor returns the authenticated caller. Routes that reach a handler without
// one are answered with 401.
func actor(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (model.Actor, bool) {
	a, ok := middleware.ActorFrom(r.Context())
	if !ok {
		writeServiceError(w, model.ErrUnauthorised, logger)
		return model.Actor{}, false
	}
	return a, true
}
