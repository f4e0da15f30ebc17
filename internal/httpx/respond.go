// internal/httpx/respond.go
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"libris/internal/apperr"
)

// ErrorResponse is the error body shape shared by all services.
type ErrorResponse struct {
	Message     string            `json:"message"`
	StatusCode  int               `json:"statusCode"`
	FieldErrors map[string]string `json:"fieldErrors"`
}

// RespondJSON writes v as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// RespondError maps a classified error to its HTTP status and error body.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusOf(apperr.KindOf(err))
	fields := apperr.FieldsOf(err)
	if fields == nil {
		fields = map[string]string{}
	}
	RespondJSON(w, status, ErrorResponse{
		Message:     apperr.MessageOf(err),
		StatusCode:  status,
		FieldErrors: fields,
	})
}

// StatusOf maps an error kind to its HTTP status code.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalid, apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON decodes the request body into v, rejecting missing or
// malformed bodies with a classified error so handlers respond with the
// shared body format. Unknown fields are ignored, matching lenient
// client payloads.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return apperr.Invalidf("Request body is missing or invalid")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Invalidf("Request body is missing or invalid")
	}
	return nil
}

// UUIDParam parses a UUID route parameter, producing a field-level
// validation error on bad input.
func UUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation(map[string]string{
			name: "Invalid UUID format: " + raw,
		})
	}
	return id, nil
}
