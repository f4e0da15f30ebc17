// internal/httpx/respond_test.go
package httpx

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris/internal/apperr"
)

func TestRespondErrorValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, apperr.Validation(map[string]string{"email": "Email cannot be empty"}))

	assert.Equal(t, 400, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, 400, body.StatusCode)
	assert.Equal(t, map[string]string{"email": "Email cannot be empty"}, body.FieldErrors)
}

func TestRespondErrorMasksInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, assert.AnError)

	assert.Equal(t, 500, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Internal server error", body.Message)
	assert.NotNil(t, body.FieldErrors)
	assert.Empty(t, body.FieldErrors)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	var v payload
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Jane","extra":true}`))
	require.NoError(t, DecodeJSON(req, &v))
	assert.Equal(t, "Jane", v.Name)

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`))
	err := DecodeJSON(req, &v)
	require.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
	assert.Equal(t, "Request body is missing or invalid", apperr.MessageOf(err))
}

func TestStatusOf(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindNotFound:     404,
		apperr.KindInvalid:      400,
		apperr.KindValidation:   400,
		apperr.KindConflict:     409,
		apperr.KindUnauthorized: 401,
		apperr.KindForbidden:    403,
		apperr.KindUnavailable:  503,
		apperr.KindRateLimited:  429,
		apperr.KindInternal:     500,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusOf(kind))
	}
}
