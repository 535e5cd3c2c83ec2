package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsMapToHTTPStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("appointment"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad input", nil), CodeValidation, http.StatusBadRequest},
		{"invalid input", InvalidInput("bad date"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("slot taken"), CodeConflict, http.StatusConflict},
		{"invalid transition", InvalidTransition("completed", "pending"), CodeInvalidTransition, http.StatusBadRequest},
		{"forbidden", Forbidden("no"), CodeForbidden, http.StatusForbidden},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("storage timed out"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("database"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode())
		})
	}
}

func TestInvalidTransitionDetails(t *testing.T) {
	err := InvalidTransition("completed", "pending")
	assert.Equal(t, "completed", err.Details["from"])
	assert.Equal(t, "pending", err.Details["to"])
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("slot taken")
	assert.Same(t, appErr, AsAppError(appErr))

	plain := errors.New("connection refused")
	got := AsAppError(plain)
	require.Equal(t, CodeInternal, got.Code)
	// The client-facing message must not leak the underlying error, but the
	// cause stays reachable for logging.
	assert.NotEqual(t, plain.Error(), got.Message)
	assert.ErrorIs(t, got, plain)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(cause, CodeInternal, "wrapper", http.StatusInternalServerError)
	assert.ErrorIs(t, err, cause)
}
