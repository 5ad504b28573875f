package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeUserNotFound, "user not found"),
			expected: "USER_NOT_FOUND: user not found",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeDatabaseError, "database error", errors.New("connection failed")),
			expected: "DATABASE_ERROR: database error (caused by: connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("original error")
	err := Wrap(ErrCodeInternalError, "wrapped error", cause)

	unwrapped := errors.Unwrap(err)
	assert.Equal(t, cause, unwrapped)
}

func TestAppError_WithCause(t *testing.T) {
	err := New(ErrCodeUserNotFound, "user not found")
	cause := errors.New("database connection failed")

	err.WithCause(cause)
	assert.Equal(t, cause, err.Cause)
}

func TestAppError_WithContext(t *testing.T) {
	err := New(ErrCodeUserNotFound, "user not found")
	err.WithContext("email", "user@example.com")
	err.WithContext("location_id", 4)

	assert.Equal(t, "user@example.com", err.Context["email"])
	assert.Equal(t, 4, err.Context["location_id"])
}

func TestNew_StatusCodes(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{ErrCodeNoSession, http.StatusUnauthorized},
		{ErrCodeInvalidSession, http.StatusUnauthorized},
		{ErrCodeSessionExpired, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeUserNotFound, http.StatusNotFound},
		{ErrCodeUserExists, http.StatusConflict},
		{ErrCodeValidationFailed, http.StatusBadRequest},
		{ErrCodeProfileLookup, http.StatusServiceUnavailable},
		{ErrCodeRegistrationFailed, http.StatusServiceUnavailable},
		{ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{ErrCodeDatabaseError, http.StatusInternalServerError},
		{ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code, "message")
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", ErrSessionExpired)

	assert.True(t, IsCode(err, ErrCodeSessionExpired))
	assert.False(t, IsCode(err, ErrCodeInvalidSession))
	assert.False(t, IsCode(errors.New("plain"), ErrCodeSessionExpired))
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrUserNotFound)

	appErr, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ErrCodeUserNotFound, appErr.Code)

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestGetHTTPStatusCode_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatusCode(errors.New("boom")))
	assert.Equal(t, ErrCodeInternalError, GetErrorCode(errors.New("boom")))
}
