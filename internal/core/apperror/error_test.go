package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("bad"), http.StatusBadRequest},
		{"unauthorized", NewUnauthorized("no token"), http.StatusUnauthorized},
		{"invalid token", NewInvalidToken(errors.New("expired")), http.StatusForbidden},
		{"forbidden", NewForbidden("nope"), http.StatusForbidden},
		{"not found", NewNotFound("store", "x"), http.StatusNotFound},
		{"conflict", NewConflict("dup"), http.StatusConflict},
		{"duplicate", NewDuplicate("user", "username", "a"), http.StatusConflict},
		{"internal", NewInternal(errors.New("boom")), http.StatusInternalServerError},
		{"plain", errors.New("plain"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", NewNotFound("bank", "1")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.err))
		})
	}
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundOrDenied("report", "r1")))
	assert.True(t, IsConflict(NewDuplicate("store", "name", "A")))
	assert.True(t, IsConflict(fmt.Errorf("wrap: %w", NewConflict("x"))))
	assert.True(t, IsForbidden(NewForbidden("x")))
	assert.True(t, IsValidation(NewInvalidInput("date", "bad date")))
	assert.False(t, IsNotFound(errors.New("x")))
}

func TestNotFoundOrDeniedMessage(t *testing.T) {
	err := NewNotFoundOrDenied("store", "s1")
	assert.Equal(t, "store not found or access denied", err.Message)
	assert.Equal(t, "s1", err.Details["id"])
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := NewInternal(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "db down")
	assert.Equal(t, "x", NewValidation("v").WithDetail("field", "x").Details["field"])
}
