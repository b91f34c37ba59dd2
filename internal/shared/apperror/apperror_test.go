package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCodeAndCause(t *testing.T) {
	inner := errors.New("connection refused")
	wrapped := Wrap(inner, ErrAggregationUnavailable)

	assert.Equal(t, ErrAggregationUnavailable.Code, wrapped.Code)
	assert.Equal(t, http.StatusServiceUnavailable, wrapped.StatusCode)
	assert.ErrorIs(t, wrapped, inner)
	assert.True(t, Is(wrapped, ErrAggregationUnavailable))
}

func TestIsThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("approve booking: %w", ErrCapacityExceeded)

	assert.True(t, Is(err, ErrCapacityExceeded))
	assert.False(t, Is(err, ErrNotFound))
	assert.False(t, Is(errors.New("plain"), ErrNotFound))
}

func TestWithMessage(t *testing.T) {
	err := WithMessage(ErrNotFound, "Booking not found")

	assert.Equal(t, "Booking not found", err.Error())
	assert.True(t, Is(err, ErrNotFound))
	assert.Equal(t, "The requested resource was not found", ErrNotFound.Message)
}

func TestStatusCodeAndMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"invalid reference", ErrInvalidReference, http.StatusBadRequest, "invalid_reference", "Invalid event_id or member_id"},
		{"capacity", ErrCapacityExceeded, http.StatusConflict, "capacity_exceeded", "Event at capacity"},
		{"invalid amount", ErrInvalidAmount, http.StatusBadRequest, "invalid_amount", "Invalid refund amount"},
		{"unrecognized status", ErrUnrecognizedStatus, http.StatusUnprocessableEntity, "unrecognized_status", "Unrecognized delivery status"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "internal_error", ErrInternal.Message},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusCode(tt.err))
			assert.Equal(t, tt.code, Code(tt.err))
			assert.Equal(t, tt.message, SafeMessage(tt.err))
		})
	}
}
