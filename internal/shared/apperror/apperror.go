package apperror

import (
	"errors"
	"net/http"
)

// Error is a domain error carrying the HTTP status it maps to.
type Error struct {
	Code       string
	Message    string
	StatusCode int
	Internal   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Internal
}

var (
	ErrInvalidReference = &Error{
		Code:       "invalid_reference",
		Message:    "Invalid event_id or member_id",
		StatusCode: http.StatusBadRequest,
	}

	ErrCapacityExceeded = &Error{
		Code:       "capacity_exceeded",
		Message:    "Event at capacity",
		StatusCode: http.StatusConflict,
	}

	ErrNotFound = &Error{
		Code:       "not_found",
		Message:    "The requested resource was not found",
		StatusCode: http.StatusNotFound,
	}

	ErrInvalidAmount = &Error{
		Code:       "invalid_amount",
		Message:    "Invalid refund amount",
		StatusCode: http.StatusBadRequest,
	}

	ErrAggregationUnavailable = &Error{
		Code:       "aggregation_unavailable",
		Message:    "Metrics are temporarily unavailable",
		StatusCode: http.StatusServiceUnavailable,
	}

	ErrDuplicateBooking = &Error{
		Code:       "duplicate_booking",
		Message:    "Member already has a booking for this event",
		StatusCode: http.StatusConflict,
	}

	ErrInvalidTransition = &Error{
		Code:       "invalid_transition",
		Message:    "Cancelled bookings cannot be approved",
		StatusCode: http.StatusConflict,
	}

	ErrInvalidWindow = &Error{
		Code:       "invalid_window",
		Message:    "Window start must not be after end",
		StatusCode: http.StatusBadRequest,
	}

	ErrUnrecognizedStatus = &Error{
		Code:       "unrecognized_status",
		Message:    "Unrecognized delivery status",
		StatusCode: http.StatusUnprocessableEntity,
	}

	ErrBadRequest = &Error{
		Code:       "bad_request",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrUnauthorized = &Error{
		Code:       "unauthorized",
		Message:    "Invalid token",
		StatusCode: http.StatusUnauthorized,
	}

	ErrRateLimited = &Error{
		Code:       "rate_limited",
		Message:    "Rate limit exceeded",
		StatusCode: http.StatusTooManyRequests,
	}

	ErrInternal = &Error{
		Code:       "internal_error",
		Message:    "An unexpected error occurred. Please try again later",
		StatusCode: http.StatusInternalServerError,
	}
)

func New(code, message string, statusCode int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Wrap(err error, appErr *Error) *Error {
	return &Error{
		Code:       appErr.Code,
		Message:    appErr.Message,
		StatusCode: appErr.StatusCode,
		Internal:   err,
	}
}

// WithMessage copies appErr with a more specific message and the same code.
func WithMessage(appErr *Error, message string) *Error {
	return &Error{
		Code:       appErr.Code,
		Message:    message,
		StatusCode: appErr.StatusCode,
		Internal:   appErr.Internal,
	}
}

func Is(err error, target *Error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

func StatusCode(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func SafeMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ErrInternal.Message
}

func Code(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal.Code
}
