package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRange       = errors.New("end time must be after start time")
	ErrUnknownSessionType = errors.New("unknown session type")
	ErrPastDate           = errors.New("date is in the past")
	ErrDateTooFar         = errors.New("date is too far in the future")
	ErrForbidden          = errors.New("operation not permitted")
	ErrNoChange           = errors.New("reservation already has this status")
	ErrReopenDisabled     = errors.New("reopening a resolved reservation is disabled")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRateLimited        = errors.New("too many requests")
	ErrSyncUnavailable    = errors.New("spreadsheet sync is not configured")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalidField(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
