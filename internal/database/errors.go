package database

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrSlotConflict is returned when a non-declined reservation already
	// holds an overlapping interval on the requested date.
	ErrSlotConflict = errors.New("time slot is already booked")

	// ErrConcurrentModification is returned when an optimistic version
	// guard rejects an update.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrDuplicateUsername is returned when registering an existing username.
	ErrDuplicateUsername = errors.New("username is already taken")
)
