package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrConflict = errors.New("slot already booked")

	ErrBackendUnavailable = errors.New("booking backend unavailable")
)

// ConflictError identifies the occupied slot and, when known, who holds it.
type ConflictError struct {
	Room       string
	Date       string
	Hour       int
	ExistingID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: room %s on %s at %d:00", ErrConflict, e.Room, e.Date, e.Hour)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func (e *ConflictError) Details() map[string]any {
	details := map[string]any{
		"room": e.Room,
		"date": e.Date,
		"hour": e.Hour,
	}
	if e.ExistingID != "" {
		details["existing_id"] = e.ExistingID
	}
	return details
}

// Unavailable marks err as a connectivity or permission failure of the backend.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrBackendUnavailable, err)
}
