package model

import "errors"

var (
	// ErrNotFound is returned when an operation references an unknown component id.
	ErrNotFound = errors.New("component not found")

	// ErrInvalidReference is returned when a registration names a manufacturer
	// key that is absent from the directory.
	ErrInvalidReference = errors.New("unknown manufacturer")

	// ErrDuplicate is returned when a component id is already registered.
	// Re-registration is rejected rather than overwriting the existing record.
	ErrDuplicate = errors.New("component already registered")

	// ErrMalformedEvent is returned when a custody event is missing required fields.
	ErrMalformedEvent = errors.New("malformed custody event")
)

// ErrValidation is returned when a registration request fails field validation.
type ErrValidation struct {
	Msg string
}

func (e *ErrValidation) Error() string { return e.Msg }
