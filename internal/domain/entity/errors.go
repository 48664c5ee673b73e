package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that no entity matches the request.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput reports input the domain rejects outright.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError pinpoints the field that failed validation so HTTP
// handlers can return it to the caller verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
