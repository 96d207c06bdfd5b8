package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an entity is not in a status that
	// allows the requested change.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrDuplicateFlashcard is returned when accepting a candidate would
	// duplicate one of the user's existing flashcards.
	ErrDuplicateFlashcard = errors.New("an identical flashcard already exists")
)

// ValidationError reports input that was well-formed but not acceptable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
