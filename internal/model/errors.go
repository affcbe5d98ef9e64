package model

import (
	"errors"
	"fmt"
)

// Engine errors. Each maps to one rejected operation with no partial state change.
var (
	ErrValidation      = errors.New("invalid input")
	ErrPlayerExists    = errors.New("player already exists")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrGameInProgress  = errors.New("game is in progress")
	ErrGameNotStarted  = errors.New("game has not started")
	ErrNotPlayerTurn   = errors.New("not this player's turn")
	ErrNoPlayers       = errors.New("no players")
	ErrSessionNotFound = errors.New("owner session not found")
)

// ValidationError describes malformed user input
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes ValidationError match ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
