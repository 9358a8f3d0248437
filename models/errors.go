package models

import (
	"errors"
	"fmt"
)

// ErrInvalidProviderRow marks a persisted provider row missing a required field.
var ErrInvalidProviderRow = errors.New("invalid provider row")

// ValidationError reports a request field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Describe implements the notification describer.
func (e *ValidationError) Describe(action string) (string, string) {
	return "Invalid request", fmt.Sprintf("Please check %s and try again.", e.Field)
}

// ForbiddenError reports an attempt to touch a row owned by someone else.
type ForbiddenError struct {
	Entity string
	ID     string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s %s belongs to another account", e.Entity, e.ID)
}

func (e *ForbiddenError) Describe(action string) (string, string) {
	return "Not allowed", fmt.Sprintf("You don't have permission to %s.", action)
}

// ConflictError reports a write that collides with an existing row.
type ConflictError struct {
	Entity string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

func (e *ConflictError) Describe(action string) (string, string) {
	return "Already exists", fmt.Sprintf("We couldn't %s because %s.", action, e.Reason)
}
