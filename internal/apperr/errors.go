package apperr

import "errors"

// Error taxonomy shared by every operation entry point. Repositories
// translate collaborator failures into one of these; services wrap them
// with context via fmt.Errorf and %w so callers can use errors.Is.
var (
	// -- Policy --
	ErrInvalidTransition = errors.New("invalid status transition")

	// -- Resource State --
	ErrNotFound = errors.New("entity not found")

	// -- Input --
	ErrValidation = errors.New("invalid input")

	// -- Network & Server --
	ErrPersistence = errors.New("persistence failure")
)
