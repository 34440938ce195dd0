package domain

import "errors"

// Sentinel errors classifying every caller-visible failure. Operations wrap
// these with fmt.Errorf("...: %w", ...) so callers classify with errors.Is
// while the message stays specific enough to drive a UI field error.
var (
	// ErrNotFound: a referenced application, task, plan, user or group
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: a uniqueness violation or a state precondition failure,
	// such as a task not being in the expected from-state.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized: the caller is disabled or lacks the required group.
	// Never wrapped with detail beyond the operation name.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput: a malformed field value.
	ErrInvalidInput = errors.New("invalid input")
)
