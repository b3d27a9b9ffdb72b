package controller

import "errors"

var (
	// ErrNoMatch is returned when an operation needs a loaded match.
	ErrNoMatch = errors.New("controller: no match loaded")

	// ErrWrongPhase is returned when an action is not allowed in the
	// current phase. Nothing is changed.
	ErrWrongPhase = errors.New("controller: action not allowed in this phase")

	// ErrDuplicateAction is returned when an action id was already recorded.
	ErrDuplicateAction = errors.New("controller: duplicate action")

	// ErrNothingToUndo is returned when the undo history is empty.
	ErrNothingToUndo = errors.New("controller: nothing to undo")

	// ErrReadOnly is returned for changes to a completed match.
	ErrReadOnly = errors.New("controller: match is completed and read-only")

	// ErrCancelled is returned when the user declines a confirmation.
	ErrCancelled = errors.New("controller: cancelled")

	// ErrInvalidSetup wraps rejected match parameters.
	ErrInvalidSetup = errors.New("controller: invalid match setup")
)
