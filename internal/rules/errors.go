package rules

import (
	"errors"
	"fmt"
)

// RuleErrorCode categorizes rule violations.
type RuleErrorCode string

const (
	// ErrCodeInvalidAction indicates the action's shape is wrong.
	ErrCodeInvalidAction RuleErrorCode = "INVALID_ACTION"

	// ErrCodeFrameOver indicates the frame has already been finalized.
	ErrCodeFrameOver RuleErrorCode = "FRAME_OVER"

	// ErrCodeBallNotOnTable indicates the potted ball is no longer on the table.
	ErrCodeBallNotOnTable RuleErrorCode = "BALL_NOT_ON_TABLE"

	// ErrCodeIllegalBall indicates a pot of a ball the striker is not on.
	ErrCodeIllegalBall RuleErrorCode = "ILLEGAL_BALL"

	// ErrCodeFoulPoints indicates a foul value outside 4..7.
	ErrCodeFoulPoints RuleErrorCode = "FOUL_POINTS"

	// ErrCodeNothingToUndo indicates the undo history is empty.
	ErrCodeNothingToUndo RuleErrorCode = "NOTHING_TO_UNDO"

	// ErrCodeInvalidSetup indicates bad match parameters.
	ErrCodeInvalidSetup RuleErrorCode = "INVALID_SETUP"

	// ErrCodeMatchOver indicates the match has already been decided.
	ErrCodeMatchOver RuleErrorCode = "MATCH_OVER"

	// ErrCodeCorruptLog indicates a stored log that cannot be replayed.
	ErrCodeCorruptLog RuleErrorCode = "CORRUPT_LOG"
)

// Foul values allowed by the rules of snooker.
const (
	MinFoulPoints = 4
	MaxFoulPoints = 7
)

// RuleError is returned when an action cannot be applied. The frame is
// never modified when a RuleError is returned.
type RuleError struct {
	Code    RuleErrorCode
	Message string

	// Index is the log position for replay errors, -1 otherwise.
	Index int
}

func (e *RuleError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s (log index %d)", e.Code, e.Message, e.Index)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newRuleError(code RuleErrorCode, format string, args ...any) *RuleError {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...), Index: -1}
}

// CodeOf returns the RuleErrorCode of err, or "" if err is not a RuleError.
// Uses errors.As to see through wrapping.
func CodeOf(err error) RuleErrorCode {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsNothingToUndo reports whether err is an empty-history undo.
func IsNothingToUndo(err error) bool {
	return CodeOf(err) == ErrCodeNothingToUndo
}

// IsFrameOver reports whether err rejected an action on a finished frame.
func IsFrameOver(err error) bool {
	return CodeOf(err) == ErrCodeFrameOver
}

// IsInvalidSetup reports whether err rejected match parameters.
func IsInvalidSetup(err error) bool {
	return CodeOf(err) == ErrCodeInvalidSetup
}
