package model

import (
	"fmt"
	"time"
)

// ActionKind tags an Action.
type ActionKind string

const (
	ActionPot      ActionKind = "pot"
	ActionMiss     ActionKind = "miss"
	ActionSafety   ActionKind = "safety"
	ActionFoul     ActionKind = "foul"
	ActionEndBreak ActionKind = "end_break"
	ActionEndFrame ActionKind = "end_frame"
	ActionUndo     ActionKind = "undo"
)

// Action is one entry in a frame's log.
//
// Exactly one of Pot, Miss, Safety or Foul is set for shot kinds and none
// for the frame-level kinds, so a foul can never also be a safety. At is
// the wall-clock time of the action, Elapsed the frame time at that moment
// and ShotTime the time the stroke took; all three come from the caller so
// that replaying a log reproduces the same document.
type Action struct {
	ID       string     `json:"id"`
	Kind     ActionKind `json:"kind"`
	At       time.Time  `json:"at"`
	Elapsed  int64      `json:"elapsed"`            // milliseconds
	ShotTime int64      `json:"shotTime,omitempty"` // milliseconds
	Pot      *Pot       `json:"pot,omitempty"`
	Miss     *Miss      `json:"miss,omitempty"`
	Safety   *Safety    `json:"safety,omitempty"`
	Foul     *Foul      `json:"foul,omitempty"`
}

// Pot records one or more balls potted with a single stroke. Count above
// one is only meaningful for reds.
type Pot struct {
	Ball   Color `json:"ball"`
	Count  int   `json:"count"`
	Rest   bool  `json:"rest,omitempty"`
	Escape bool  `json:"escape,omitempty"`
}

// Miss records a failed pot attempt.
type Miss struct {
	Ball   Color `json:"ball"`
	Rest   bool  `json:"rest,omitempty"`
	Escape bool  `json:"escape,omitempty"`
}

// Safety records a deliberate safety stroke.
type Safety struct {
	Ball Color `json:"ball"`
	Rest bool  `json:"rest,omitempty"`
}

// Foul records an infringement. Points go to the opponent. PlayAgain
// leaves the offender at the table, FreeBall hands the next visit a free
// ball, RedsPotted removes reds that went down during the foul stroke.
type Foul struct {
	Ball       Color `json:"ball"`
	Points     int   `json:"points"`
	PlayAgain  bool  `json:"playAgain,omitempty"`
	FreeBall   bool  `json:"freeBall,omitempty"`
	RedsPotted int   `json:"redsPotted,omitempty"`
}

// IsShot reports whether the action records a stroke.
func (a Action) IsShot() bool {
	switch a.Kind {
	case ActionPot, ActionMiss, ActionSafety, ActionFoul:
		return true
	}
	return false
}

// Ball returns the ball the stroke was played at, empty for frame-level kinds.
func (a Action) Ball() Color {
	switch {
	case a.Pot != nil:
		return a.Pot.Ball
	case a.Miss != nil:
		return a.Miss.Ball
	case a.Safety != nil:
		return a.Safety.Ball
	case a.Foul != nil:
		return a.Foul.Ball
	}
	return ""
}

// ValidationError describes one problem with an action's shape.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks that the payload matches the kind. It does not look at
// table state; that is the rules engine's job.
func (a Action) Validate() []ValidationError {
	var errs []ValidationError

	payloads := 0
	for _, set := range []bool{a.Pot != nil, a.Miss != nil, a.Safety != nil, a.Foul != nil} {
		if set {
			payloads++
		}
	}

	want := map[ActionKind]bool{
		ActionPot:    a.Pot != nil,
		ActionMiss:   a.Miss != nil,
		ActionSafety: a.Safety != nil,
		ActionFoul:   a.Foul != nil,
	}

	switch a.Kind {
	case ActionPot, ActionMiss, ActionSafety, ActionFoul:
		if !want[a.Kind] || payloads != 1 {
			errs = append(errs, ValidationError{
				Field:   string(a.Kind),
				Message: fmt.Sprintf("%s action needs exactly one %s payload", a.Kind, a.Kind),
			})
		}
	case ActionEndBreak, ActionEndFrame, ActionUndo:
		if payloads != 0 {
			errs = append(errs, ValidationError{
				Field:   "kind",
				Message: fmt.Sprintf("%s action carries no payload", a.Kind),
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "kind",
			Message: fmt.Sprintf("unknown action kind %q", a.Kind),
		})
	}

	if a.IsShot() && len(errs) == 0 && !a.Ball().Valid() {
		errs = append(errs, ValidationError{
			Field:   string(a.Kind) + ".ball",
			Message: fmt.Sprintf("unknown ball color %q", a.Ball()),
		})
	}

	if a.Pot != nil && a.Pot.Count < 1 {
		errs = append(errs, ValidationError{Field: "pot.count", Message: "count must be at least 1"})
	}
	if a.Pot != nil && a.Pot.Count > 1 && !a.Pot.Ball.IsRed() {
		errs = append(errs, ValidationError{Field: "pot.count", Message: "only reds can be potted several at once"})
	}
	if a.Foul != nil && a.Foul.RedsPotted < 0 {
		errs = append(errs, ValidationError{Field: "foul.redsPotted", Message: "must not be negative"})
	}

	return errs
}
