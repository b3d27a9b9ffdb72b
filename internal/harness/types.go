package harness

import "github.com/roach88/snooker/internal/model"

// TraceEvent is the state after one played step.
type TraceEvent struct {
	Step  int `json:"step"`
	Frame int `json:"frame"`

	// Kind is the flow action name; Action describes the step in full,
	// e.g. "pot red x2 rest".
	Kind   string `json:"kind"`
	Action string `json:"action"`

	// Outcome is "ok" with +switch, +frame, +tie and +match markers, or
	// the rule error code of a rejected step.
	Outcome string `json:"outcome"`

	Scores       [2]int `json:"scores"`
	ActivePlayer int    `json:"active_player"`
	Reds         int    `json:"reds"`
	Colors       int    `json:"colors"`
	Break        int    `json:"break"`
}

// Accepted reports whether the step was applied.
func (e TraceEvent) Accepted() bool {
	return len(e.Outcome) >= 2 && e.Outcome[:2] == "ok"
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace has one event per played step, repetitions included.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Match is the final match document.
	Match *model.Match `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
