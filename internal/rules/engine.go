package rules

import (
	"errors"
	"slices"
	"time"

	"github.com/roach88/snooker/internal/model"
)

// DefaultUndoLimit is how many recent shots can be undone.
const DefaultUndoLimit = 10

// Engine records actions onto frames.
//
// Engine holds configuration only. All frame state lives in the frame
// document, so one Engine can serve any number of frames concurrently as
// long as each frame has a single writer.
type Engine struct {
	undoLimit int
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithUndoLimit sets how many recent shots can be undone.
//
// Default: 10 (DefaultUndoLimit). Values below 1 are ignored.
func WithUndoLimit(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.undoLimit = n
		}
	}
}

// New creates an Engine.
func New(opts ...EngineOption) *Engine {
	e := &Engine{undoLimit: DefaultUndoLimit}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// UndoLimit returns the configured undo depth.
func (e *Engine) UndoLimit() int {
	return e.undoLimit
}

// Record applies a to f and appends it to the frame log.
//
// Undo actions rebuild the frame from its log with the most recent shot
// removed. On error f is left exactly as it was.
func (e *Engine) Record(f *model.Frame, a model.Action) (Outcome, error) {
	if a.Kind == model.ActionUndo {
		return e.undo(f, a)
	}

	out, err := Apply(f, a)
	if err != nil {
		return Outcome{}, err
	}
	f.Log = append(f.Log, a)
	if a.IsShot() {
		f.Undoable = min(e.undoLimit, f.Undoable+1)
	}
	if f.Ended() {
		f.Undoable = 0
	}
	return out, nil
}

func (e *Engine) undo(f *model.Frame, a model.Action) (Outcome, error) {
	if errs := a.Validate(); len(errs) > 0 {
		return Outcome{}, newRuleError(ErrCodeInvalidAction, "%s", errs[0].Error())
	}
	if f.Ended() {
		return Outcome{}, newRuleError(ErrCodeFrameOver, "frame %d is over, undo is closed", f.Number)
	}
	if f.Undoable == 0 {
		return Outcome{}, newRuleError(ErrCodeNothingToUndo, "nothing to undo")
	}

	before := f.ActivePlayer
	log := append(slices.Clone(f.Log), a)
	rebuilt, err := e.Replay(HeaderOf(f), log)
	if err != nil {
		return Outcome{}, err
	}
	*f = *rebuilt
	return Outcome{Switched: f.ActivePlayer != before}, nil
}

// Header is the part of a frame that is not derived from its log.
type Header struct {
	Number int
	Reds   int
	Start  time.Time

	// Base replaces the fresh rack when set.
	Base *model.Baseline
}

// HeaderOf returns the header of f.
func HeaderOf(f *model.Frame) Header {
	return Header{Number: f.Number, Reds: f.InitialReds, Start: f.StartTime, Base: f.Baseline}
}

// frame returns the table the log is applied to.
func (h Header) frame() *model.Frame {
	f := NewFrame(h.Number, h.Reds, h.Start)
	if b := h.Base; b != nil {
		f.Baseline = b
		f.Scores = b.Scores
		f.Breaks = model.CloneBreaks(b.Breaks)
		f.CurrentBreak = b.CurrentBreak
		f.RedsRemaining = b.RedsRemaining
		f.ColorsRemaining = slices.Clone(b.ColorsRemaining)
		f.ActivePlayer = b.ActivePlayer
		f.FreeBall = b.FreeBall
	}
	return f
}

// Replay rebuilds a frame from its header and action log.
//
// Replay is the only way undo changes a frame, so a stored frame is always
// equal to the replay of its stored log.
func (e *Engine) Replay(h Header, log []model.Action) (*model.Frame, error) {
	f := h.frame()
	var effective []model.Action
	undoable := 0

	for i, a := range log {
		if a.Kind != model.ActionUndo {
			if _, err := Apply(f, a); err != nil {
				return nil, atIndex(err, i)
			}
			effective = append(effective, a)
			if a.IsShot() {
				undoable = min(e.undoLimit, undoable+1)
			}
			continue
		}

		if f.Ended() || undoable == 0 {
			return nil, &RuleError{Code: ErrCodeCorruptLog, Message: "undo with nothing to undo", Index: i}
		}
		effective = dropLastShot(effective)
		undoable--

		next, err := fold(h, effective)
		if err != nil {
			return nil, atIndex(err, i)
		}
		trimPlaceholder(next)
		f = next
	}

	f.Log = slices.Clone(log)
	if f.Log == nil {
		f.Log = []model.Action{}
	}
	f.Undoable = undoable
	if f.Ended() {
		f.Undoable = 0
	}
	return f, nil
}

// ReplayFrame rebuilds f from its own header and log.
func (e *Engine) ReplayFrame(f *model.Frame) (*model.Frame, error) {
	return e.Replay(HeaderOf(f), f.Log)
}

func fold(h Header, actions []model.Action) (*model.Frame, error) {
	f := h.frame()
	for _, a := range actions {
		if _, err := Apply(f, a); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// dropLastShot removes the last shot action along with any end_break
// actions recorded after it.
func dropLastShot(actions []model.Action) []model.Action {
	for i := len(actions) - 1; i >= 0; i-- {
		if actions[i].IsShot() {
			return actions[:i:i]
		}
	}
	return actions[:0:0]
}

// trimPlaceholder discards an empty open break left behind by an undo,
// unless it is the opening break of the frame. The next shot opens a
// fresh break for the active player.
func trimPlaceholder(f *model.Frame) {
	br := f.Current()
	if br == nil || len(br.Shots) > 0 || f.CurrentBreak == 0 {
		return
	}
	if f.Baseline != nil && f.CurrentBreak < len(f.Baseline.Breaks) {
		return
	}
	dropCurrent(f)
}

func atIndex(err error, i int) error {
	var re *RuleError
	if errors.As(err, &re) {
		return &RuleError{Code: ErrCodeCorruptLog, Message: re.Error(), Index: i}
	}
	return err
}
