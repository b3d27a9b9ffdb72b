package harness

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/snooker/internal/model"
	"github.com/roach88/snooker/internal/rules"
	"github.com/roach88/snooker/internal/stats"
	"github.com/roach88/snooker/internal/testutil"
)

// ScenarioMatchID is the fixed id of every scenario match.
const ScenarioMatchID = "match_scenario"

// Harness runs scenarios.
type Harness struct {
	logger zerolog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger steps are reported to at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a test scenario with a silent harness.
func Run(s *Scenario) (*Result, error) {
	return New().Run(s)
}

// Run executes a test scenario and returns the result.
//
// Each scenario plays on a fresh match with a scripted clock, so the
// trace is the same on every run. A returned error means the scenario
// could not be played at all; failed expectations and assertions are
// reported in Result.Errors.
func (h *Harness) Run(s *Scenario) (*Result, error) {
	var opts []rules.EngineOption
	if s.Match.UndoLimit > 0 {
		opts = append(opts, rules.WithUndoLimit(s.Match.UndoLimit))
	}

	setup := rules.Setup{BestOf: s.Match.BestOf, Reds: s.Match.Reds}
	copy(setup.Players[:], s.Match.Players)

	script := testutil.NewScript(testutil.Epoch)
	m, err := rules.NewMatch(ScenarioMatchID, setup, script.Start())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: setup match: %w", s.Name, err)
	}

	r := &runner{
		engine: rules.New(opts...),
		script: script,
		match:  m,
		now:    script.Start(),
		result: NewResult(),
		logger: h.logger.With().Str("scenario", s.Name).Logger(),
	}

	for i, st := range s.Flow {
		n := max(st.Repeat, 1)
		var ev TraceEvent
		var out rules.Outcome
		for range n {
			ev, out, err = r.play(st)
			if err != nil {
				return nil, fmt.Errorf("scenario %s: flow[%d]: %w", s.Name, i, err)
			}
			r.result.Trace = append(r.result.Trace, ev)
			if st.Expect == nil && !ev.Accepted() {
				r.result.AddError(fmt.Sprintf("flow[%d]: %s rejected with %s", i, ev.Action, ev.Outcome))
			}
		}
		if st.Expect != nil {
			for _, msg := range checkStep(st.Expect, ev, out) {
				r.result.AddError(fmt.Sprintf("flow[%d]: %s", i, msg))
			}
		}
	}

	stats.Refresh(m)
	r.result.Match = m

	for _, msg := range EvaluateAssertions(r.engine, m, r.result.Trace, s.Assertions) {
		r.result.AddError(msg)
	}
	return r.result, nil
}

type runner struct {
	engine *rules.Engine
	script *testutil.Script
	match  *model.Match
	now    time.Time
	result *Result
	logger zerolog.Logger
}

// play runs one step. Rule violations end up in the event outcome; only
// failures outside the rules are returned as errors.
func (r *runner) play(st Step) (TraceEvent, rules.Outcome, error) {
	var out rules.Outcome
	var err error
	token := "ok"

	if st.Action == StepNextFrame {
		_, err = rules.NextFrame(r.match, r.now)
	} else {
		a := r.action(st)
		r.now = a.At
		f := r.match.Frame()
		out, err = r.engine.Record(f, a)
		if err == nil && out.FrameComplete && rules.IsMatchComplete(r.match) {
			if _, err := rules.CompleteMatch(r.match, a.At); err != nil {
				return TraceEvent{}, out, err
			}
			token += "+match"
		}
	}

	if err != nil {
		code := rules.CodeOf(err)
		if code == "" {
			return TraceEvent{}, out, err
		}
		token = string(code)
	} else {
		token = outcomeToken(out) + strings.TrimPrefix(token, "ok")
	}

	ev := r.snapshot(st, token)
	r.logger.Debug().
		Int("step", ev.Step).
		Str("action", ev.Action).
		Str("outcome", ev.Outcome).
		Ints("scores", ev.Scores[:]).
		Msg("step played")
	return ev, out, nil
}

// action builds the scripted action for a step. Ball names are passed
// through unchecked so the engine's own validation is exercised.
func (r *runner) action(st Step) model.Action {
	ball := model.Color(st.Ball)
	s := r.script
	switch st.Action {
	case StepPot:
		a := s.PotN(ball, max(st.Count, 1))
		a.Pot.Rest = st.Rest
		a.Pot.Escape = st.Escape
		return a
	case StepMiss:
		return s.MissWith(ball, st.Rest, st.Escape)
	case StepSafety:
		a := s.Safety(ball)
		a.Safety.Rest = st.Rest
		return a
	case StepFoul:
		return s.Foul(model.Foul{
			Ball:       ball,
			Points:     st.Points,
			PlayAgain:  st.PlayAgain,
			FreeBall:   st.FreeBall,
			RedsPotted: st.RedsPotted,
		})
	case StepEndBreak:
		return s.EndBreak()
	case StepEndFrame:
		return s.EndFrame()
	default:
		return s.Undo()
	}
}

func (r *runner) snapshot(st Step, token string) TraceEvent {
	f := r.match.Frame()
	ev := TraceEvent{
		Step:         len(r.result.Trace) + 1,
		Frame:        f.Number,
		Kind:         st.Action,
		Action:       describe(st),
		Outcome:      token,
		Scores:       f.Scores,
		ActivePlayer: f.ActivePlayer,
		Reds:         f.RedsRemaining,
		Colors:       len(f.ColorsRemaining),
	}
	if br := f.Current(); br != nil {
		ev.Break = br.Points
	}
	return ev
}

func outcomeToken(out rules.Outcome) string {
	token := "ok"
	if out.Switched {
		token += "+switch"
	}
	if out.FrameComplete {
		token += "+frame"
	}
	if out.Tie {
		token += "+tie"
	}
	return token
}

// describe renders a step as a short phrase for traces and goldens.
func describe(st Step) string {
	parts := []string{st.Action}
	switch st.Action {
	case StepPot:
		parts = append(parts, st.Ball)
		if st.Count > 1 {
			parts = append(parts, fmt.Sprintf("x%d", st.Count))
		}
	case StepMiss, StepSafety:
		parts = append(parts, st.Ball)
	case StepFoul:
		parts = append(parts, st.Ball, fmt.Sprint(st.Points))
		if st.PlayAgain {
			parts = append(parts, "play-again")
		}
		if st.FreeBall {
			parts = append(parts, "free-ball")
		}
		if st.RedsPotted > 0 {
			parts = append(parts, fmt.Sprintf("reds-potted %d", st.RedsPotted))
		}
	}
	if st.Rest {
		parts = append(parts, "rest")
	}
	if st.Escape {
		parts = append(parts, "escape")
	}
	return strings.Join(parts, " ")
}

// checkStep compares a step's last event with its expect clause.
func checkStep(want *StepExpect, ev TraceEvent, out rules.Outcome) []string {
	var errs []string
	if want.Error != "" {
		if ev.Outcome != want.Error {
			errs = append(errs, fmt.Sprintf("expected error %s, got %s", want.Error, ev.Outcome))
		}
	} else if !ev.Accepted() {
		errs = append(errs, fmt.Sprintf("%s rejected with %s", ev.Action, ev.Outcome))
	}

	if want.Scores != nil && (ev.Scores[0] != want.Scores[0] || ev.Scores[1] != want.Scores[1]) {
		errs = append(errs, fmt.Sprintf("expected scores %v, got %v", want.Scores, ev.Scores[:]))
	}
	if want.ActivePlayer != nil && ev.ActivePlayer != *want.ActivePlayer {
		errs = append(errs, fmt.Sprintf("expected player %d at the table, got %d", *want.ActivePlayer, ev.ActivePlayer))
	}
	if want.Switched != nil && out.Switched != *want.Switched {
		errs = append(errs, fmt.Sprintf("expected switched=%t, got %t", *want.Switched, out.Switched))
	}
	if want.FrameComplete != nil && out.FrameComplete != *want.FrameComplete {
		errs = append(errs, fmt.Sprintf("expected frame_complete=%t, got %t", *want.FrameComplete, out.FrameComplete))
	}
	return errs
}
