package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/snooker/internal/model"
	"github.com/roach88/snooker/internal/rules"
	"github.com/roach88/snooker/internal/stats"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", formatEvent(ev))
		}
	}
	return buf.String()
}

// assertTraceCount checks how many times an action was accepted.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Kind == a.Action && ev.Accepted() {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d accepted %s", a.Count, a.Action),
		Actual:   fmt.Sprintf("%d accepted %s", count, a.Action),
		Trace:    trace,
	}
}

// frameFor resolves a 1-based frame number; zero is the current frame.
func frameFor(m *model.Match, number int) (*model.Frame, error) {
	if number == 0 {
		if f := m.Frame(); f != nil {
			return f, nil
		}
		return nil, fmt.Errorf("match has no current frame")
	}
	if number < 1 || number > len(m.Frames) {
		return nil, fmt.Errorf("frame %d does not exist (match has %d)", number, len(m.Frames))
	}
	return m.Frames[number-1], nil
}

func frameFields(f *model.Frame) map[string]any {
	var winner any
	if f.Winner != nil {
		winner = *f.Winner
	}
	colors := make([]string, len(f.ColorsRemaining))
	for i, c := range f.ColorsRemaining {
		colors[i] = string(c)
	}
	return map[string]any{
		"scores":           f.Scores[:],
		"reds_remaining":   f.RedsRemaining,
		"colors_remaining": colors,
		"active_player":    f.ActivePlayer,
		"winner":           winner,
		"tied":             f.Tied,
		"ended":            f.Ended(),
		"breaks":           len(f.Breaks),
		"free_ball":        f.FreeBall,
		"undoable":         f.Undoable,
		"points_remaining": rules.PointsRemaining(f),
		"log":              len(f.Log),
	}
}

func matchFields(m *model.Match) map[string]any {
	var winner any
	if m.Winner != nil {
		winner = *m.Winner
	}
	won := rules.FramesWon(m)
	return map[string]any{
		"status":        string(m.Status),
		"winner":        winner,
		"frames_won":    won[:],
		"frames":        len(m.Frames),
		"current_frame": m.CurrentFrame + 1,
	}
}

func playerFields(m *model.Match, player int) map[string]any {
	ps := m.Statistics.Player(player)
	sum := stats.Summarize(ps)
	return map[string]any{
		"frames_won":          sum.FramesWon,
		"total_points":        sum.TotalPoints,
		"high_break":          sum.HighBreak,
		"breaks":              sum.Breaks.Total,
		"century":             sum.Breaks.Century,
		"shots":               sum.Shots.Total,
		"potted":              sum.Shots.Potted,
		"missed":              sum.Shots.Missed,
		"fouls":               sum.Fouls,
		"visits":              sum.Visits,
		"safeties":            ps.Safeties.Attempted,
		"pot_percentage":      sum.PotPercentage,
		"rest_pot_percentage": sum.RestPotPercentage,
		"safety_success_rate": sum.SafetySuccessRate,
		"escape_success_rate": sum.EscapeSuccessRate,
		"average_shot_time":   sum.AverageShotTime,
		"points_per_visit":    sum.PointsPerVisit,
	}
}

// assertFields checks that every expected key is present in actual with
// an equal value. Extra keys in actual are ignored.
func assertFields(kind, subject string, actual, expected map[string]any) error {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	// Deterministic order for stable error messages
	sort.Strings(keys)

	var mismatches []string
	for _, k := range keys {
		got, ok := actual[k]
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("%s: unknown field", k))
			continue
		}
		if !valuesEqual(expected[k], got) {
			mismatches = append(mismatches, fmt.Sprintf("%s: want %v, got %v", k, expected[k], got))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%s matches %v", subject, expected),
		Actual:   strings.Join(mismatches, "; "),
	}
}

func assertNextBalls(m *model.Match, a Assertion) error {
	f, err := frameFor(m, a.Frame)
	if err != nil {
		return err
	}
	got := make([]string, 0, 6)
	for _, c := range rules.NextBalls(f) {
		got = append(got, string(c))
	}
	want := a.Balls
	if want == nil {
		want = []string{}
	}
	if reflect.DeepEqual(want, got) {
		return nil
	}
	return &AssertionError{
		Type:     AssertNextBalls,
		Expected: fmt.Sprintf("frame %d next balls %v", f.Number, want),
		Actual:   fmt.Sprintf("%v", got),
	}
}

// assertReplay rebuilds every frame from its log and compares
// fingerprints with the live frame.
func assertReplay(e *rules.Engine, m *model.Match) error {
	for _, f := range m.Frames {
		rebuilt, err := e.ReplayFrame(f)
		if err != nil {
			return &AssertionError{
				Type:     AssertReplay,
				Expected: fmt.Sprintf("frame %d log replays", f.Number),
				Actual:   err.Error(),
			}
		}
		live, err := model.FrameFingerprint(f)
		if err != nil {
			return err
		}
		replayed, err := model.FrameFingerprint(rebuilt)
		if err != nil {
			return err
		}
		if live != replayed {
			return &AssertionError{
				Type:     AssertReplay,
				Expected: fmt.Sprintf("frame %d fingerprint %s", f.Number, live),
				Actual:   fmt.Sprintf("replayed fingerprint %s", replayed),
			}
		}
	}
	return nil
}

// valuesEqual compares a value decoded from YAML with an actual value.
// Numbers compare by value whatever their type, so "66.7" matches a
// float64 and "3" matches an int.
func valuesEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	if e, ok := toFloat(expected); ok {
		a, ok := toFloat(actual)
		return ok && e == a
	}

	ev := reflect.ValueOf(expected)
	av := reflect.ValueOf(actual)
	if ev.Kind() == reflect.Slice && av.Kind() == reflect.Slice {
		if ev.Len() != av.Len() {
			return false
		}
		for i := range ev.Len() {
			if !valuesEqual(ev.Index(i).Interface(), av.Index(i).Interface()) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(expected, actual)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// EvaluateAssertions evaluates all assertions against the final match and
// trace. Returns a slice of error messages for failed assertions.
func EvaluateAssertions(e *rules.Engine, m *model.Match, trace []TraceEvent, assertions []Assertion) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertFrameState:
			var f *model.Frame
			if f, err = frameFor(m, a.Frame); err == nil {
				err = assertFields(a.Type, fmt.Sprintf("frame %d", f.Number), frameFields(f), a.Expect)
			}
		case AssertMatchState:
			err = assertFields(a.Type, "match", matchFields(m), a.Expect)
		case AssertPlayerStats:
			err = assertFields(a.Type, fmt.Sprintf("player %d", a.Player), playerFields(m, a.Player), a.Expect)
		case AssertNextBalls:
			err = assertNextBalls(m, a)
		case AssertTraceCount:
			err = assertTraceCount(trace, a)
		case AssertReplay:
			err = assertReplay(e, m)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertions[%d]: %s", i, err.Error()))
		}
	}

	return errors
}
