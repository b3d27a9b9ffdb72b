package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snooker/internal/model"
	"github.com/roach88/snooker/internal/rules"
	"github.com/roach88/snooker/internal/stats"
	"github.com/roach88/snooker/internal/testutil"
)

// played returns a match with a red, a black and a miss recorded.
func played(t *testing.T) (*rules.Engine, *model.Match) {
	t.Helper()
	e := rules.New()
	s := testutil.NewScript(testutil.Epoch)
	m, err := rules.NewMatch("match_test", rules.Setup{Players: [2]string{"A", "B"}, BestOf: 3}, testutil.Epoch)
	require.NoError(t, err)
	for _, a := range []model.Action{s.Pot(model.Red), s.Pot(model.Black), s.Miss(model.Red)} {
		_, err := e.Record(m.Frame(), a)
		require.NoError(t, err)
	}
	stats.Refresh(m)
	return e, m
}

func TestAssertTraceCount(t *testing.T) {
	trace := []TraceEvent{
		{Kind: StepPot, Outcome: "ok"},
		{Kind: StepPot, Outcome: "BALL_NOT_ON_TABLE"},
		{Kind: StepPot, Outcome: "ok+frame"},
		{Kind: StepUndo, Outcome: "ok"},
	}

	assert.NoError(t, assertTraceCount(trace, Assertion{Action: StepPot, Count: 2}), "rejected steps are not counted")
	assert.NoError(t, assertTraceCount(trace, Assertion{Action: StepMiss, Count: 0}))

	err := assertTraceCount(trace, Assertion{Action: StepUndo, Count: 2})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "2 accepted undo", ae.Expected)
	assert.Equal(t, "1 accepted undo", ae.Actual)
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		actual   any
		want     bool
	}{
		{"int to int", 3, 3, true},
		{"int to float", 100, 100.0, true},
		{"float to float", 66.7, 66.7, true},
		{"float mismatch", 66.6, 66.7, false},
		{"int to int64", 5, int64(5), true},
		{"string", "completed", "completed", true},
		{"number vs string", 1, "1", false},
		{"nil both", nil, nil, true},
		{"nil vs int", nil, 0, false},
		{"bool", true, true, true},
		{"yaml list to ints", []any{12, 2}, []int{12, 2}, true},
		{"list length", []any{12}, []int{12, 2}, false},
		{"empty list", []any{}, []string{}, true},
		{"string list", []any{"yellow", "green"}, []string{"yellow", "green"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valuesEqual(tt.expected, tt.actual))
		})
	}
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	e, m := played(t)
	errs := EvaluateAssertions(e, m, nil, []Assertion{
		{Type: AssertFrameState, Expect: map[string]any{
			"scores": []any{8, 0}, "active_player": 1, "reds_remaining": 14, "winner": nil, "ended": false,
		}},
		{Type: AssertMatchState, Expect: map[string]any{"status": "in-progress", "frames": 1}},
		{Type: AssertPlayerStats, Player: 0, Expect: map[string]any{"pot_percentage": 66.7, "visits": 1}},
		{Type: AssertNextBalls, Balls: []string{"red"}},
		{Type: AssertReplay},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_SomeFail(t *testing.T) {
	e, m := played(t)
	errs := EvaluateAssertions(e, m, nil, []Assertion{
		{Type: AssertFrameState, Expect: map[string]any{"scores": []any{8, 0}, "colour": "red"}},
		{Type: AssertFrameState, Frame: 2, Expect: map[string]any{"ended": true}},
		{Type: AssertPlayerStats, Player: 1, Expect: map[string]any{"fouls": 1}},
		{Type: AssertNextBalls, Balls: []string{"black"}},
		{Type: "final_state"},
	})
	require.Len(t, errs, 5)
	assert.Contains(t, errs[0], "colour: unknown field")
	assert.Contains(t, errs[1], "frame 2 does not exist (match has 1)")
	assert.Contains(t, errs[2], "fouls: want 1, got 0")
	assert.Contains(t, errs[3], "next balls [black]")
	assert.Contains(t, errs[4], `unknown assertion type "final_state"`)
}

func TestAssertReplay_DetectsTampering(t *testing.T) {
	e, m := played(t)
	m.Frame().Scores[0] = 99

	err := assertReplay(e, m)
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertReplay, ae.Type)
}

func TestAssertionError_ErrorFormat(t *testing.T) {
	err := &AssertionError{
		Type:     AssertTraceCount,
		Expected: "2 accepted pot",
		Actual:   "1 accepted pot",
		Trace: []TraceEvent{
			{Step: 1, Frame: 1, Kind: StepPot, Action: "pot red", Outcome: "ok", Scores: [2]int{1, 0}, Reds: 14, Colors: 6, Break: 1},
		},
	}

	want := "Assertion failed: trace_count\n" +
		"  Expected: 2 accepted pot\n" +
		"  Actual: 1 accepted pot\n" +
		"\nFull trace:\n" +
		"  01 f1 pot red -> ok | 1-0 p0 reds 14 colors 6 break 1\n"
	assert.Equal(t, want, err.Error())
}
