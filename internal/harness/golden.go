package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/snooker/internal/rules"
)

// FormatTrace renders a result as the golden text: a header line, one
// line per step and a final line with the match status.
func FormatTrace(name string, r *Result) []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario %s\n", name)
	for _, ev := range r.Trace {
		fmt.Fprintf(&buf, "%s\n", formatEvent(ev))
	}
	if m := r.Match; m != nil {
		won := rules.FramesWon(m)
		fmt.Fprintf(&buf, "final %s frames %d-%d\n", m.Status, won[0], won[1])
	}
	return []byte(buf.String())
}

func formatEvent(ev TraceEvent) string {
	return fmt.Sprintf("%02d f%d %s -> %s | %d-%d p%d reds %d colors %d break %d",
		ev.Step, ev.Frame, ev.Action, ev.Outcome,
		ev.Scores[0], ev.Scores[1], ev.ActivePlayer, ev.Reds, ev.Colors, ev.Break)
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an already computed result against its golden
// file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, FormatTrace(scenarioName, result))
}
