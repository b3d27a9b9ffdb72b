package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/snooker/internal/model"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Match configures the match the flow is played on.
	Match MatchSetup `yaml:"match"`

	// Flow is played in order against the current frame.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final state and trace.
	Assertions []Assertion `yaml:"assertions"`
}

// MatchSetup configures the scenario's match.
type MatchSetup struct {
	Players   []string `yaml:"players"`
	BestOf    int      `yaml:"best_of"`
	Reds      int      `yaml:"reds,omitempty"`
	UndoLimit int      `yaml:"undo_limit,omitempty"`
}

// Step is one action in the flow.
type Step struct {
	// Action is pot, miss, safety, foul, end_break, end_frame, undo or
	// next_frame.
	Action string `yaml:"action"`

	Ball       string `yaml:"ball,omitempty"`
	Count      int    `yaml:"count,omitempty"`
	Rest       bool   `yaml:"rest,omitempty"`
	Escape     bool   `yaml:"escape,omitempty"`
	Points     int    `yaml:"points,omitempty"`
	PlayAgain  bool   `yaml:"play_again,omitempty"`
	FreeBall   bool   `yaml:"free_ball,omitempty"`
	RedsPotted int    `yaml:"reds_potted,omitempty"`

	// Repeat plays the step this many times. Zero means once.
	Repeat int `yaml:"repeat,omitempty"`

	// Expect is checked after the last repetition.
	Expect *StepExpect `yaml:"expect,omitempty"`
}

// StepExpect is what a step should produce. Unset fields are not checked.
type StepExpect struct {
	// Error is the expected rule error code. Empty means success.
	Error string `yaml:"error,omitempty"`

	Scores        []int `yaml:"scores,omitempty"`
	ActivePlayer  *int  `yaml:"active_player,omitempty"`
	Switched      *bool `yaml:"switched,omitempty"`
	FrameComplete *bool `yaml:"frame_complete,omitempty"`
}

// Assertion validates the final state or the trace.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Frame is the 1-based frame number for frame_state and next_balls.
	// Zero means the current frame.
	Frame int `yaml:"frame,omitempty"`

	// Player is the player index for player_stats.
	Player int `yaml:"player,omitempty"`

	// Action is the action name for trace_count.
	Action string `yaml:"action,omitempty"`

	// Count is the expected number for trace_count.
	Count int `yaml:"count,omitempty"`

	// Balls are the expected colors for next_balls.
	Balls []string `yaml:"balls,omitempty"`

	// Expect holds field values for the state assertions. Subset match:
	// only the listed fields are checked.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertFrameState  = "frame_state"
	AssertMatchState  = "match_state"
	AssertPlayerStats = "player_stats"
	AssertNextBalls   = "next_balls"
	AssertTraceCount  = "trace_count"
	AssertReplay      = "replay"
)

// Flow action names.
const (
	StepPot       = "pot"
	StepMiss      = "miss"
	StepSafety    = "safety"
	StepFoul      = "foul"
	StepEndBreak  = "end_break"
	StepEndFrame  = "end_frame"
	StepUndo      = "undo"
	StepNextFrame = "next_frame"
)

var stepActions = []string{
	StepPot, StepMiss, StepSafety, StepFoul, StepEndBreak, StepEndFrame, StepUndo, StepNextFrame,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Match.Players) != 2 {
		return fmt.Errorf("match.players must name exactly two players")
	}
	if s.Match.BestOf == 0 {
		return fmt.Errorf("match.best_of is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	if !slices.Contains(stepActions, st.Action) {
		return fmt.Errorf("flow[%d]: unknown action %q", index, st.Action)
	}
	switch st.Action {
	case StepPot, StepMiss, StepSafety, StepFoul:
		if st.Ball == "" {
			return fmt.Errorf("flow[%d]: ball is required for %s", index, st.Action)
		}
		// Unknown colors are left to the engine so scenarios can assert
		// on the rejection.
	}
	if st.Repeat < 0 {
		return fmt.Errorf("flow[%d]: repeat must be non-negative", index)
	}
	if st.Expect != nil && st.Expect.Scores != nil && len(st.Expect.Scores) != 2 {
		return fmt.Errorf("flow[%d].expect: scores needs two values", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFrameState, AssertMatchState, AssertPlayerStats:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
		if a.Type == AssertPlayerStats && (a.Player < 0 || a.Player > 1) {
			return fmt.Errorf("assertions[%d]: player must be 0 or 1", index)
		}
	case AssertNextBalls:
		for _, b := range a.Balls {
			if _, err := model.ParseColor(b); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertReplay:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
