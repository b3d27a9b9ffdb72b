package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/snooker/internal/harness"
)

// Golden file states reported per scenario.
const (
	GoldenMatch   = "match"
	GoldenUpdated = "updated"
	GoldenMissing = "missing"
	GoldenDiffers = "differs"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // rewrite golden files from the current traces
	Filter string // glob over scenario file names, without extension
	Golden string // golden directory
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Steps  int      `json:"steps"`
	Golden string   `json:"golden,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult summarizes a scenario run.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run rules conformance scenarios",
		Long: `Run YAML scenarios against the rules engine.

Each scenario plays a flow of shots on a fresh match, checks its
assertions and compares the step trace with the golden file of the same
name. Golden files live in ../golden next to the scenarios directory
unless --golden says otherwise. A scenario without a golden file is
judged on its assertions alone.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (missing directory, bad filter)

Examples:
  snooker test ./testdata/scenarios
  snooker test ./testdata/scenarios --filter "foul*"
  snooker test ./testdata/scenarios --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden files from the current traces")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose file name matches this glob")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "golden file directory (default: ../golden)")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, "scenarios directory not found: "+dir)
	}
	golden := opts.Golden
	if golden == "" {
		golden = filepath.Join(filepath.Dir(filepath.Clean(dir)), "golden")
	}

	files, err := scenarioFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list scenarios", err)
	}

	// Scenarios share nothing, so they run in parallel; results keep file
	// order.
	results := make([]ScenarioResult, len(files))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			results[i] = runScenarioFile(file, golden, opts.Update)
			return nil
		})
	}
	_ = g.Wait()

	summary := TestResult{Scenarios: results}
	var text strings.Builder
	if len(results) == 0 {
		text.WriteString("No scenarios found.\n")
	}
	for _, r := range results {
		writeScenarioResult(&text, r)
		if r.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	if len(results) > 0 {
		fmt.Fprintf(&text, "\n%d passed, %d failed, %d total\n", summary.Passed, summary.Failed, len(results))
	}

	if err := out.Emit(text.String(), summary); err != nil {
		return err
	}
	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", summary.Failed))
	}
	return nil
}

// scenarioFiles lists the .yaml and .yml files under dir in lexical order.
func scenarioFiles(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			if ok, _ := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext)); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	slices.Sort(files)
	return files, err
}

func runScenarioFile(file, goldenDir string, update bool) ScenarioResult {
	r := ScenarioResult{Name: filepath.Base(file), File: file}

	s, err := harness.LoadScenario(file)
	if err != nil {
		r.Errors = []string{err.Error()}
		return r
	}
	r.Name = s.Name

	result, err := harness.Run(s)
	if err != nil {
		r.Errors = []string{err.Error()}
		return r
	}
	r.Steps = len(result.Trace)
	r.Errors = slices.Clone(result.Errors)

	trace := harness.FormatTrace(s.Name, result)
	path := filepath.Join(goldenDir, s.Name+".golden")
	if update {
		if err := writeGolden(path, trace); err != nil {
			r.Errors = append(r.Errors, err.Error())
		} else {
			r.Golden = GoldenUpdated
		}
	} else {
		r.Golden, err = compareGolden(path, trace)
		if err != nil {
			r.Errors = append(r.Errors, err.Error())
		}
	}

	r.Pass = len(r.Errors) == 0
	return r
}

// compareGolden checks trace against the golden file at path. A missing
// file is not a failure.
func compareGolden(path string, trace []byte) (string, error) {
	want, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return GoldenMissing, nil
	}
	if err != nil {
		return "", fmt.Errorf("read golden file: %w", err)
	}
	if bytes.Equal(want, trace) {
		return GoldenMatch, nil
	}
	return GoldenDiffers, fmt.Errorf("trace differs from %s (run with --update to accept): %s",
		filepath.Base(path), firstDifference(want, trace))
}

// firstDifference describes the first line where two traces disagree.
func firstDifference(want, got []byte) string {
	wl := strings.Split(string(want), "\n")
	gl := strings.Split(string(got), "\n")
	for i := range max(len(wl), len(gl)) {
		var w, g string
		if i < len(wl) {
			w = wl[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if w != g {
			return fmt.Sprintf("line %d: want %q, got %q", i+1, w, g)
		}
	}
	return "trailing bytes differ"
}

func writeGolden(path string, trace []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	if err := os.WriteFile(path, trace, 0o644); err != nil {
		return fmt.Errorf("write golden file: %w", err)
	}
	return nil
}

func writeScenarioResult(b *strings.Builder, r ScenarioResult) {
	if r.Pass {
		note := ""
		switch r.Golden {
		case GoldenUpdated:
			note = " (golden updated)"
		case GoldenMissing:
			note = " (no golden file)"
		}
		fmt.Fprintf(b, "✓ %s%s\n", r.Name, note)
		return
	}
	fmt.Fprintf(b, "✗ %s\n", r.Name)
	for _, e := range r.Errors {
		fmt.Fprintf(b, "  %s\n", e)
	}
}
