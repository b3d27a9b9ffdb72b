package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/snooker/internal/app"
	"github.com/roach88/snooker/internal/model"
	"github.com/roach88/snooker/internal/stats"
	"github.com/roach88/snooker/internal/store"
)

// findMatch returns the current match when id is empty or matches it,
// otherwise the history entry with that id.
func findMatch(s *app.Session, cmd *cobra.Command, id string) (*model.Match, error) {
	if m := s.Controller.Match(); m != nil && (id == "" || m.ID == id) {
		return m, nil
	}
	if id == "" {
		return nil, fmt.Errorf("no current match: %w", store.ErrNotFound)
	}
	history, err := s.Controller.History(commandContext(cmd))
	if err != nil {
		return nil, err
	}
	for _, m := range history {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("match %s: %w", id, store.ErrNotFound)
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show match statistics",
		Long: `Show statistics for the current match, or for a saved match with --id.

Statistics are recomputed from the shot record every time.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			out := rootOpts.formatter(cmd)
			s, err := rootOpts.open(cmd, app.Ports{})
			if err != nil {
				return err
			}
			defer stop(s, &err)

			var summary stats.MatchSummary
			if id == "" {
				summary, err = s.Controller.Stats()
			} else {
				var m *model.Match
				if m, err = findMatch(s, cmd, id); err == nil {
					summary = stats.SummarizeMatch(m)
				}
			}
			if err != nil {
				return failed(out, "could not load match", err)
			}
			var buf strings.Builder
			writeSummary(&buf, summary)
			return out.Emit(buf.String(), summary)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "match id (default: current match)")

	return cmd
}

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Size bool
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	Matches []MatchInfo       `json:"matches"`
	Size    *store.SizeReport `json:"size,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List saved matches, most recent first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Size, "size", false, "also report storage used")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) (err error) {
	out := opts.formatter(cmd)
	s, err := opts.open(cmd, app.Ports{})
	if err != nil {
		return err
	}
	defer stop(s, &err)

	ctx := commandContext(cmd)
	matches, err := s.Controller.History(ctx)
	if err != nil {
		return failed(out, "could not read history", err)
	}

	result := HistoryResult{Matches: make([]MatchInfo, 0, len(matches))}
	var buf strings.Builder
	if len(matches) == 0 {
		buf.WriteString("No saved matches.\n")
	}
	for _, m := range matches {
		result.Matches = append(result.Matches, matchInfo(m))
		fmt.Fprintln(&buf, historyLine(m))
	}

	if opts.Size {
		size, err := s.Controller.StorageSize(ctx)
		if err != nil {
			return failed(out, "could not measure storage", err)
		}
		result.Size = &size
		fmt.Fprintf(&buf, "Storage: %s (current %s, history %s in %d matches)\n",
			formatBytes(size.Total()), formatBytes(size.CurrentBytes), formatBytes(size.HistoryBytes), size.HistoryCount)
	}
	return out.Emit(buf.String(), result)
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current match as JSON",
		Long: `Write the current match to a standalone JSON file.

Without --output the file is named snooker_match_<id>_<date>.json in the
working directory. Use --output - to write to stdout.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			out := rootOpts.formatter(cmd)
			s, err := rootOpts.open(cmd, app.Ports{})
			if err != nil {
				return err
			}
			defer stop(s, &err)

			data, name, err := s.Controller.Export()
			if err != nil {
				return failed(out, "could not export match", err)
			}
			if output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if output == "" {
				output = name
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return WrapExitError(ExitCommandError, "failed to write export", err)
			}
			return out.Emit("Exported to "+output+"\n", map[string]string{"path": filepath.Clean(output)})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path")

	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "import <file>",
		Short:         "Add an exported match to the history",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			out := rootOpts.formatter(cmd)
			data, err := os.ReadFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read import file", err)
			}

			s, err := rootOpts.open(cmd, app.Ports{Notifier: textNotifier{w: out.GetErrWriter(), verbose: rootOpts.Verbose}})
			if err != nil {
				return err
			}
			defer stop(s, &err)

			m, err := s.Controller.Import(commandContext(cmd), data)
			if err != nil {
				return failed(out, "could not import match", err)
			}
			return out.Emit("Imported match "+m.ID+"\n", matchInfo(m))
		},
	}
}
