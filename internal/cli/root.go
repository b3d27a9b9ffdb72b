// Package cli implements the snooker command line: match management
// commands and an interactive scoring session.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/snooker/internal/app"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DBPath  string // overrides SNOOKER_DB_PATH
	Store   string // overrides SNOOKER_STORE
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the snooker CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "snooker",
		Short: "Snooker scorekeeper",
		Long: `Keep score of snooker matches from the terminal.

Matches are saved after every shot. Start one with "snooker new", then
score it with "snooker session".`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database (default from SNOOKER_DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.Store, "store", "", "storage backend: sqlite or redis (default from SNOOKER_STORE)")

	cmd.AddCommand(NewNewCommand(opts))
	cmd.AddCommand(NewSessionCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewResumeCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewSettingsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) overrides() app.Overrides {
	ov := app.Overrides{DBPath: o.DBPath, Store: o.Store}
	if o.Verbose {
		ov.LogLevel = "debug"
	}
	return ov
}

// open starts the application for one command. The caller must Stop the
// returned session.
func (o *RootOptions) open(cmd *cobra.Command, ports app.Ports) (*app.Session, error) {
	s, err := app.Start(commandContext(cmd), o.overrides(), ports)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open match storage", err)
	}
	return s, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// stop shuts a session down, keeping err if there already is one.
func stop(s *app.Session, err *error) {
	if stopErr := s.Stop(context.Background()); stopErr != nil && *err == nil {
		*err = WrapExitError(ExitCommandError, "failed to close match storage", stopErr)
	}
}

// failed reports err through the formatter and converts it to an
// ExitError.
func failed(out *OutputFormatter, message string, err error) error {
	_ = out.Error(ErrorCode(err), fmt.Sprintf("%s: %v", message, err), nil)
	return WrapExitError(ExitFailure, message, err)
}
