package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/snooker/internal/app"
	"github.com/roach88/snooker/internal/model"
	"github.com/roach88/snooker/internal/rules"
)

// NewOptions holds flags for the new command.
type NewOptions struct {
	*RootOptions
	BestOf int
	Reds   int
}

// MatchInfo is the JSON payload describing a match.
type MatchInfo struct {
	ID      string       `json:"id"`
	Players []string     `json:"players"`
	BestOf  int          `json:"bestOf"`
	Reds    int          `json:"numberOfReds"`
	Status  model.Status `json:"status"`
	Frames  [2]int       `json:"framesWon"`
}

func matchInfo(m *model.Match) MatchInfo {
	return MatchInfo{
		ID:      m.ID,
		Players: m.Players,
		BestOf:  m.BestOf,
		Reds:    m.Reds,
		Status:  m.Status,
		Frames:  rules.FramesWon(m),
	}
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "new <player1> <player2>",
		Short: "Start a new match",
		Long: `Start a new match and make it current.

An unfinished current match is moved to the history first. Player 1
breaks in the first frame.

Examples:
  snooker new Ronnie Judd
  snooker new Ronnie Judd --best-of 7 --reds 6`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.BestOf, "best-of", model.DefaultBestOf, "number of frames (odd)")
	cmd.Flags().IntVar(&opts.Reds, "reds", model.DefaultReds, "reds per frame (1-15)")

	return cmd
}

func runNew(opts *NewOptions, args []string, cmd *cobra.Command) (err error) {
	out := opts.formatter(cmd)
	s, err := opts.open(cmd, app.Ports{Notifier: textNotifier{w: out.GetErrWriter(), verbose: opts.Verbose}})
	if err != nil {
		return err
	}
	defer stop(s, &err)

	m, err := s.Controller.StartMatch(commandContext(cmd), rules.Setup{
		Players: [2]string{args[0], args[1]},
		BestOf:  opts.BestOf,
		Reds:    opts.Reds,
	})
	if err != nil {
		return failed(out, "could not start match", err)
	}
	return out.Emit("Started match "+m.ID+"\n", matchInfo(m))
}

// NewResumeCommand creates the resume command.
func NewResumeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resume <match-id>",
		Short: "Make a saved match current",
		Long: `Load a match from the history and make it current.

The match that was current is moved to the history. A completed match
opens read-only.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			out := rootOpts.formatter(cmd)
			s, err := rootOpts.open(cmd, app.Ports{Notifier: textNotifier{w: out.GetErrWriter(), verbose: rootOpts.Verbose}})
			if err != nil {
				return err
			}
			defer stop(s, &err)

			if err := s.Controller.ResumeByID(commandContext(cmd), args[0]); err != nil {
				return failed(out, "could not resume match", err)
			}
			m := s.Controller.Match()
			text := "Resumed match " + m.ID + "\n"
			if s.Controller.ReadOnly() {
				text = "Opened completed match " + m.ID + " (read-only)\n"
			}
			return out.Emit(text, matchInfo(m))
		},
	}
}

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Yes bool
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "delete <match-id>",
		Short:         "Delete a saved match",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			out := opts.formatter(cmd)
			ports := app.Ports{Notifier: textNotifier{w: out.GetErrWriter(), verbose: opts.Verbose}}
			if !opts.Yes {
				ports.Confirmer = promptConfirmer{in: newLineReader(cmd.InOrStdin()), out: out.GetErrWriter()}
			}
			s, err := opts.open(cmd, ports)
			if err != nil {
				return err
			}
			defer stop(s, &err)

			if err := s.Controller.Delete(commandContext(cmd), args[0]); err != nil {
				return failed(out, "could not delete match", err)
			}
			return out.Emit("Deleted match "+args[0]+"\n", map[string]string{"deleted": args[0]})
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}
