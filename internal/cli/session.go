package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/snooker/internal/app"
	"github.com/roach88/snooker/internal/controller"
	"github.com/roach88/snooker/internal/model"
	"github.com/roach88/snooker/internal/rules"
)

const sessionHelp = `Commands:
  start                         start the clock on a new frame
  pause | resume | p            pause or resume play
  pot <ball> [n] [rest] [escape]
  miss <ball> [rest] [escape]
  safety <ball> [rest]
  foul <ball> <points> [again] [free] [reds=N]
  end-break | end-frame | undo
  next                          start the next frame
  new <player1> <player2> [best-of] [reds]
  board | clock | stats | save | help | quit
`

// errQuit ends the session loop without an error.
var errQuit = errors.New("quit")

// NewSessionCommand creates the session command.
func NewSessionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Score the current match interactively",
		Long: `Open the current match and score it shot by shot.

Type "help" inside the session for the list of commands. The match is
saved after every change; quitting and running "snooker session" again
carries on where you left off.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(rootOpts, cmd)
		},
	}
}

func runSession(opts *RootOptions, cmd *cobra.Command) (err error) {
	w := cmd.OutOrStdout()
	in := newLineReader(cmd.InOrStdin())
	board := &boardRenderer{w: w}

	s, err := opts.open(cmd, app.Ports{
		Confirmer: promptConfirmer{in: in, out: w},
		Notifier:  textNotifier{w: w, verbose: true},
		Renderer:  board,
	})
	if err != nil {
		return err
	}
	defer stop(s, &err)

	ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, stopLoop := context.WithCancel(gctx)
	defer stopLoop()

	g.Go(func() error {
		return s.Controller.Run(loopCtx, s.Config.TickInterval)
	})
	g.Go(func() error {
		defer stopLoop()
		r := &repl{ctrl: s.Controller, in: in, w: w, board: board}
		return r.loop(gctx)
	})

	if err := g.Wait(); err != nil {
		return WrapExitError(ExitCommandError, "session ended", err)
	}
	if s.Controller.Dirty() {
		fmt.Fprintln(w, `There are unsaved changes. Run "snooker session" and "save" to retry.`)
	}
	return nil
}

// repl reads commands and drives the controller. It runs on a single
// goroutine, the only one that touches the controller apart from its
// tick loop.
type repl struct {
	ctrl  *controller.Controller
	in    *lineReader
	w     io.Writer
	board *boardRenderer
}

func (r *repl) loop(ctx context.Context) error {
	for {
		fmt.Fprint(r.w, "> ")
		line, err := r.in.Next(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			fmt.Fprintln(r.w)
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}

		err = r.exec(ctx, strings.Fields(line))
		switch {
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, controller.ErrCancelled):
			fmt.Fprintln(r.w, "Cancelled.")
		case err != nil:
			fmt.Fprintf(r.w, "error: %v\n", err)
		}
	}
}

// exec runs one command line.
func (r *repl) exec(ctx context.Context, fields []string) error {
	c := r.ctrl
	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "help", "?":
		fmt.Fprint(r.w, sessionHelp)
	case "quit", "exit", "q":
		return errQuit
	case "board":
		writeBoard(r.w, c.View())
	case "clock":
		fmt.Fprintln(r.w, r.board.Clock())
	case "start", "play":
		return c.StartPlay(ctx)
	case "pause":
		return c.Pause(ctx)
	case "resume":
		return c.Resume(ctx)
	case "p":
		return c.TogglePause(ctx)
	case "pot":
		ball, rest, err := parseBall(args)
		if err != nil {
			return err
		}
		count := 1
		if len(rest) > 0 {
			if n, err := strconv.Atoi(rest[0]); err == nil {
				count, rest = n, rest[1:]
			}
		}
		opt, err := parseShotFlags(rest, true)
		if err != nil {
			return err
		}
		return r.report(c.Pot(ctx, ball, count, opt))
	case "miss":
		ball, rest, err := parseBall(args)
		if err != nil {
			return err
		}
		opt, err := parseShotFlags(rest, true)
		if err != nil {
			return err
		}
		return r.report(c.Miss(ctx, ball, opt))
	case "safety":
		ball, rest, err := parseBall(args)
		if err != nil {
			return err
		}
		opt, err := parseShotFlags(rest, false)
		if err != nil {
			return err
		}
		return r.report(c.Safety(ctx, ball, opt.Rest))
	case "foul":
		foul, err := parseFoul(args)
		if err != nil {
			return err
		}
		return r.report(c.Foul(ctx, foul))
	case "end-break":
		return r.report(c.EndBreak(ctx))
	case "end-frame":
		return r.report(c.EndFrame(ctx))
	case "undo":
		return r.report(c.Undo(ctx))
	case "next":
		return c.NextFrame(ctx)
	case "new":
		setup, err := parseSetup(args)
		if err != nil {
			return err
		}
		m, err := c.StartMatch(ctx, setup)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.w, "Started match %s. Type \"start\" to begin.\n", m.ID)
	case "stats":
		summary, err := c.Stats()
		if err != nil {
			return err
		}
		writeSummary(r.w, summary)
	case "save":
		return c.Save(ctx)
	default:
		return fmt.Errorf("unknown command %q (type help)", fields[0])
	}
	return nil
}

// report drops the outcome; the renderer has already redrawn the board.
func (r *repl) report(_ rules.Outcome, err error) error {
	return err
}

func parseBall(args []string) (model.Color, []string, error) {
	if len(args) == 0 {
		return "", nil, errors.New("which ball?")
	}
	ball, err := model.ParseColor(args[0])
	if err != nil {
		return "", nil, err
	}
	return ball, args[1:], nil
}

func parseShotFlags(args []string, escape bool) (controller.ShotOptions, error) {
	var opt controller.ShotOptions
	for _, a := range args {
		switch {
		case a == "rest":
			opt.Rest = true
		case a == "escape" && escape:
			opt.Escape = true
		default:
			return opt, fmt.Errorf("unexpected %q", a)
		}
	}
	return opt, nil
}

func parseFoul(args []string) (model.Foul, error) {
	ball, rest, err := parseBall(args)
	if err != nil {
		return model.Foul{}, err
	}
	if len(rest) == 0 {
		return model.Foul{}, errors.New("how many points?")
	}
	points, err := strconv.Atoi(rest[0])
	if err != nil {
		return model.Foul{}, fmt.Errorf("points: %w", err)
	}
	foul := model.Foul{Ball: ball, Points: points}
	for _, a := range rest[1:] {
		switch {
		case a == "again":
			foul.PlayAgain = true
		case a == "free":
			foul.FreeBall = true
		case strings.HasPrefix(a, "reds="):
			n, err := strconv.Atoi(strings.TrimPrefix(a, "reds="))
			if err != nil {
				return model.Foul{}, fmt.Errorf("reds: %w", err)
			}
			foul.RedsPotted = n
		default:
			return model.Foul{}, fmt.Errorf("unexpected %q", a)
		}
	}
	return foul, nil
}

func parseSetup(args []string) (rules.Setup, error) {
	if len(args) < 2 || len(args) > 4 {
		return rules.Setup{}, errors.New("usage: new <player1> <player2> [best-of] [reds]")
	}
	setup := rules.Setup{Players: [2]string{args[0], args[1]}, BestOf: model.DefaultBestOf, Reds: model.DefaultReds}
	var err error
	if len(args) > 2 {
		if setup.BestOf, err = strconv.Atoi(args[2]); err != nil {
			return rules.Setup{}, fmt.Errorf("best-of: %w", err)
		}
	}
	if len(args) > 3 {
		if setup.Reds, err = strconv.Atoi(args[3]); err != nil {
			return rules.Setup{}, fmt.Errorf("reds: %w", err)
		}
	}
	return setup, nil
}
