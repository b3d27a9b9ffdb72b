package cli

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/snooker/internal/app"
	"github.com/roach88/snooker/internal/model"
	"github.com/roach88/snooker/internal/stats"
	"github.com/roach88/snooker/internal/store"
)

// FrameCheck is the verification result for one frame.
type FrameCheck struct {
	Number   int    `json:"number"`
	Actions  int    `json:"actions"`
	Stored   string `json:"stored"`
	Replayed string `json:"replayed,omitempty"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// VerifyResult is the JSON payload of the verify command.
type VerifyResult struct {
	ID          string       `json:"id"`
	Fingerprint string       `json:"fingerprint"`
	Frames      []FrameCheck `json:"frames"`
	StatsOK     bool         `json:"statsOk"`
	OK          bool         `json:"ok"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [match-id]",
		Short: "Check a stored match against its shot log",
		Long: `Rebuild every frame of a stored match from its action log and compare
the result with the stored frame, then recompute the statistics.

Without an id the current match is checked. Prints the match fingerprint,
a SHA-256 over the canonical document.

Exit codes:
  0 - Every frame replays to the stored state
  1 - A frame or the statistics differ from the log
  2 - Command error`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			out := rootOpts.formatter(cmd)
			s, err := rootOpts.open(cmd, app.Ports{})
			if err != nil {
				return err
			}
			defer stop(s, &err)

			m, err := storedMatch(s, cmd, args)
			if err != nil {
				return failed(out, "could not load match", err)
			}
			result, err := verifyMatch(s, m)
			if err != nil {
				return failed(out, "could not verify match", err)
			}

			if err := out.Emit(verifyText(result), result); err != nil {
				return err
			}
			if !result.OK {
				return NewExitError(ExitFailure, fmt.Sprintf("match %s does not match its log", m.ID))
			}
			return nil
		},
	}
}

// storedMatch reads the document as stored, before the controller
// rebuilds it from its logs.
func storedMatch(s *app.Session, cmd *cobra.Command, args []string) (*model.Match, error) {
	ctx := commandContext(cmd)
	if len(args) == 1 {
		m, err := s.Repo.LoadByID(ctx, args[0])
		if err == nil || !errors.Is(err, store.ErrNotFound) {
			return m, err
		}
		if cur, curErr := s.Repo.LoadCurrent(ctx); curErr == nil && cur.ID == args[0] {
			return cur, nil
		}
		return nil, err
	}
	return s.Repo.LoadCurrent(ctx)
}

func verifyMatch(s *app.Session, m *model.Match) (VerifyResult, error) {
	fp, err := model.Fingerprint(m)
	if err != nil {
		return VerifyResult{}, err
	}
	result := VerifyResult{ID: m.ID, Fingerprint: fp, OK: true}

	for _, f := range m.Frames {
		check := FrameCheck{Number: f.Number, Actions: len(f.Log)}
		if check.Stored, err = model.FrameFingerprint(f); err != nil {
			return VerifyResult{}, err
		}
		rebuilt, err := s.Engine.ReplayFrame(f)
		if err != nil {
			check.Error = err.Error()
		} else if check.Replayed, err = model.FrameFingerprint(rebuilt); err != nil {
			return VerifyResult{}, err
		}
		check.OK = check.Error == "" && check.Stored == check.Replayed
		result.OK = result.OK && check.OK
		result.Frames = append(result.Frames, check)
	}

	result.StatsOK = reflect.DeepEqual(stats.ForMatch(m), m.Statistics)
	result.OK = result.OK && result.StatsOK

	s.Logger.Debug().Str("match", m.ID).Bool("ok", result.OK).Msg("match verified")
	return result, nil
}

func verifyText(r VerifyResult) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Match %s\nFingerprint %s\n", r.ID, r.Fingerprint)
	for _, f := range r.Frames {
		switch {
		case f.Error != "":
			fmt.Fprintf(&buf, "  frame %d: log does not replay: %s\n", f.Number, f.Error)
		case !f.OK:
			fmt.Fprintf(&buf, "  frame %d: stored state differs from its %d actions\n", f.Number, f.Actions)
		default:
			fmt.Fprintf(&buf, "  frame %d: ok (%d actions)\n", f.Number, f.Actions)
		}
	}
	if r.StatsOK {
		buf.WriteString("  statistics: ok\n")
	} else {
		buf.WriteString("  statistics: stale\n")
	}
	if r.OK {
		buf.WriteString("Verified\n")
	} else {
		buf.WriteString("Verification FAILED\n")
	}
	return buf.String()
}
