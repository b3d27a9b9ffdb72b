package rules

import (
	"slices"
	"time"

	"github.com/roach88/snooker/internal/model"
)

// Outcome summarizes what an applied action did to the frame.
type Outcome struct {
	// Shot is the recorded stroke, nil for frame-level actions.
	Shot *model.Shot

	Switched      bool
	BreakEnded    bool
	FrameComplete bool

	// Tie is set when the frame finished level. Winner stays unset.
	Tie bool
}

// Apply applies a single non-undo action to f.
//
// The action is validated against f before anything is changed, so on
// error f is untouched. Completion is checked after every shot: clearing
// the table finalizes the frame with the action's timestamp and elapsed
// time.
func Apply(f *model.Frame, a model.Action) (Outcome, error) {
	if errs := a.Validate(); len(errs) > 0 {
		return Outcome{}, newRuleError(ErrCodeInvalidAction, "%s", errs[0].Error())
	}
	if f.Ended() {
		return Outcome{}, newRuleError(ErrCodeFrameOver, "frame %d is already over", f.Number)
	}
	if err := checkTable(f, a); err != nil {
		return Outcome{}, err
	}

	at := a.At.UTC()
	var out Outcome

	switch a.Kind {
	case model.ActionPot:
		out = applyPot(f, a, at)
	case model.ActionMiss:
		out = applyMiss(f, a, at)
	case model.ActionSafety:
		out = applySafety(f, a, at)
	case model.ActionFoul:
		out = applyFoul(f, a, at)
	case model.ActionEndBreak:
		out = applyEndBreak(f, at)
	case model.ActionEndFrame:
		finalize(f, a, &out)
		return out, nil
	case model.ActionUndo:
		return Outcome{}, newRuleError(ErrCodeInvalidAction, "undo must go through Record")
	}

	if IsFrameComplete(f) {
		finalize(f, a, &out)
	}
	return out, nil
}

// checkTable rejects pots of balls that have already left the table and
// foul values outside the legal range.
func checkTable(f *model.Frame, a model.Action) error {
	switch {
	case a.Pot != nil && a.Pot.Ball.IsRed():
		if f.RedsRemaining == 0 {
			return newRuleError(ErrCodeBallNotOnTable, "no reds left on the table")
		}
	case a.Pot != nil:
		if !slices.Contains(f.ColorsRemaining, a.Pot.Ball) {
			return newRuleError(ErrCodeBallNotOnTable, "%s is no longer on the table", a.Pot.Ball)
		}
	case a.Foul != nil:
		if a.Foul.Points < MinFoulPoints || a.Foul.Points > MaxFoulPoints {
			return newRuleError(ErrCodeFoulPoints, "foul worth %d, must be %d to %d",
				a.Foul.Points, MinFoulPoints, MaxFoulPoints)
		}
	}
	return nil
}

func applyPot(f *model.Frame, a model.Action, at time.Time) Outcome {
	p := a.Pot
	br := ensureBreak(f, at)
	clearanceHold := previousPottedRed(br)
	free := f.FreeBall && !p.Ball.IsRed()

	points := p.Ball.Value()
	switch {
	case free:
		points = 1
	case p.Ball.IsRed():
		points = p.Count
	}

	shot := model.Shot{
		Timestamp:  at,
		Ball:       p.Ball,
		Potted:     true,
		Points:     points,
		UsedRest:   p.Rest,
		IsEscape:   p.Escape,
		IsFreeBall: free,
		Duration:   a.ShotTime,
	}
	if p.Ball.IsRed() && p.Count > 1 {
		shot.MultipleReds = p.Count
	}

	br.Shots = append(br.Shots, shot)
	br.Points += points
	br.Balls = append(br.Balls, p.Ball)
	f.Scores[f.ActivePlayer] += points

	// A free ball is not the nominated color, so it stays on the table.
	if !free {
		removeFromTable(f, p.Ball, p.Count, clearanceHold)
	}
	f.FreeBall = false

	recorded := br.Shots[len(br.Shots)-1]
	return Outcome{Shot: &recorded}
}

// previousPottedRed reports whether the last shot in br potted a red.
func previousPottedRed(br *model.Break) bool {
	if len(br.Shots) == 0 {
		return false
	}
	last := br.Shots[len(br.Shots)-1]
	return last.Potted && last.Ball.IsRed()
}

// removeFromTable updates the rack after a pot. Colors potted while reds
// remain are respotted, and so is the color taken straight after the
// last red.
func removeFromTable(f *model.Frame, ball model.Color, count int, afterRed bool) {
	if ball.IsRed() {
		f.RedsRemaining = max(0, f.RedsRemaining-count)
		return
	}
	if f.RedsRemaining > 0 || afterRed {
		return
	}
	if i := slices.Index(f.ColorsRemaining, ball); i >= 0 {
		f.ColorsRemaining = slices.Delete(f.ColorsRemaining, i, i+1)
	}
}

func applyMiss(f *model.Frame, a model.Action, at time.Time) Outcome {
	br := ensureBreak(f, at)
	br.Shots = append(br.Shots, model.Shot{
		Timestamp: at,
		Ball:      a.Miss.Ball,
		UsedRest:  a.Miss.Rest,
		IsEscape:  a.Miss.Escape,
		Duration:  a.ShotTime,
	})
	shot := br.Shots[len(br.Shots)-1]
	f.FreeBall = false
	changeTurn(f, at, true)
	return Outcome{Shot: &shot, Switched: true, BreakEnded: true}
}

func applySafety(f *model.Frame, a model.Action, at time.Time) Outcome {
	br := ensureBreak(f, at)
	br.Shots = append(br.Shots, model.Shot{
		Timestamp: at,
		Ball:      a.Safety.Ball,
		UsedRest:  a.Safety.Rest,
		IsSafety:  true,
		Duration:  a.ShotTime,
	})
	shot := br.Shots[len(br.Shots)-1]
	f.FreeBall = false
	changeTurn(f, at, true)
	return Outcome{Shot: &shot, Switched: true, BreakEnded: true}
}

func applyFoul(f *model.Frame, a model.Action, at time.Time) Outcome {
	foul := a.Foul
	br := ensureBreak(f, at)
	f.Scores[model.Opponent(f.ActivePlayer)] += foul.Points

	br.Shots = append(br.Shots, model.Shot{
		Timestamp:  at,
		Ball:       foul.Ball,
		IsFoul:     true,
		FoulPoints: foul.Points,
		Duration:   a.ShotTime,
	})
	shot := br.Shots[len(br.Shots)-1]

	f.RedsRemaining = max(0, f.RedsRemaining-foul.RedsPotted)
	changeTurn(f, at, !foul.PlayAgain)
	f.FreeBall = foul.FreeBall

	return Outcome{Shot: &shot, Switched: !foul.PlayAgain, BreakEnded: true}
}

func applyEndBreak(f *model.Frame, at time.Time) Outcome {
	if br := f.Current(); br != nil && len(br.Shots) == 0 {
		dropCurrent(f)
	}
	f.FreeBall = false
	changeTurn(f, at, true)
	return Outcome{Switched: true, BreakEnded: true}
}

// ensureBreak returns the open break, opening one for the active player
// when none is open.
func ensureBreak(f *model.Frame, at time.Time) *model.Break {
	if br := f.Current(); br != nil {
		return br
	}
	f.Breaks = append(f.Breaks, newBreak(f.ActivePlayer, at))
	f.CurrentBreak = len(f.Breaks) - 1
	return &f.Breaks[f.CurrentBreak]
}

// changeTurn closes the open break and opens the next one, flipping the
// active player when flip is set.
func changeTurn(f *model.Frame, at time.Time, flip bool) {
	closeCurrent(f, at)
	if flip {
		f.ActivePlayer = model.Opponent(f.ActivePlayer)
	}
	ensureBreak(f, at)
}

func closeCurrent(f *model.Frame, at time.Time) {
	if br := f.Current(); br != nil {
		br.EndTime = stamp(at)
	}
	f.CurrentBreak = model.NoBreak
}

// dropCurrent removes the open break. The open break is always last.
func dropCurrent(f *model.Frame) {
	if f.CurrentBreak < 0 {
		return
	}
	f.Breaks = slices.Delete(f.Breaks, f.CurrentBreak, f.CurrentBreak+1)
	f.CurrentBreak = model.NoBreak
}

// finalize closes the frame. An empty trailing break is dropped unless it
// is the only break the frame has.
func finalize(f *model.Frame, a model.Action, out *Outcome) {
	at := a.At.UTC()
	if br := f.Current(); br != nil {
		if len(br.Shots) == 0 && len(f.Breaks) > 1 {
			dropCurrent(f)
		} else {
			closeCurrent(f, at)
		}
	}
	f.CurrentBreak = model.NoBreak
	f.EndTime = stamp(at)
	f.Duration = max(0, a.Elapsed)
	f.FreeBall = false
	f.Undoable = 0

	if w, ok := FrameWinner(f); ok {
		f.Winner = &w
		f.Tied = false
	} else {
		f.Winner = nil
		f.Tied = true
		out.Tie = true
	}
	out.BreakEnded = true
	out.FrameComplete = true
}

func stamp(t time.Time) *time.Time {
	t = t.UTC()
	return &t
}
