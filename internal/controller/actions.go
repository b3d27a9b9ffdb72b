package controller

import (
	"context"
	"fmt"

	"github.com/roach88/snooker/internal/model"
	"github.com/roach88/snooker/internal/rules"
	"github.com/roach88/snooker/internal/stats"
)

// ShotOptions are the optional flags of a stroke.
type ShotOptions struct {
	Rest   bool
	Escape bool
}

// Pot records count balls of one color potted with a single stroke. A
// zero count means one.
func (c *Controller) Pot(ctx context.Context, ball model.Color, count int, opt ShotOptions) (rules.Outcome, error) {
	if count == 0 {
		count = 1
	}
	return c.Submit(ctx, model.Action{
		Kind: model.ActionPot,
		Pot:  &model.Pot{Ball: ball, Count: count, Rest: opt.Rest, Escape: opt.Escape},
	})
}

// Miss records a failed pot attempt.
func (c *Controller) Miss(ctx context.Context, ball model.Color, opt ShotOptions) (rules.Outcome, error) {
	return c.Submit(ctx, model.Action{
		Kind: model.ActionMiss,
		Miss: &model.Miss{Ball: ball, Rest: opt.Rest, Escape: opt.Escape},
	})
}

// Safety records a safety stroke.
func (c *Controller) Safety(ctx context.Context, ball model.Color, rest bool) (rules.Outcome, error) {
	return c.Submit(ctx, model.Action{
		Kind:   model.ActionSafety,
		Safety: &model.Safety{Ball: ball, Rest: rest},
	})
}

// Foul records a foul.
func (c *Controller) Foul(ctx context.Context, f model.Foul) (rules.Outcome, error) {
	return c.Submit(ctx, model.Action{Kind: model.ActionFoul, Foul: &f})
}

// EndBreak closes the current break and hands the table over.
func (c *Controller) EndBreak(ctx context.Context) (rules.Outcome, error) {
	return c.Submit(ctx, model.Action{Kind: model.ActionEndBreak})
}

// EndFrame finishes the frame on the current scores.
func (c *Controller) EndFrame(ctx context.Context) (rules.Outcome, error) {
	return c.Submit(ctx, model.Action{Kind: model.ActionEndFrame})
}

// Undo reverts the last recorded shot.
func (c *Controller) Undo(ctx context.Context) (rules.Outcome, error) {
	return c.Submit(ctx, model.Action{Kind: model.ActionUndo})
}

// Submit records a on the current frame.
//
// An empty a.ID is filled from the id generator; an id that was already
// recorded returns ErrDuplicateAction. The timestamp and timings are taken
// from the controller's clock, overriding whatever a carries. On any error
// the match is unchanged.
func (c *Controller) Submit(ctx context.Context, a model.Action) (rules.Outcome, error) {
	if err := c.writable(); err != nil {
		return rules.Outcome{}, err
	}
	if a.ID == "" {
		a.ID = c.ids.NewActionID()
	}
	if _, dup := c.seen[a.ID]; dup {
		return rules.Outcome{}, fmt.Errorf("%w: %s", ErrDuplicateAction, a.ID)
	}

	if a.Kind == model.ActionUndo {
		if !c.phase.acceptsUndo() {
			return rules.Outcome{}, c.wrongPhase("undo")
		}
	} else if !c.phase.acceptsShots() {
		return rules.Outcome{}, c.wrongPhase(string(a.Kind))
	}

	f := c.match.Frame()
	if err := rules.CheckNextBall(f, a); err != nil {
		return rules.Outcome{}, err
	}
	if p, ok := c.promptFor(f, a); ok {
		if err := c.ask(ctx, p); err != nil {
			return rules.Outcome{}, err
		}
	}

	now := c.clock.Now()
	a.At = now.UTC()
	a.Elapsed = millis(c.timer.FrameElapsed())
	a.ShotTime = 0
	if a.IsShot() {
		a.ShotTime = millis(c.timer.ShotElapsed())
	}

	out, err := c.engine.Record(f, a)
	if err != nil {
		if rules.IsNothingToUndo(err) {
			c.notify.Notify(Notification{Level: LevelInfo, Message: "Nothing to undo"})
			return rules.Outcome{}, fmt.Errorf("%w: %w", ErrNothingToUndo, err)
		}
		return rules.Outcome{}, err
	}

	c.seen[a.ID] = struct{}{}
	c.match.Updated = now.UTC()
	if a.IsShot() {
		c.timer.StartShot()
	}
	stats.Refresh(c.match)

	c.logger.Debug().
		Str("match", c.match.ID).
		Int("frame", f.Number).
		Str("action", a.ID).
		Str("kind", string(a.Kind)).
		Ints("scores", f.Scores[:]).
		Bool("switched", out.Switched).
		Msg("action recorded")

	if out.FrameComplete {
		c.completeFrame(ctx, f, out)
	}

	c.persist(ctx)
	c.renderView()
	return out, nil
}

// NextFrame opens the next frame after the user confirms the result of
// the one just finished.
func (c *Controller) NextFrame(ctx context.Context) error {
	if err := c.writable(); err != nil {
		return err
	}
	if c.phase != PhaseFrameComplete {
		return c.wrongPhase("start the next frame")
	}

	f := c.match.Frame()
	err := c.ask(ctx, Prompt{
		Kind:    PromptNextFrame,
		Message: fmt.Sprintf("%s Start frame %d?", c.frameResult(f), f.Number+1),
	})
	if err != nil {
		return err
	}

	c.phase = PhaseNextFrameStarting
	c.renderView()

	next, err := rules.NextFrame(c.match, c.clock.Now())
	if err != nil {
		c.phase = PhaseFrameComplete
		return err
	}
	c.timer.Reset()
	c.phase = PhaseAwaitingPlayStart
	c.logger.Info().Str("match", c.match.ID).Int("frame", next.Number).Msg("frame opened")

	c.persist(ctx)
	c.renderView()
	return nil
}

// completeFrame handles a frame that has just been finalized.
func (c *Controller) completeFrame(ctx context.Context, f *model.Frame, out rules.Outcome) {
	c.timer.EndFrame()

	if out.Tie {
		c.logger.Warn().
			Str("match", c.match.ID).
			Int("frame", f.Number).
			Ints("scores", f.Scores[:]).
			Msg("frame finished level, no winner recorded")
		c.notify.Notify(Notification{
			Level:   LevelWarning,
			Message: fmt.Sprintf("Frame %d finished level at %d-%d; no winner recorded", f.Number, f.Scores[0], f.Scores[1]),
		})
	}

	if rules.IsMatchComplete(c.match) {
		c.finishMatch(ctx)
		return
	}

	c.phase = PhaseFrameComplete
	c.notify.Notify(Notification{Level: LevelInfo, Message: c.frameResult(f)})
}

// finishMatch completes a decided match. It becomes read-only and the
// next save moves it to history.
func (c *Controller) finishMatch(ctx context.Context) {
	winner, err := rules.CompleteMatch(c.match, c.clock.Now())
	if err != nil {
		c.logger.Error().Err(err).Str("match", c.match.ID).Msg("complete match")
		return
	}
	c.timer.Reset()
	c.phase = PhaseMatchComplete
	stats.Refresh(c.match)

	won := rules.FramesWon(c.match)
	c.logger.Info().
		Str("match", c.match.ID).
		Int("winner", winner).
		Ints("frames", won[:]).
		Msg("match complete")
	c.notify.Notify(Notification{
		Level:   LevelInfo,
		Message: fmt.Sprintf("%s wins the match %d-%d", c.match.Players[winner], won[winner], won[model.Opponent(winner)]),
	})
}

func (c *Controller) frameResult(f *model.Frame) string {
	if f.Winner == nil {
		return fmt.Sprintf("Frame %d drawn %d-%d.", f.Number, f.Scores[0], f.Scores[1])
	}
	w := *f.Winner
	return fmt.Sprintf("Frame %d to %s, %d-%d.", f.Number, c.match.Players[w], f.Scores[w], f.Scores[model.Opponent(w)])
}

// promptFor returns the confirmation an action needs, if any.
func (c *Controller) promptFor(f *model.Frame, a model.Action) (Prompt, bool) {
	switch a.Kind {
	case model.ActionEndBreak:
		return Prompt{
			Kind:    PromptEndBreak,
			Message: fmt.Sprintf("End %s's break?", c.match.Players[f.ActivePlayer]),
		}, true
	case model.ActionEndFrame:
		return Prompt{
			Kind:    PromptEndFrame,
			Message: fmt.Sprintf("End frame %d at %d-%d?", f.Number, f.Scores[0], f.Scores[1]),
		}, true
	case model.ActionUndo:
		return Prompt{Kind: PromptUndo, Message: "Undo the last shot?"}, true
	}
	return Prompt{}, false
}
