package testutil

import (
	"time"

	"github.com/roach88/snooker/internal/model"
)

// Script builds a deterministic action log. Every action lands Step after
// the previous one and spends Step as its shot time.
type Script struct {
	ids  *SequentialIDs
	at   time.Time
	base time.Time
	Step time.Duration
}

// NewScript starts a script at start (Epoch when zero).
func NewScript(start time.Time) *Script {
	if start.IsZero() {
		start = Epoch
	}
	return &Script{
		ids:  NewSequentialIDs(""),
		at:   start.UTC(),
		base: start.UTC(),
		Step: 10 * time.Second,
	}
}

// Start is the time the script began.
func (s *Script) Start() time.Time {
	return s.base
}

func (s *Script) next(kind model.ActionKind) model.Action {
	s.at = s.at.Add(s.Step)
	a := model.Action{
		ID:      s.ids.NewActionID(),
		Kind:    kind,
		At:      s.at,
		Elapsed: s.at.Sub(s.base).Milliseconds(),
	}
	if a.IsShot() {
		a.ShotTime = s.Step.Milliseconds()
	}
	return a
}

// Pot pots a single ball.
func (s *Script) Pot(ball model.Color) model.Action {
	return s.PotN(ball, 1)
}

// PotN pots count balls of one color in a single stroke.
func (s *Script) PotN(ball model.Color, count int) model.Action {
	a := s.next(model.ActionPot)
	a.Pot = &model.Pot{Ball: ball, Count: count}
	return a
}

// PotWith pots one ball with the given rest and escape flags.
func (s *Script) PotWith(ball model.Color, rest, escape bool) model.Action {
	a := s.next(model.ActionPot)
	a.Pot = &model.Pot{Ball: ball, Count: 1, Rest: rest, Escape: escape}
	return a
}

// Miss misses ball.
func (s *Script) Miss(ball model.Color) model.Action {
	a := s.next(model.ActionMiss)
	a.Miss = &model.Miss{Ball: ball}
	return a
}

// MissWith misses ball with the given rest and escape flags.
func (s *Script) MissWith(ball model.Color, rest, escape bool) model.Action {
	a := s.next(model.ActionMiss)
	a.Miss = &model.Miss{Ball: ball, Rest: rest, Escape: escape}
	return a
}

// Safety plays a safety on ball.
func (s *Script) Safety(ball model.Color) model.Action {
	a := s.next(model.ActionSafety)
	a.Safety = &model.Safety{Ball: ball}
	return a
}

// Foul records a foul. The payload is copied.
func (s *Script) Foul(f model.Foul) model.Action {
	a := s.next(model.ActionFoul)
	a.Foul = &f
	return a
}

// EndBreak ends the current break.
func (s *Script) EndBreak() model.Action {
	return s.next(model.ActionEndBreak)
}

// EndFrame forces the frame to finish.
func (s *Script) EndFrame() model.Action {
	return s.next(model.ActionEndFrame)
}

// Undo undoes the last shot.
func (s *Script) Undo() model.Action {
	return s.next(model.ActionUndo)
}
