package rules

import (
	"fmt"
	"time"

	"github.com/roach88/snooker/internal/model"
)

// Setup holds the parameters for a new match.
type Setup struct {
	Players [2]string
	BestOf  int
	Reds    int
}

// Validate checks the setup and returns every problem found.
func (s Setup) Validate() []model.ValidationError {
	var errs []model.ValidationError
	for i, name := range s.Players {
		if model.NormalizeName(name) == "" {
			errs = append(errs, model.ValidationError{
				Field:   fmt.Sprintf("players[%d]", i),
				Message: "player name is required",
			})
		}
	}
	if s.BestOf < 1 || s.BestOf%2 == 0 {
		errs = append(errs, model.ValidationError{
			Field:   "bestOf",
			Message: fmt.Sprintf("best of %d, must be a positive odd number", s.BestOf),
		})
	}
	if s.Reds < 1 || s.Reds > model.MaxReds {
		errs = append(errs, model.ValidationError{
			Field:   "numberOfReds",
			Message: fmt.Sprintf("%d reds, must be 1 to %d", s.Reds, model.MaxReds),
		})
	}
	return errs
}

// NewMatch creates an in-progress match with frame 1 open and player 0 to
// break. A zero Reds value means a full rack.
func NewMatch(id string, s Setup, now time.Time) (*model.Match, error) {
	if s.Reds == 0 {
		s.Reds = model.DefaultReds
	}
	if errs := s.Validate(); len(errs) > 0 {
		return nil, newRuleError(ErrCodeInvalidSetup, "%s", errs[0].Error())
	}

	now = now.UTC()
	m := &model.Match{
		ID:      id,
		Version: model.SchemaVersion,
		Players: []string{
			model.NormalizeName(s.Players[0]),
			model.NormalizeName(s.Players[1]),
		},
		BestOf:     s.BestOf,
		Reds:       s.Reds,
		Created:    now,
		Updated:    now,
		Status:     model.StatusInProgress,
		Frames:     []*model.Frame{},
		Statistics: model.NewMatchStatistics(),
	}
	OpenFrame(m, now)
	return m, nil
}

// OpenFrame appends the next frame and makes it current.
func OpenFrame(m *model.Match, now time.Time) *model.Frame {
	f := NewFrame(len(m.Frames)+1, m.Reds, now)
	m.Frames = append(m.Frames, f)
	m.CurrentFrame = len(m.Frames) - 1
	m.Updated = now.UTC()
	return f
}

// FramesNeeded is the number of frames that wins a best-of match.
func FramesNeeded(bestOf int) int {
	return (bestOf + 1) / 2
}

// FramesWon counts completed frames won by each player. Tied frames count
// for nobody.
func FramesWon(m *model.Match) [2]int {
	var won [2]int
	for _, f := range m.Frames {
		if f.Ended() && f.Winner != nil {
			won[*f.Winner]++
		}
	}
	return won
}

// MatchWinner returns the player who has reached the winning frame count.
func MatchWinner(m *model.Match) (int, bool) {
	won := FramesWon(m)
	need := FramesNeeded(m.BestOf)
	for p, n := range won {
		if n >= need {
			return p, true
		}
	}
	return 0, false
}

// IsMatchComplete reports whether either player has won enough frames.
func IsMatchComplete(m *model.Match) bool {
	_, ok := MatchWinner(m)
	return ok
}

// CompleteMatch marks a decided match completed and records the winner.
func CompleteMatch(m *model.Match, now time.Time) (int, error) {
	w, ok := MatchWinner(m)
	if !ok {
		return 0, newRuleError(ErrCodeInvalidAction, "match %s is not decided", m.ID)
	}
	m.Status = model.StatusCompleted
	m.Winner = &w
	m.Updated = now.UTC()
	return w, nil
}

// NextFrame opens the following frame of an undecided match. The current
// frame must be over.
func NextFrame(m *model.Match, now time.Time) (*model.Frame, error) {
	if m.Completed() || IsMatchComplete(m) {
		return nil, newRuleError(ErrCodeMatchOver, "match %s is decided", m.ID)
	}
	if f := m.Frame(); f != nil && !f.Ended() {
		return nil, newRuleError(ErrCodeInvalidAction, "frame %d is still in play", f.Number)
	}
	return OpenFrame(m, now), nil
}
