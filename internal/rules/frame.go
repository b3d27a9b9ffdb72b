package rules

import (
	"slices"
	"strings"
	"time"

	"github.com/roach88/snooker/internal/model"
)

// NewFrame returns a fresh frame with a full rack and an empty opening
// break for player 0.
func NewFrame(number, reds int, start time.Time) *model.Frame {
	start = start.UTC()
	return &model.Frame{
		Number:          number,
		StartTime:       start,
		Scores:          [2]int{0, 0},
		Breaks:          []model.Break{newBreak(0, start)},
		CurrentBreak:    0,
		RedsRemaining:   reds,
		ColorsRemaining: model.ClearanceOrder(),
		ActivePlayer:    0,
		InitialReds:     reds,
		Log:             []model.Action{},
	}
}

func newBreak(player int, start time.Time) model.Break {
	return model.Break{
		Player:    player,
		StartTime: start.UTC(),
		Shots:     []model.Shot{},
		Balls:     []model.Color{},
	}
}

// NextBalls returns the balls the active player may legally play at.
//
// Apply only checks that a potted ball is still on the table. Live scoring
// goes through CheckNextBall as well; replay and the conformance harness do
// not.
func NextBalls(f *model.Frame) []model.Color {
	if f.Ended() {
		return []model.Color{}
	}

	colors := slices.Clone(f.ColorsRemaining)
	if f.FreeBall {
		return colors
	}

	if onColor(f) {
		return colors
	}
	if f.RedsRemaining > 0 {
		return []model.Color{model.Red}
	}
	if len(colors) == 0 {
		return []model.Color{}
	}
	return colors[:1]
}

// CheckNextBall rejects a pot of a ball outside NextBalls(f). Misses,
// safeties and fouls may name any ball and always pass.
func CheckNextBall(f *model.Frame, a model.Action) error {
	if a.Kind != model.ActionPot || a.Pot == nil || f.Ended() {
		return nil
	}
	next := NextBalls(f)
	if slices.Contains(next, a.Pot.Ball) {
		return nil
	}
	if len(next) == 0 {
		return newRuleError(ErrCodeIllegalBall, "%s is not on, no ball is", a.Pot.Ball)
	}
	names := make([]string, len(next))
	for i, b := range next {
		names[i] = string(b)
	}
	return newRuleError(ErrCodeIllegalBall, "%s is not on, expected %s", a.Pot.Ball, strings.Join(names, " or "))
}

// onColor reports whether the last shot of the current break leaves the
// striker on a color: a cleanly potted red, or a potted free ball while
// reds remain.
func onColor(f *model.Frame) bool {
	last, ok := f.LastShot()
	if !ok || !last.Potted || last.IsFoul {
		return false
	}
	if last.Ball.IsRed() {
		return true
	}
	return last.IsFreeBall && f.RedsRemaining > 0
}

// IsFrameComplete reports whether the table has been cleared.
func IsFrameComplete(f *model.Frame) bool {
	return f.RedsRemaining == 0 && len(f.ColorsRemaining) == 0
}

// FrameWinner returns the player with the higher score. ok is false on a
// tie.
func FrameWinner(f *model.Frame) (winner int, ok bool) {
	switch {
	case f.Scores[0] > f.Scores[1]:
		return 0, true
	case f.Scores[1] > f.Scores[0]:
		return 1, true
	}
	return 0, false
}

// PointsRemaining is the maximum number of points still available on the
// table, counting a black after every remaining red.
func PointsRemaining(f *model.Frame) int {
	total := f.RedsRemaining * (model.Red.Value() + model.Black.Value())
	for _, c := range f.ColorsRemaining {
		total += c.Value()
	}
	return total
}
