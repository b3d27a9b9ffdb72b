package stats

import (
	"github.com/roach88/snooker/internal/model"
)

// breakThresholds are the histogram buckets, lowest first.
var breakThresholds = []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

// ForMatch computes statistics over every frame of m.
func ForMatch(m *model.Match) model.MatchStatistics {
	s := model.NewMatchStatistics()
	for _, f := range m.Frames {
		addFrame(&s, f)
	}
	return s
}

// ForFrame computes statistics for a single frame.
func ForFrame(f *model.Frame) model.MatchStatistics {
	s := model.NewMatchStatistics()
	addFrame(&s, f)
	return s
}

// Refresh recomputes m.Statistics from scratch.
func Refresh(m *model.Match) {
	m.Statistics = ForMatch(m)
}

func addFrame(s *model.MatchStatistics, f *model.Frame) {
	if f.Winner != nil {
		s.Player(*f.Winner).FramesWon++
	}
	s.Player1.TotalPoints += f.Scores[0]
	s.Player2.TotalPoints += f.Scores[1]

	for i, br := range f.Breaks {
		ps := s.Player(br.Player)
		addBreak(ps, br.Points)
		if len(br.Shots) > 0 {
			ps.Visits++
		}
		for _, shot := range br.Shots {
			addShot(ps, shot)
			if shot.IsSafety && safetyHeld(f.Breaks, i) {
				ps.Safeties.Successful++
			}
		}
	}
}

func addBreak(ps *model.PlayerStatistics, points int) {
	if points <= 0 {
		return
	}
	ps.Breaks.Total++
	ps.HighBreak = max(ps.HighBreak, points)

	buckets := []*int{
		&ps.Breaks.Over10, &ps.Breaks.Over20, &ps.Breaks.Over30, &ps.Breaks.Over40, &ps.Breaks.Over50,
		&ps.Breaks.Over60, &ps.Breaks.Over70, &ps.Breaks.Over80, &ps.Breaks.Over90, &ps.Breaks.Over100,
	}
	for i, threshold := range breakThresholds {
		if points >= threshold {
			*buckets[i]++
		}
	}
	if points >= 100 {
		ps.Breaks.Century++
	}
}

func addShot(ps *model.PlayerStatistics, shot model.Shot) {
	// Fouls count as missed attempts. Safeties stay out of pot percentage.
	if !shot.IsSafety {
		ps.Shots.Total++
		if shot.Potted {
			ps.Shots.Potted++
		} else {
			ps.Shots.Missed++
		}
	}

	if shot.UsedRest {
		ps.RestShots.Attempted++
		if shot.Potted {
			ps.RestShots.Successful++
		}
	}
	if shot.IsSafety {
		ps.Safeties.Attempted++
	}
	if shot.IsEscape {
		ps.Escapes.Attempted++
		if shot.Potted {
			ps.Escapes.Successful++
		}
	}
	if shot.IsFoul {
		ps.Fouls++
	}
	if shot.Duration > 0 {
		ps.TotalShotTime += shot.Duration
	}

	if ps.BallStats == nil {
		ps.BallStats = map[model.Color]model.BallTally{}
	}
	tally := ps.BallStats[shot.Ball]
	tally.Attempted++
	if shot.Potted {
		tally.Potted++
	}
	ps.BallStats[shot.Ball] = tally
}

// safetyHeld decides a safety played in breaks[i] by looking at the visit
// that followed it. The safety fails only when the opponent's first shot
// of that visit is a clean pot.
func safetyHeld(breaks []model.Break, i int) bool {
	if i+1 >= len(breaks) {
		return true
	}
	next := breaks[i+1]
	if next.Player == breaks[i].Player || len(next.Shots) == 0 {
		return true
	}
	first := next.Shots[0]
	return !first.Potted || first.IsFoul
}
