package stats

import (
	"slices"
	"time"

	"github.com/roach88/snooker/internal/model"
)

// BallSummary is one color's tally with its pot percentage.
type BallSummary struct {
	Attempted  int     `json:"attempted"`
	Potted     int     `json:"potted"`
	Percentage float64 `json:"percentage"`
}

// PlayerSummary is a player's counters together with the derived rates.
type PlayerSummary struct {
	FramesWon         int                         `json:"framesWon"`
	TotalPoints       int                         `json:"totalPoints"`
	HighBreak         int                         `json:"highBreak"`
	Breaks            model.BreakCounts           `json:"breaks"`
	Shots             model.ShotCounts            `json:"shots"`
	Fouls             int                         `json:"fouls"`
	Visits            int                         `json:"visits"`
	PotPercentage     float64                     `json:"potPercentage"`
	RestPotPercentage float64                     `json:"restPotPercentage"`
	SafetySuccessRate float64                     `json:"safetySuccessRate"`
	EscapeSuccessRate float64                     `json:"escapeSuccessRate"`
	AverageShotTime   float64                     `json:"averageShotTime"` // seconds
	PointsPerVisit    float64                     `json:"pointsPerVisit"`
	BallStats         map[model.Color]BallSummary `json:"ballStats"`
}

// Summarize derives rates from raw counters.
func Summarize(ps *model.PlayerStatistics) PlayerSummary {
	balls := make(map[model.Color]BallSummary, len(ps.BallStats))
	for c, t := range ps.BallStats {
		balls[c] = BallSummary{Attempted: t.Attempted, Potted: t.Potted, Percentage: BallPotPercentage(t)}
	}
	return PlayerSummary{
		FramesWon:         ps.FramesWon,
		TotalPoints:       ps.TotalPoints,
		HighBreak:         ps.HighBreak,
		Breaks:            ps.Breaks,
		Shots:             ps.Shots,
		Fouls:             ps.Fouls,
		Visits:            ps.Visits,
		PotPercentage:     PotPercentage(ps),
		RestPotPercentage: RestPotPercentage(ps),
		SafetySuccessRate: SafetySuccessRate(ps),
		EscapeSuccessRate: EscapeSuccessRate(ps),
		AverageShotTime:   AverageShotTime(ps),
		PointsPerVisit:    PointsPerVisit(ps),
		BallStats:         balls,
	}
}

// BreakEntry is one scoring break in a match-wide listing.
type BreakEntry struct {
	Frame     int           `json:"frameNumber"`
	Player    int           `json:"player"`
	Points    int           `json:"points"`
	Balls     []model.Color `json:"balls"`
	Shots     []model.Shot  `json:"shots"`
	Timestamp time.Time     `json:"timestamp"`
}

// HasFreeBall reports whether any shot of the break was a potted free ball.
func (b BreakEntry) HasFreeBall() bool {
	return slices.ContainsFunc(b.Shots, func(s model.Shot) bool { return s.IsFreeBall && s.Potted })
}

// AllBreaks lists every scoring break of m, highest first. Equal breaks
// keep the order they were played in.
func AllBreaks(m *model.Match) []BreakEntry {
	var out []BreakEntry
	for i, f := range m.Frames {
		for _, br := range f.Breaks {
			if br.Points <= 0 {
				continue
			}
			out = append(out, BreakEntry{
				Frame:     i + 1,
				Player:    br.Player,
				Points:    br.Points,
				Balls:     br.Balls,
				Shots:     br.Shots,
				Timestamp: br.StartTime,
			})
		}
	}
	slices.SortStableFunc(out, func(a, b BreakEntry) int {
		return b.Points - a.Points
	})
	return out
}

// HighBreak returns the best break of the match.
func HighBreak(m *model.Match) (BreakEntry, bool) {
	all := AllBreaks(m)
	if len(all) == 0 {
		return BreakEntry{}, false
	}
	return all[0], true
}

// PlayerHighBreak returns the best break made by player.
func PlayerHighBreak(m *model.Match, player int) (BreakEntry, bool) {
	for _, b := range AllBreaks(m) {
		if b.Player == player {
			return b, true
		}
	}
	return BreakEntry{}, false
}

// FrameSummary is the headline of one frame.
type FrameSummary struct {
	Number     int    `json:"number"`
	Winner     *int   `json:"winner"`
	Tied       bool   `json:"tied,omitempty"`
	Scores     [2]int `json:"scores"`
	Duration   int64  `json:"duration"`
	BreakCount int    `json:"breakCount"`
	HighBreak  int    `json:"highBreak"`
}

// SummarizeFrame builds the frame headline.
func SummarizeFrame(f *model.Frame) FrameSummary {
	high := 0
	for _, br := range f.Breaks {
		high = max(high, br.Points)
	}
	return FrameSummary{
		Number:     f.Number,
		Winner:     f.Winner,
		Tied:       f.Tied,
		Scores:     f.Scores,
		Duration:   f.Duration,
		BreakCount: len(f.Breaks),
		HighBreak:  high,
	}
}

// MatchSummary is the match overview shown at the end of a match and by
// the stats command.
type MatchSummary struct {
	ID           string         `json:"id"`
	Players      []string       `json:"players"`
	BestOf       int            `json:"bestOf"`
	FramesPlayed int            `json:"framesPlayed"`
	CurrentScore [2]int         `json:"currentScore"`
	Player1      PlayerSummary  `json:"player1Stats"`
	Player2      PlayerSummary  `json:"player2Stats"`
	Frames       []FrameSummary `json:"frames"`
	AllBreaks    []BreakEntry   `json:"allBreaks"`
	Status       model.Status   `json:"status"`
}

// SummarizeMatch recomputes statistics from m and builds the overview.
func SummarizeMatch(m *model.Match) MatchSummary {
	s := ForMatch(m)

	var score [2]int
	frames := make([]FrameSummary, 0, len(m.Frames))
	for _, f := range m.Frames {
		if f.Winner != nil {
			score[*f.Winner]++
		}
		frames = append(frames, SummarizeFrame(f))
	}

	return MatchSummary{
		ID:           m.ID,
		Players:      m.Players,
		BestOf:       m.BestOf,
		FramesPlayed: len(m.Frames),
		CurrentScore: score,
		Player1:      Summarize(&s.Player1),
		Player2:      Summarize(&s.Player2),
		Frames:       frames,
		AllBreaks:    AllBreaks(m),
		Status:       m.Status,
	}
}
