package model

// BreakCounts is the histogram of scoring breaks.
type BreakCounts struct {
	Total   int `json:"total"`
	Over10  int `json:"over10"`
	Over20  int `json:"over20"`
	Over30  int `json:"over30"`
	Over40  int `json:"over40"`
	Over50  int `json:"over50"`
	Over60  int `json:"over60"`
	Over70  int `json:"over70"`
	Over80  int `json:"over80"`
	Over90  int `json:"over90"`
	Over100 int `json:"over100"`
	Century int `json:"century"`
}

// Tally counts attempts and successes of one kind of shot.
type Tally struct {
	Attempted  int `json:"attempted"`
	Successful int `json:"successful"`
}

// ShotCounts covers pot attempts; safeties are not included.
type ShotCounts struct {
	Total  int `json:"total"`
	Potted int `json:"potted"`
	Missed int `json:"missed"`
}

// BallTally counts attempts and pots on one color.
type BallTally struct {
	Attempted int `json:"attempted"`
	Potted    int `json:"potted"`
}

// PlayerStatistics holds the raw counters for one player.
type PlayerStatistics struct {
	FramesWon     int                 `json:"framesWon"`
	TotalPoints   int                 `json:"totalPoints"`
	HighBreak     int                 `json:"highBreak"`
	Breaks        BreakCounts         `json:"breaks"`
	Shots         ShotCounts          `json:"shots"`
	RestShots     Tally               `json:"restShots"`
	Safeties      Tally               `json:"safeties"`
	Escapes       Tally               `json:"escapes"`
	Fouls         int                 `json:"fouls"`
	TotalShotTime int64               `json:"totalShotTime"` // milliseconds
	Visits        int                 `json:"visits"`
	BallStats     map[Color]BallTally `json:"ballStats"`
}

// MatchStatistics holds both players' counters.
type MatchStatistics struct {
	Player1 PlayerStatistics `json:"player1"`
	Player2 PlayerStatistics `json:"player2"`
}

// NewPlayerStatistics returns zeroed counters.
func NewPlayerStatistics() PlayerStatistics {
	return PlayerStatistics{BallStats: map[Color]BallTally{}}
}

// NewMatchStatistics returns zeroed counters for both players.
func NewMatchStatistics() MatchStatistics {
	return MatchStatistics{
		Player1: NewPlayerStatistics(),
		Player2: NewPlayerStatistics(),
	}
}

// Player returns the counters for player index 0 or 1.
func (s *MatchStatistics) Player(i int) *PlayerStatistics {
	if i == 0 {
		return &s.Player1
	}
	return &s.Player2
}
