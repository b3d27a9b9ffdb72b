package model

import "time"

// Status is the lifecycle state of a match.
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// NoBreak marks a frame with no open break.
const NoBreak = -1

// Match is the root persisted document.
type Match struct {
	ID           string          `json:"id"`
	Version      string          `json:"version"`
	Players      []string        `json:"players"`
	BestOf       int             `json:"bestOf"`
	Reds         int             `json:"numberOfReds"`
	Created      time.Time       `json:"created"`
	Updated      time.Time       `json:"updated"`
	Status       Status          `json:"status"`
	CurrentFrame int             `json:"currentFrame"`
	Frames       []*Frame        `json:"frames"`
	Winner       *int            `json:"matchWinner,omitempty"`
	Statistics   MatchStatistics `json:"statistics"`
}

// Frame is one game within a match.
//
// Scores, breaks and table state are derived from Log. Undoable counts how
// many shots at the tail of the log may still be undone.
type Frame struct {
	Number          int        `json:"number"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime"`
	Winner          *int       `json:"winner"`
	Tied            bool       `json:"tied,omitempty"`
	Scores          [2]int     `json:"scores"`
	Breaks          []Break    `json:"breaks"`
	CurrentBreak    int        `json:"currentBreak"`
	RedsRemaining   int        `json:"redsRemaining"`
	ColorsRemaining []Color    `json:"colorsRemaining"`
	ActivePlayer    int        `json:"activePlayer"`
	FreeBall        bool       `json:"freeBall"`
	Duration        int64      `json:"duration"` // milliseconds
	Undoable        int        `json:"undoable"`
	InitialReds     int        `json:"initialReds"`
	Baseline        *Baseline  `json:"baseline,omitempty"`
	Log             []Action   `json:"log"`
}

// Baseline is the table a frame's log starts from when the frame was
// imported part-way through without a log. Replay restores it in place of
// a fresh rack.
type Baseline struct {
	Scores          [2]int  `json:"scores"`
	Breaks          []Break `json:"breaks"`
	CurrentBreak    int     `json:"currentBreak"`
	RedsRemaining   int     `json:"redsRemaining"`
	ColorsRemaining []Color `json:"colorsRemaining"`
	ActivePlayer    int     `json:"activePlayer"`
	FreeBall        bool    `json:"freeBall"`
}

// Break is a run of shots by one player.
type Break struct {
	Player    int        `json:"player"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	Points    int        `json:"points"`
	Shots     []Shot     `json:"shots"`
	Balls     []Color    `json:"balls"`
}

// Shot is the recorded result of one stroke.
//
// Points is what the striker scored. FoulPoints is what the opponent was
// awarded and never counts toward the break.
type Shot struct {
	Timestamp    time.Time `json:"timestamp"`
	Ball         Color     `json:"ball"`
	Potted       bool      `json:"potted"`
	Points       int       `json:"points"`
	UsedRest     bool      `json:"usedRest"`
	IsSafety     bool      `json:"isSafety"`
	IsEscape     bool      `json:"isEscape"`
	IsFoul       bool      `json:"isFoul"`
	IsFreeBall   bool      `json:"isFreeBall"`
	MultipleReds int       `json:"multipleReds,omitempty"`
	FoulPoints   int       `json:"foulPoints"`
	Duration     int64     `json:"duration"` // milliseconds
}

// CloneBreaks returns a copy of breaks that shares no slices with it.
func CloneBreaks(breaks []Break) []Break {
	out := make([]Break, len(breaks))
	for i, br := range breaks {
		br.Shots = append([]Shot{}, br.Shots...)
		br.Balls = append([]Color{}, br.Balls...)
		out[i] = br
	}
	return out
}

// Opponent returns the other player index.
func Opponent(player int) int {
	return 1 - player
}

// Current returns the open break, or nil when none is open.
func (f *Frame) Current() *Break {
	if f.CurrentBreak < 0 || f.CurrentBreak >= len(f.Breaks) {
		return nil
	}
	return &f.Breaks[f.CurrentBreak]
}

// LastShot returns the most recent shot of the open break.
func (f *Frame) LastShot() (Shot, bool) {
	br := f.Current()
	if br == nil || len(br.Shots) == 0 {
		return Shot{}, false
	}
	return br.Shots[len(br.Shots)-1], true
}

// Ended reports whether the frame has been finalized.
func (f *Frame) Ended() bool {
	return f.EndTime != nil
}

// HasShots reports whether any break in the frame has a recorded shot.
func (f *Frame) HasShots() bool {
	for _, br := range f.Breaks {
		if len(br.Shots) > 0 {
			return true
		}
	}
	return false
}

// Frame returns the frame the match is currently on, or nil.
func (m *Match) Frame() *Frame {
	if m.CurrentFrame < 0 || m.CurrentFrame >= len(m.Frames) {
		return nil
	}
	return m.Frames[m.CurrentFrame]
}

// Completed reports whether the match has finished.
func (m *Match) Completed() bool {
	return m.Status == StatusCompleted
}
