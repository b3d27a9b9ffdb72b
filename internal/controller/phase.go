package controller

// Phase is where the current frame is in its lifecycle.
type Phase int

const (
	// PhaseNotStarted means no match is loaded.
	PhaseNotStarted Phase = iota

	// PhaseAwaitingPlayStart means a frame is set up and waits for StartPlay.
	PhaseAwaitingPlayStart

	// PhaseInPlay means shots are being recorded and the timer runs.
	PhaseInPlay

	// PhasePaused freezes the timer and rejects shots.
	PhasePaused

	// PhaseFrameComplete means the frame has a result and the next one
	// has not been opened yet.
	PhaseFrameComplete

	// PhaseNextFrameStarting is the transition while the next frame is
	// being opened and saved.
	PhaseNextFrameStarting

	// PhaseMatchComplete is terminal. The match is read-only.
	PhaseMatchComplete
)

var phaseNames = map[Phase]string{
	PhaseNotStarted:        "not-started",
	PhaseAwaitingPlayStart: "awaiting-play-start",
	PhaseInPlay:            "in-play",
	PhasePaused:            "paused",
	PhaseFrameComplete:     "frame-complete",
	PhaseNextFrameStarting: "next-frame-starting",
	PhaseMatchComplete:     "match-complete",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// acceptsShots reports whether strokes and break/frame commands are allowed.
func (p Phase) acceptsShots() bool {
	return p == PhaseInPlay
}

// acceptsUndo reports whether undo is allowed.
func (p Phase) acceptsUndo() bool {
	switch p {
	case PhaseInPlay, PhasePaused, PhaseAwaitingPlayStart:
		return true
	}
	return false
}
