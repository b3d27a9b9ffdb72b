package controller

import (
	"context"
	"time"

	"github.com/roach88/snooker/internal/model"
)

// PromptKind identifies what the user is asked to confirm.
type PromptKind string

const (
	PromptEndBreak  PromptKind = "end-break"
	PromptEndFrame  PromptKind = "end-frame"
	PromptUndo      PromptKind = "undo"
	PromptDelete    PromptKind = "delete"
	PromptNextFrame PromptKind = "next-frame"
)

// Prompt is a confirmation request.
type Prompt struct {
	Kind    PromptKind
	Message string
}

// Confirmer asks the user to confirm an action. Returning false cancels
// the action with no effect.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// AlwaysConfirm accepts every prompt.
type AlwaysConfirm struct{}

// Confirm returns true.
func (AlwaysConfirm) Confirm(context.Context, Prompt) (bool, error) {
	return true, nil
}

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a user-visible message.
type Notification struct {
	Level   Level
	Message string
	Err     error
}

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// View is what a renderer needs to draw the scoreboard. Match must be
// treated as read-only.
type View struct {
	Match     *model.Match
	Phase     Phase
	ReadOnly  bool
	NextBalls []model.Color
	Elapsed   time.Duration
	Dirty     bool
}

// Renderer draws the scoreboard.
type Renderer interface {
	Render(v View)

	// Tick updates the clock display. It is called from the tick loop
	// goroutine.
	Tick(frame, shot time.Duration)
}

// IDGenerator hands out action ids.
type IDGenerator interface {
	NewActionID() string
}

type uuidIDs struct{}

func (uuidIDs) NewActionID() string { return model.NewActionID() }

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

type nopRenderer struct{}

func (nopRenderer) Render(View) {}

func (nopRenderer) Tick(time.Duration, time.Duration) {}
