package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/snooker/internal/model"
	"github.com/roach88/snooker/internal/rules"
	"github.com/roach88/snooker/internal/stats"
	"github.com/roach88/snooker/internal/store"
	"github.com/roach88/snooker/internal/timer"
)

// Controller owns the live match and drives it through its phases.
//
// Thread-safety: all methods except Run and View must be called from a
// single goroutine. Run only reads the frame timer.
type Controller struct {
	repo     store.Repository
	engine   *rules.Engine
	clock    timer.Clock
	timer    *timer.FrameTimer
	ids      IDGenerator
	matchIDs func(time.Time) (string, error)
	confirm  Confirmer
	notify   Notifier
	render   Renderer
	logger   zerolog.Logger

	settings store.Settings
	match    *model.Match
	phase    Phase
	seen     map[string]struct{} // action ids already in the match logs
	dirty    bool                // in-memory match differs from storage
}

// Option configures a Controller.
type Option func(*Controller)

// WithEngine sets the rules engine. Default: rules.New().
func WithEngine(e *rules.Engine) Option {
	return func(c *Controller) { c.engine = e }
}

// WithClock sets the clock used for timestamps and the frame timer.
func WithClock(clock timer.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithIDs sets the action id generator. Default: UUIDv7.
func WithIDs(ids IDGenerator) Option {
	return func(c *Controller) { c.ids = ids }
}

// WithMatchIDs sets the match id generator. Default: model.NewMatchID.
func WithMatchIDs(gen func(time.Time) (string, error)) Option {
	return func(c *Controller) { c.matchIDs = gen }
}

// WithConfirmer sets the confirmation prompt. Default: AlwaysConfirm.
func WithConfirmer(cf Confirmer) Option {
	return func(c *Controller) { c.confirm = cf }
}

// WithNotifier sets where user notifications go.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notify = n }
}

// WithRenderer sets the scoreboard renderer.
func WithRenderer(r Renderer) Option {
	return func(c *Controller) { c.render = r }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a Controller with no match loaded. Call Load to pick up
// the saved match and settings.
func New(repo store.Repository, opts ...Option) *Controller {
	c := &Controller{
		repo:     repo,
		engine:   rules.New(),
		clock:    timer.SystemClock{},
		ids:      uuidIDs{},
		matchIDs: model.NewMatchID,
		confirm:  AlwaysConfirm{},
		notify:   nopNotifier{},
		render:   nopRenderer{},
		logger:   zerolog.Nop(),
		settings: store.DefaultSettings(),
		phase:    PhaseNotStarted,
		seen:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.timer = timer.New(c.clock)
	return c
}

// Match returns the live match, nil when none is loaded. Callers must not
// modify it.
func (c *Controller) Match() *model.Match { return c.match }

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Settings returns the active user settings.
func (c *Controller) Settings() store.Settings { return c.settings }

// Dirty reports whether the match has changes that are not in storage.
func (c *Controller) Dirty() bool { return c.dirty }

// ReadOnly reports whether the loaded match is completed.
func (c *Controller) ReadOnly() bool {
	return c.match != nil && c.match.Completed()
}

// Timer exposes the frame timer for display.
func (c *Controller) Timer() *timer.FrameTimer { return c.timer }

// View snapshots what the renderer needs.
func (c *Controller) View() View {
	v := View{
		Match:    c.match,
		Phase:    c.phase,
		ReadOnly: c.ReadOnly(),
		Elapsed:  c.timer.FrameElapsed(),
		Dirty:    c.dirty,
	}
	if c.match != nil {
		if f := c.match.Frame(); f != nil && !f.Ended() {
			v.NextBalls = rules.NextBalls(f)
		}
	}
	return v
}

// Run drives the display clock until ctx is done.
func (c *Controller) Run(ctx context.Context, interval time.Duration) error {
	return c.timer.Run(ctx, interval, c.render.Tick)
}

// Load restores settings and the current match from storage. A missing
// current match is not an error.
func (c *Controller) Load(ctx context.Context) error {
	settings, err := c.repo.LoadSettings(ctx)
	if err != nil {
		c.persistFailed("load settings", err)
	} else {
		c.settings = settings
	}

	m, err := c.repo.LoadCurrent(ctx)
	if errors.Is(err, store.ErrNotFound) {
		c.renderView()
		return nil
	}
	if err != nil {
		return fmt.Errorf("load current match: %w", err)
	}
	return c.open(ctx, m)
}

// StartMatch creates a new match and makes it current. An unfinished
// current match is archived to history first.
func (c *Controller) StartMatch(ctx context.Context, setup rules.Setup) (*model.Match, error) {
	now := c.clock.Now()
	id, err := c.matchIDs(now)
	if err != nil {
		return nil, err
	}
	m, err := rules.NewMatch(id, setup, now)
	if err != nil {
		if rules.IsInvalidSetup(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSetup, err)
		}
		return nil, err
	}

	c.archiveCurrent(ctx)
	c.install(m)
	c.phase = PhaseAwaitingPlayStart
	c.logger.Info().
		Str("match", m.ID).
		Strs("players", m.Players).
		Int("best_of", m.BestOf).
		Msg("match started")

	c.persist(ctx)
	c.renderView()
	return m, nil
}

// StartPlay starts the clock on a frame that is waiting to begin.
func (c *Controller) StartPlay(ctx context.Context) error {
	if err := c.writable(); err != nil {
		return err
	}
	if c.phase != PhaseAwaitingPlayStart {
		return c.wrongPhase("start play")
	}
	if c.timer.Started() {
		c.timer.Resume()
	} else {
		c.timer.StartFrame()
	}
	c.timer.StartShot()
	c.phase = PhaseInPlay
	c.renderView()
	return nil
}

// Pause freezes the clock and stops shots being recorded.
func (c *Controller) Pause(ctx context.Context) error {
	if err := c.writable(); err != nil {
		return err
	}
	if c.phase != PhaseInPlay {
		return c.wrongPhase("pause")
	}
	c.timer.Pause()
	c.phase = PhasePaused
	c.renderView()
	return nil
}

// Resume restarts the clock after Pause.
func (c *Controller) Resume(ctx context.Context) error {
	if err := c.writable(); err != nil {
		return err
	}
	if c.phase != PhasePaused {
		return c.wrongPhase("resume")
	}
	c.timer.Resume()
	c.phase = PhaseInPlay
	c.renderView()
	return nil
}

// TogglePause pauses play or resumes it.
func (c *Controller) TogglePause(ctx context.Context) error {
	if c.phase == PhasePaused {
		return c.Resume(ctx)
	}
	return c.Pause(ctx)
}

// Save writes the match to storage regardless of the auto-save setting.
// It is the retry path after a persistence failure.
func (c *Controller) Save(ctx context.Context) error {
	if c.match == nil {
		return ErrNoMatch
	}
	if err := c.save(ctx); err != nil {
		c.persistFailed("save", err)
		return err
	}
	c.notify.Notify(Notification{Level: LevelInfo, Message: "Match saved"})
	c.renderView()
	return nil
}

// UpdateSettings stores new user settings. They apply immediately even if
// storing them fails.
func (c *Controller) UpdateSettings(ctx context.Context, s store.Settings) error {
	c.settings = s
	if err := c.repo.SaveSettings(ctx, s); err != nil {
		c.persistFailed("save settings", err)
		return err
	}
	return nil
}

// open makes m the live match and works out its phase. Frames that carry
// a log are rebuilt from it so the document always matches its log.
func (c *Controller) open(ctx context.Context, m *model.Match) error {
	for i, f := range m.Frames {
		if len(f.Log) == 0 {
			continue
		}
		rebuilt, err := c.engine.ReplayFrame(f)
		if err != nil {
			return fmt.Errorf("match %s frame %d: %w", m.ID, f.Number, err)
		}
		m.Frames[i] = rebuilt
	}

	c.install(m)
	stats.Refresh(m)

	switch {
	case m.Completed():
		c.phase = PhaseMatchComplete

	case m.Frame() == nil || m.Frame().Ended():
		if rules.IsMatchComplete(m) {
			c.finishMatch(ctx)
			c.persist(ctx)
			break
		}
		if _, err := rules.NextFrame(m, c.clock.Now()); err != nil {
			return err
		}
		c.phase = PhaseAwaitingPlayStart
		c.persist(ctx)

	default:
		f := m.Frame()
		if n := len(f.Log); n > 0 {
			c.timer.Restore(time.Duration(f.Log[n-1].Elapsed) * time.Millisecond)
		}
		c.phase = PhaseAwaitingPlayStart
	}

	c.logger.Debug().
		Str("match", m.ID).
		Stringer("phase", c.phase).
		Msg("match opened")
	c.renderView()
	return nil
}

func (c *Controller) install(m *model.Match) {
	c.match = m
	c.dirty = false
	c.timer.Reset()
	c.seen = make(map[string]struct{})
	for _, f := range m.Frames {
		for _, a := range f.Log {
			c.seen[a.ID] = struct{}{}
		}
	}
}

// archiveCurrent copies an unfinished current match into history.
func (c *Controller) archiveCurrent(ctx context.Context) {
	if c.match == nil || c.match.Completed() {
		return
	}
	stats.Refresh(c.match)
	if err := c.repo.SaveToHistory(ctx, c.match); err != nil {
		c.persistFailed("archive match", err)
		return
	}
	c.logger.Info().Str("match", c.match.ID).Msg("match archived")
}

// persist saves after a change when auto-save is on.
func (c *Controller) persist(ctx context.Context) {
	if !c.settings.AutoSave {
		c.dirty = true
		return
	}
	if err := c.save(ctx); err != nil {
		c.persistFailed("save", err)
	}
}

// save writes an in-progress match to the current slot. A completed match
// moves to history and the current slot is cleared.
func (c *Controller) save(ctx context.Context) error {
	m := c.match
	if m.Completed() {
		if err := c.repo.SaveToHistory(ctx, m); err != nil {
			c.dirty = true
			return fmt.Errorf("save match %s to history: %w", m.ID, err)
		}
		if err := c.repo.ClearCurrent(ctx); err != nil {
			c.dirty = true
			return fmt.Errorf("clear current match: %w", err)
		}
		c.dirty = false
		return nil
	}

	if err := c.repo.SaveCurrent(ctx, m); err != nil {
		c.dirty = true
		return fmt.Errorf("save match %s: %w", m.ID, err)
	}
	c.dirty = false
	return nil
}

func (c *Controller) persistFailed(op string, err error) {
	ev := c.logger.Error().Err(err).Str("op", op)
	if c.match != nil {
		ev = ev.Str("match", c.match.ID)
	}
	ev.Msg("persistence failed")
	c.notify.Notify(Notification{
		Level:   LevelError,
		Message: fmt.Sprintf("Could not %s; changes are kept in memory", op),
		Err:     err,
	})
}

func (c *Controller) writable() error {
	if c.match == nil {
		return ErrNoMatch
	}
	if c.match.Completed() {
		return ErrReadOnly
	}
	return nil
}

func (c *Controller) wrongPhase(action string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrWrongPhase, action, c.phase)
}

// ask runs a confirmation prompt unless confirmations are turned off.
func (c *Controller) ask(ctx context.Context, p Prompt) error {
	if !c.settings.ConfirmActions {
		return nil
	}
	ok, err := c.confirm.Confirm(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}
	return nil
}

func (c *Controller) renderView() {
	c.render.Render(c.View())
}

func millis(d time.Duration) int64 {
	return d.Milliseconds()
}
