package controller

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snooker/internal/model"
	"github.com/roach88/snooker/internal/rules"
	"github.com/roach88/snooker/internal/store"
	"github.com/roach88/snooker/internal/testutil"
)

// recorder collects notifications, renders and ticks.
type recorder struct {
	mu      sync.Mutex
	notes   []Notification
	renders int
	ticks   chan time.Duration
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) Render(View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders++
}

func (r *recorder) Tick(frame, _ time.Duration) {
	select {
	case r.ticks <- frame:
	default:
	}
}

func (r *recorder) last(t *testing.T) Notification {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.notes)
	return r.notes[len(r.notes)-1]
}

func (r *recorder) levels() []Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Level
	for _, n := range r.notes {
		out = append(out, n.Level)
	}
	return out
}

// scriptedConfirm answers prompts from a queue, then with Default.
type scriptedConfirm struct {
	answers []bool
	Default bool
	prompts []Prompt
}

func (s *scriptedConfirm) Confirm(_ context.Context, p Prompt) (bool, error) {
	s.prompts = append(s.prompts, p)
	if len(s.answers) == 0 {
		return s.Default, nil
	}
	ok := s.answers[0]
	s.answers = s.answers[1:]
	return ok, nil
}

// flakyRepo fails writes to the current slot while failing is set.
type flakyRepo struct {
	store.Repository
	failing bool
}

var errDiskFull = errors.New("disk full")

func (r *flakyRepo) SaveCurrent(ctx context.Context, m *model.Match) error {
	if r.failing {
		return errDiskFull
	}
	return r.Repository.SaveCurrent(ctx, m)
}

type fixture struct {
	clock   *testutil.FakeClock
	repo    store.Repository
	rec     *recorder
	confirm *scriptedConfirm
}

func openStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "snooker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newFixture(t *testing.T, repo store.Repository) *fixture {
	t.Helper()
	if repo == nil {
		repo = openStore(t)
	}
	return &fixture{
		clock:   testutil.NewFakeClock(testutil.Epoch),
		repo:    repo,
		rec:     &recorder{ticks: make(chan time.Duration, 1)},
		confirm: &scriptedConfirm{Default: true},
	}
}

func (fx *fixture) controller(opts ...Option) *Controller {
	base := []Option{
		WithClock(fx.clock),
		WithIDs(testutil.NewSequentialIDs("")),
		WithMatchIDs(func(now time.Time) (string, error) {
			return "match_" + now.Format("150405"), nil
		}),
		WithConfirmer(fx.confirm),
		WithNotifier(fx.rec),
		WithRenderer(fx.rec),
	}
	return New(fx.repo, append(base, opts...)...)
}

var defaultSetup = rules.Setup{Players: [2]string{"Ronnie", "Judd"}, BestOf: 3}

// playing returns a controller with a fresh match in play.
func playing(t *testing.T, fx *fixture, setup rules.Setup, opts ...Option) *Controller {
	t.Helper()
	ctx := context.Background()
	c := fx.controller(opts...)
	require.NoError(t, c.Load(ctx))
	_, err := c.StartMatch(ctx, setup)
	require.NoError(t, err)
	require.NoError(t, c.StartPlay(ctx))
	return c
}

func TestStartMatch_AwaitsPlayStart(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := fx.controller()
	require.NoError(t, c.Load(ctx))
	assert.Equal(t, PhaseNotStarted, c.Phase())

	m, err := c.StartMatch(ctx, defaultSetup)
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingPlayStart, c.Phase())
	assert.Equal(t, []string{"Ronnie", "Judd"}, m.Players)
	assert.False(t, c.Timer().Started())

	saved, err := fx.repo.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, m.ID, saved.ID)
	assert.Positive(t, fx.rec.renders)
}

func TestStartMatch_InvalidSetup(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := fx.controller()

	_, err := c.StartMatch(ctx, rules.Setup{Players: [2]string{"Ronnie", " "}, BestOf: 3})
	assert.ErrorIs(t, err, ErrInvalidSetup)
	assert.Equal(t, rules.ErrCodeInvalidSetup, rules.CodeOf(err))
	assert.Nil(t, c.Match())
	assert.Equal(t, PhaseNotStarted, c.Phase())

	_, err = fx.repo.LoadCurrent(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestShots_RejectedOutsideInPlay(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := fx.controller()

	_, err := c.Pot(ctx, model.Red, 1, ShotOptions{})
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = c.StartMatch(ctx, defaultSetup)
	require.NoError(t, err)

	_, err = c.Pot(ctx, model.Red, 1, ShotOptions{})
	assert.ErrorIs(t, err, ErrWrongPhase, "play has not started")
	assert.ErrorIs(t, c.Pause(ctx), ErrWrongPhase)

	require.NoError(t, c.StartPlay(ctx))
	require.NoError(t, c.Pause(ctx))

	for _, act := range []func() (rules.Outcome, error){
		func() (rules.Outcome, error) { return c.Pot(ctx, model.Red, 1, ShotOptions{}) },
		func() (rules.Outcome, error) { return c.Miss(ctx, model.Red, ShotOptions{}) },
		func() (rules.Outcome, error) { return c.Safety(ctx, model.Red, false) },
		func() (rules.Outcome, error) { return c.Foul(ctx, model.Foul{Ball: model.Red, Points: 4}) },
		func() (rules.Outcome, error) { return c.EndBreak(ctx) },
		func() (rules.Outcome, error) { return c.EndFrame(ctx) },
	} {
		_, err := act()
		assert.ErrorIs(t, err, ErrWrongPhase)
	}

	f := c.Match().Frame()
	assert.Empty(t, f.Log)
	assert.Equal(t, [2]int{0, 0}, f.Scores)
	assert.Empty(t, fx.confirm.prompts, "no prompt for a rejected action")

	require.NoError(t, c.TogglePause(ctx))
	assert.Equal(t, PhaseInPlay, c.Phase())
}

func TestSubmit_RejectsBallNotOn(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup)

	_, err := c.Pot(ctx, model.Yellow, 1, ShotOptions{})
	assert.Equal(t, rules.ErrCodeIllegalBall, rules.CodeOf(err))

	f := c.Match().Frame()
	assert.Equal(t, [2]int{0, 0}, f.Scores)
	assert.Empty(t, f.Log)
	assert.Equal(t, 15, f.RedsRemaining)

	_, err = c.Pot(ctx, model.Red, 1, ShotOptions{})
	require.NoError(t, err)
	_, err = c.Pot(ctx, model.Red, 1, ShotOptions{})
	assert.Equal(t, rules.ErrCodeIllegalBall, rules.CodeOf(err), "a color must follow a red")

	_, err = c.Miss(ctx, model.Black, ShotOptions{})
	require.NoError(t, err, "misses name any ball")
	assert.Equal(t, [2]int{1, 0}, f.Scores)
	assert.Len(t, f.Log, 2)
}

func TestSubmit_DuplicateActionID(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup, WithIDs(testutil.FixedIDs("tap-1")))

	_, err := c.Pot(ctx, model.Red, 1, ShotOptions{})
	require.NoError(t, err)

	_, err = c.Pot(ctx, model.Red, 1, ShotOptions{})
	assert.ErrorIs(t, err, ErrDuplicateAction)

	f := c.Match().Frame()
	assert.Equal(t, [2]int{1, 0}, f.Scores)
	assert.Len(t, f.Log, 1)
}

func TestSubmit_ExplicitIDIsDeduplicated(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup)

	tap := model.Action{ID: "select-red-1", Kind: model.ActionPot, Pot: &model.Pot{Ball: model.Red, Count: 1}}
	_, err := c.Submit(ctx, tap)
	require.NoError(t, err)
	_, err = c.Submit(ctx, tap)
	assert.ErrorIs(t, err, ErrDuplicateAction)

	// Ids survive a reload because they are rebuilt from the logs.
	again := fx.controller()
	require.NoError(t, again.Load(ctx))
	require.NoError(t, again.StartPlay(ctx))
	_, err = again.Submit(ctx, tap)
	assert.ErrorIs(t, err, ErrDuplicateAction)
}

func TestSubmit_StampsTimings(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup)

	fx.clock.Advance(5 * time.Second)
	_, err := c.Pot(ctx, model.Red, 1, ShotOptions{})
	require.NoError(t, err)

	fx.clock.Advance(3 * time.Second)
	require.NoError(t, c.Pause(ctx))
	fx.clock.Advance(time.Minute)
	require.NoError(t, c.Resume(ctx))
	fx.clock.Advance(2 * time.Second)
	_, err = c.Miss(ctx, model.Black, ShotOptions{})
	require.NoError(t, err)

	log := c.Match().Frame().Log
	require.Len(t, log, 2)
	assert.Equal(t, int64(5000), log[0].Elapsed)
	assert.Equal(t, int64(5000), log[0].ShotTime)
	assert.Equal(t, int64(10000), log[1].Elapsed, "paused time is excluded")
	assert.Equal(t, int64(2000), log[1].ShotTime, "resume restarts the shot clock")
	assert.Equal(t, testutil.Epoch.Add(70*time.Second), log[1].At)
}

func TestUndo_AllowedWhilePaused(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup)

	_, err := c.Pot(ctx, model.Red, 1, ShotOptions{})
	require.NoError(t, err)
	require.NoError(t, c.Pause(ctx))

	_, err = c.Undo(ctx)
	require.NoError(t, err)

	f := c.Match().Frame()
	assert.Equal(t, PhasePaused, c.Phase())
	assert.Equal(t, [2]int{0, 0}, f.Scores)
	assert.Equal(t, 15, f.RedsRemaining)
	assert.Equal(t, PromptUndo, fx.confirm.prompts[0].Kind)
	assert.Equal(t, 0, c.Match().Statistics.Player1.TotalPoints, "statistics recomputed after undo")
}

func TestUndo_NothingToUndo(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup)

	_, err := c.Undo(ctx)
	assert.ErrorIs(t, err, ErrNothingToUndo)
	assert.Equal(t, LevelInfo, fx.rec.last(t).Level)
	assert.Equal(t, "Nothing to undo", fx.rec.last(t).Message)
	assert.Empty(t, c.Match().Frame().Log)
}

func TestConfirmation_CancelLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup)

	_, err := c.Pot(ctx, model.Red, 1, ShotOptions{})
	require.NoError(t, err)
	before := *c.Match().Frame()

	fx.confirm.answers = []bool{false, false, false}
	_, err = c.EndBreak(ctx)
	assert.ErrorIs(t, err, ErrCancelled)
	_, err = c.EndFrame(ctx)
	assert.ErrorIs(t, err, ErrCancelled)
	_, err = c.Undo(ctx)
	assert.ErrorIs(t, err, ErrCancelled)

	after := c.Match().Frame()
	assert.Equal(t, before.Scores, after.Scores)
	assert.Len(t, after.Log, len(before.Log))
	assert.Equal(t, before.ActivePlayer, after.ActivePlayer)

	kinds := []PromptKind{}
	for _, p := range fx.confirm.prompts {
		kinds = append(kinds, p.Kind)
	}
	assert.Equal(t, []PromptKind{PromptEndBreak, PromptEndFrame, PromptUndo}, kinds)
	assert.Equal(t, "End Ronnie's break?", fx.confirm.prompts[0].Message)
}

func TestConfirmation_DisabledBySettings(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup)
	fx.confirm.Default = false

	s := c.Settings()
	s.ConfirmActions = false
	require.NoError(t, c.UpdateSettings(ctx, s))

	out, err := c.EndBreak(ctx)
	require.NoError(t, err)
	assert.True(t, out.Switched)
	assert.Empty(t, fx.confirm.prompts)

	stored, err := fx.repo.LoadSettings(ctx)
	require.NoError(t, err)
	assert.False(t, stored.ConfirmActions)
}

func TestFrameComplete_ThenNextFrame(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup)

	_, err := c.Pot(ctx, model.Red, 1, ShotOptions{})
	require.NoError(t, err)
	out, err := c.EndFrame(ctx)
	require.NoError(t, err)
	assert.True(t, out.FrameComplete)

	assert.Equal(t, PhaseFrameComplete, c.Phase())
	assert.Equal(t, "Frame 1 to Ronnie, 1-0.", fx.rec.last(t).Message)
	assert.False(t, c.Timer().Started())

	_, err = c.Pot(ctx, model.Red, 1, ShotOptions{})
	assert.ErrorIs(t, err, ErrWrongPhase)
	_, err = c.Undo(ctx)
	assert.ErrorIs(t, err, ErrWrongPhase, "undo is closed once the frame is over")

	fx.confirm.answers = []bool{false}
	assert.ErrorIs(t, c.NextFrame(ctx), ErrCancelled)
	assert.Len(t, c.Match().Frames, 1)

	require.NoError(t, c.NextFrame(ctx))
	assert.Equal(t, PhaseAwaitingPlayStart, c.Phase())
	assert.Len(t, c.Match().Frames, 2)
	assert.Equal(t, "Frame 1 to Ronnie, 1-0. Start frame 2?", fx.confirm.prompts[len(fx.confirm.prompts)-1].Message)

	saved, err := fx.repo.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Len(t, saved.Frames, 2)
	assert.Equal(t, 1, saved.CurrentFrame)
}

func TestFrameTie_IsFlagged(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup)

	out, err := c.EndFrame(ctx)
	require.NoError(t, err)
	assert.True(t, out.Tie)

	f := c.Match().Frame()
	assert.True(t, f.Tied)
	assert.Nil(t, f.Winner)
	assert.Equal(t, PhaseFrameComplete, c.Phase())
	assert.Contains(t, fx.rec.levels(), LevelWarning)
}

func TestMatchComplete_ReadOnlyAndArchived(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, rules.Setup{Players: [2]string{"Ronnie", "Judd"}, BestOf: 1})

	_, err := c.Pot(ctx, model.Red, 1, ShotOptions{})
	require.NoError(t, err)
	_, err = c.EndFrame(ctx)
	require.NoError(t, err)

	m := c.Match()
	assert.Equal(t, PhaseMatchComplete, c.Phase())
	assert.True(t, c.ReadOnly())
	require.NotNil(t, m.Winner)
	assert.Equal(t, 0, *m.Winner)
	assert.Equal(t, "Ronnie wins the match 1-0", fx.rec.last(t).Message)

	_, err = c.Pot(ctx, model.Red, 1, ShotOptions{})
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.ErrorIs(t, c.NextFrame(ctx), ErrReadOnly)

	history, err := c.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.StatusCompleted, history[0].Status)

	_, err = fx.repo.LoadCurrent(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPersistenceFailure_KeepsStateForRetry(t *testing.T) {
	ctx := context.Background()
	repo := &flakyRepo{Repository: openStore(t)}
	fx := newFixture(t, repo)
	c := playing(t, fx, defaultSetup)

	repo.failing = true
	_, err := c.Pot(ctx, model.Red, 1, ShotOptions{})
	require.NoError(t, err, "a failed save does not fail the shot")

	assert.Equal(t, [2]int{1, 0}, c.Match().Frame().Scores)
	assert.True(t, c.Dirty())
	note := fx.rec.last(t)
	assert.Equal(t, LevelError, note.Level)
	assert.ErrorIs(t, note.Err, errDiskFull)

	assert.ErrorIs(t, c.Save(ctx), errDiskFull)
	assert.True(t, c.Dirty())

	repo.failing = false
	require.NoError(t, c.Save(ctx))
	assert.False(t, c.Dirty())

	saved, err := fx.repo.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, [2]int{1, 0}, saved.Frame().Scores)
}

func TestAutoSaveOff_MarksDirty(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup)

	s := c.Settings()
	s.AutoSave = false
	require.NoError(t, c.UpdateSettings(ctx, s))

	_, err := c.Pot(ctx, model.Red, 1, ShotOptions{})
	require.NoError(t, err)
	assert.True(t, c.Dirty())

	saved, err := fx.repo.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Empty(t, saved.Frame().Log, "nothing written until Save")

	require.NoError(t, c.Save(ctx))
	saved, err = fx.repo.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Len(t, saved.Frame().Log, 1)
}

func TestStartMatch_ArchivesUnfinishedMatch(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup)
	first := c.Match().ID

	_, err := c.Pot(ctx, model.Red, 1, ShotOptions{})
	require.NoError(t, err)

	fx.clock.Advance(time.Hour)
	second, err := c.StartMatch(ctx, rules.Setup{Players: [2]string{"Mark", "Neil"}, BestOf: 5})
	require.NoError(t, err)
	assert.NotEqual(t, first, second.ID)

	history, err := c.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, first, history[0].ID)
	assert.Equal(t, [2]int{1, 0}, history[0].Frame().Scores)
}

func TestLoad_RestoresMatchSettingsAndTimer(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup)
	require.NoError(t, c.UpdateSettings(ctx, store.Settings{AutoSave: true, ConfirmActions: false, Theme: "dark"}))

	fx.clock.Advance(30 * time.Second)
	_, err := c.Pot(ctx, model.Red, 1, ShotOptions{})
	require.NoError(t, err)

	again := fx.controller()
	require.NoError(t, again.Load(ctx))
	assert.Equal(t, "dark", again.Settings().Theme)
	assert.Equal(t, PhaseAwaitingPlayStart, again.Phase())
	assert.Equal(t, [2]int{1, 0}, again.Match().Frame().Scores)

	assert.True(t, again.Timer().Paused())
	fx.clock.Advance(10 * time.Second)
	assert.Equal(t, 30*time.Second, again.Timer().FrameElapsed())

	require.NoError(t, again.StartPlay(ctx))
	fx.clock.Advance(5 * time.Second)
	assert.Equal(t, 35*time.Second, again.Timer().FrameElapsed())
}

func TestLoad_FinishedFrameOpensNext(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	s := testutil.NewScript(testutil.Epoch)
	m, err := rules.NewMatch("match_1_a", defaultSetup, testutil.Epoch)
	require.NoError(t, err)
	e := rules.New()
	for _, a := range []model.Action{s.Pot(model.Red), s.EndFrame()} {
		_, err := e.Record(m.Frame(), a)
		require.NoError(t, err)
	}
	require.NoError(t, fx.repo.SaveCurrent(ctx, m))

	c := fx.controller()
	require.NoError(t, c.Load(ctx))
	assert.Equal(t, PhaseAwaitingPlayStart, c.Phase())
	assert.Len(t, c.Match().Frames, 2)
	assert.Equal(t, 1, c.Match().CurrentFrame)

	saved, err := fx.repo.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Len(t, saved.Frames, 2)
}

func TestResumeByID(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	s := testutil.NewScript(testutil.Epoch)
	done, err := rules.NewMatch("match_0_done", rules.Setup{Players: [2]string{"Steve", "Dennis"}, BestOf: 1}, testutil.Epoch)
	require.NoError(t, err)
	e := rules.New()
	for _, a := range []model.Action{s.Pot(model.Red), s.EndFrame()} {
		_, err := e.Record(done.Frame(), a)
		require.NoError(t, err)
	}
	_, err = rules.CompleteMatch(done, s.Start())
	require.NoError(t, err)
	require.NoError(t, fx.repo.SaveToHistory(ctx, done))

	c := playing(t, fx, defaultSetup)
	live := c.Match().ID
	_, err = c.Pot(ctx, model.Red, 1, ShotOptions{})
	require.NoError(t, err)

	require.NoError(t, c.ResumeByID(ctx, "match_0_done"))
	assert.True(t, c.ReadOnly())
	assert.Equal(t, PhaseMatchComplete, c.Phase())
	_, err = c.Pot(ctx, model.Red, 1, ShotOptions{})
	assert.ErrorIs(t, err, ErrReadOnly)

	archived, err := fx.repo.LoadByID(ctx, live)
	require.NoError(t, err, "the live match was archived before switching")
	assert.Equal(t, [2]int{1, 0}, archived.Frame().Scores)

	require.NoError(t, c.ResumeByID(ctx, live))
	assert.False(t, c.ReadOnly())
	assert.Equal(t, PhaseAwaitingPlayStart, c.Phase())
	current, err := fx.repo.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, live, current.ID)

	assert.ErrorIs(t, c.ResumeByID(ctx, "match_missing"), store.ErrNotFound)
}

func TestResumeByID_ImportedMinimalDocument(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := fx.controller()
	require.NoError(t, c.Load(ctx))

	_, err := c.Import(ctx, []byte(`{"id": "match_bare", "players": ["Ann", "Bo"], "frames": []}`))
	require.NoError(t, err)
	require.NoError(t, c.ResumeByID(ctx, "match_bare"))

	m := c.Match()
	assert.False(t, c.ReadOnly())
	assert.Equal(t, PhaseAwaitingPlayStart, c.Phase())
	assert.Equal(t, model.StatusInProgress, m.Status)
	assert.Nil(t, m.Winner)
	assert.Equal(t, model.DefaultBestOf, m.BestOf)
	require.Len(t, m.Frames, 1)
	assert.Equal(t, model.DefaultReds, m.Frame().RedsRemaining)

	current, err := fx.repo.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "match_bare", current.ID)
}

const importedMidFrame = `{
	"id": "match_midframe",
	"players": ["Ann", "Bo"],
	"bestOf": 3,
	"frames": [{
		"number": 1,
		"startTime": "2024-03-09T12:00:00Z",
		"scores": [12, 4],
		"breaks": [
			{"player": 1, "points": 4, "shots": [{"ball": "red", "potted": true, "points": 1}, {"ball": "green", "potted": true, "points": 3}], "balls": ["red", "green"]},
			{"player": 0, "points": 12, "shots": [{"ball": "red", "potted": true, "points": 1}, {"ball": "black", "potted": true, "points": 7}, {"ball": "red", "potted": true, "points": 1}, {"ball": "green", "potted": true, "points": 3}], "balls": ["red", "black", "red", "green"]}
		],
		"currentBreak": -1,
		"redsRemaining": 12,
		"colorsRemaining": ["yellow", "green", "brown", "blue", "pink", "black"],
		"activePlayer": 0
	}]
}`

func TestUndo_StopsAtImportedTable(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := fx.controller()
	require.NoError(t, c.Load(ctx))

	_, err := c.Import(ctx, []byte(importedMidFrame))
	require.NoError(t, err)
	require.NoError(t, c.ResumeByID(ctx, "match_midframe"))
	require.NoError(t, c.StartPlay(ctx))

	_, err = c.Undo(ctx)
	assert.ErrorIs(t, err, ErrNothingToUndo)
	assert.Equal(t, [2]int{12, 4}, c.Match().Frame().Scores)

	_, err = c.Pot(ctx, model.Red, 1, ShotOptions{})
	require.NoError(t, err)
	_, err = c.Pot(ctx, model.Black, 1, ShotOptions{})
	require.NoError(t, err)
	assert.Equal(t, [2]int{20, 4}, c.Match().Frame().Scores)

	reloaded := fx.controller()
	require.NoError(t, reloaded.Load(ctx))
	f := reloaded.Match().Frame()
	assert.Equal(t, [2]int{20, 4}, f.Scores, "replay starts from the imported table")
	assert.Len(t, f.Breaks, 3)

	_, err = c.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, [2]int{13, 4}, c.Match().Frame().Scores)

	_, err = c.Undo(ctx)
	require.NoError(t, err)
	f = c.Match().Frame()
	assert.Equal(t, [2]int{12, 4}, f.Scores)
	assert.Equal(t, 12, f.RedsRemaining)
	assert.Len(t, f.Breaks, 2)
	assert.Equal(t, 12, f.Breaks[1].Points)

	_, err = c.Undo(ctx)
	assert.ErrorIs(t, err, ErrNothingToUndo)
	assert.Equal(t, [2]int{12, 4}, c.Match().Frame().Scores)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup)
	live := c.Match().ID

	fx.confirm.answers = []bool{false}
	assert.ErrorIs(t, c.Delete(ctx, live), ErrCancelled)
	assert.NotNil(t, c.Match())

	require.NoError(t, c.Delete(ctx, live), "the live match need not be in history")
	assert.Nil(t, c.Match())
	assert.Equal(t, PhaseNotStarted, c.Phase())
	_, err := fx.repo.LoadCurrent(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, c.Delete(ctx, "match_missing"), store.ErrNotFound)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup)
	_, err := c.Pot(ctx, model.Red, 1, ShotOptions{})
	require.NoError(t, err)
	_, err = c.Pot(ctx, model.Black, 1, ShotOptions{})
	require.NoError(t, err)

	data, name, err := c.Export()
	require.NoError(t, err)
	assert.Equal(t, "snooker_match_"+c.Match().ID+"_2024-03-09.json", name)

	other := newFixture(t, nil)
	oc := other.controller()
	m, err := oc.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, c.Match().ID, m.ID)

	history, err := oc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, [2]int{8, 0}, history[0].Frame().Scores)

	_, err = oc.Import(ctx, []byte(`{"players":["a","b"]}`))
	assert.ErrorIs(t, err, store.ErrMalformed)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := fx.controller()
	_, err := c.Stats()
	assert.ErrorIs(t, err, ErrNoMatch)

	c = playing(t, fx, defaultSetup)
	_, err = c.Pot(ctx, model.Red, 3, ShotOptions{})
	require.NoError(t, err)
	_, err = c.Pot(ctx, model.Pink, 1, ShotOptions{})
	require.NoError(t, err)

	sum, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 9, sum.Player1.TotalPoints)
	require.NotEmpty(t, sum.AllBreaks)
	assert.Equal(t, 9, sum.AllBreaks[0].Points)
}

func TestView(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup)

	assert.Equal(t, []model.Color{model.Red}, c.View().NextBalls)

	_, err := c.Pot(ctx, model.Red, 1, ShotOptions{})
	require.NoError(t, err)
	v := c.View()
	assert.Equal(t, PhaseInPlay, v.Phase)
	assert.Len(t, v.NextBalls, 6)
	assert.False(t, v.ReadOnly)
}

func TestRun_TicksWhileInPlay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fx := newFixture(t, nil)
	c := playing(t, fx, defaultSetup)
	fx.clock.Advance(42 * time.Second)

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, time.Millisecond) }()

	select {
	case frame := <-fx.rec.ticks:
		assert.Equal(t, 42*time.Second, frame)
	case <-time.After(2 * time.Second):
		t.Fatal("no tick received")
	}
	cancel()
	assert.NoError(t, <-done)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "in-play", PhaseInPlay.String())
	assert.Equal(t, "match-complete", PhaseMatchComplete.String())
	assert.Equal(t, "unknown", Phase(99).String())
}
