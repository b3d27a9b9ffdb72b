package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snooker/internal/model"
	"github.com/roach88/snooker/internal/rules"
	"github.com/roach88/snooker/internal/stats"
	"github.com/roach88/snooker/internal/testutil"
)

// playedMatch returns a match with a finished first frame and a second
// frame in progress.
func playedMatch(t *testing.T, id string) *model.Match {
	t.Helper()
	s := testutil.NewScript(testutil.Epoch)
	e := rules.New()

	m, err := rules.NewMatch(id, rules.Setup{Players: [2]string{"Ronnie", "Judd"}, BestOf: 5}, testutil.Epoch)
	require.NoError(t, err)

	for _, a := range []model.Action{
		s.Pot(model.Red), s.Pot(model.Black), s.Miss(model.Red),
		s.Foul(model.Foul{Ball: model.Red, Points: 4, FreeBall: true}),
		s.Pot(model.Pink), s.Safety(model.Red), s.EndFrame(),
	} {
		_, err := e.Record(m.Frame(), a)
		require.NoError(t, err)
	}
	_, err = rules.NextFrame(m, s.Start().Add(time.Hour))
	require.NoError(t, err)
	_, err = e.Record(m.Frame(), s.PotN(model.Red, 2))
	require.NoError(t, err)

	stats.Refresh(m)
	m.Updated = s.Start().Add(2 * time.Hour)
	return m
}

func historyIDs(t *testing.T, r Repository) []string {
	t.Helper()
	matches, err := r.History(context.Background())
	require.NoError(t, err)
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return ids
}

// testRepository runs the behaviour every backend must share. newRepo
// must return an empty repository with a history cap of 3.
func testRepository(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("current slot round trip", func(t *testing.T) {
		r := newRepo(t)
		_, err := r.LoadCurrent(ctx)
		assert.ErrorIs(t, err, ErrNotFound)

		m := playedMatch(t, "match_1_a")
		require.NoError(t, r.SaveCurrent(ctx, m))

		got, err := r.LoadCurrent(ctx)
		require.NoError(t, err)
		assert.Equal(t, m, got)

		other := playedMatch(t, "match_2_b")
		require.NoError(t, r.SaveCurrent(ctx, other))
		got, err = r.LoadCurrent(ctx)
		require.NoError(t, err)
		assert.Equal(t, "match_2_b", got.ID, "current slot is overwritten")

		require.NoError(t, r.ClearCurrent(ctx))
		_, err = r.LoadCurrent(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("history is most recent first and capped", func(t *testing.T) {
		r := newRepo(t)
		assert.Empty(t, historyIDs(t, r))

		for i := 1; i <= 5; i++ {
			require.NoError(t, r.SaveToHistory(ctx, playedMatch(t, fmt.Sprintf("match_%d_x", i))))
		}
		assert.Equal(t, []string{"match_5_x", "match_4_x", "match_3_x"}, historyIDs(t, r))

		_, err := r.LoadByID(ctx, "match_1_x")
		assert.ErrorIs(t, err, ErrNotFound, "trimmed entries are gone")
	})

	t.Run("resaving replaces in place", func(t *testing.T) {
		r := newRepo(t)
		for _, id := range []string{"match_1_a", "match_2_b", "match_3_c"} {
			require.NoError(t, r.SaveToHistory(ctx, playedMatch(t, id)))
		}

		m := playedMatch(t, "match_2_b")
		m.Status = model.StatusCompleted
		require.NoError(t, r.SaveToHistory(ctx, m))

		assert.Equal(t, []string{"match_3_c", "match_2_b", "match_1_a"}, historyIDs(t, r))
		got, err := r.LoadByID(ctx, "match_2_b")
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, got.Status)
		assert.Equal(t, m, got)
	})

	t.Run("delete", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.SaveToHistory(ctx, playedMatch(t, "match_1_a")))
		require.NoError(t, r.SaveToHistory(ctx, playedMatch(t, "match_2_b")))

		require.NoError(t, r.DeleteFromHistory(ctx, "match_1_a"))
		assert.Equal(t, []string{"match_2_b"}, historyIDs(t, r))
		assert.ErrorIs(t, r.DeleteFromHistory(ctx, "match_1_a"), ErrNotFound)
	})

	t.Run("settings", func(t *testing.T) {
		r := newRepo(t)
		got, err := r.LoadSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, DefaultSettings(), got)

		want := Settings{AutoSave: false, ConfirmActions: true, Theme: "dark"}
		require.NoError(t, r.SaveSettings(ctx, want))
		got, err = r.LoadSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("size and clear", func(t *testing.T) {
		r := newRepo(t)
		empty, err := r.Size(ctx)
		require.NoError(t, err)
		assert.Zero(t, empty.Total())

		m := playedMatch(t, "match_1_a")
		require.NoError(t, r.SaveCurrent(ctx, m))
		require.NoError(t, r.SaveToHistory(ctx, m))

		size, err := r.Size(ctx)
		require.NoError(t, err)
		doc, err := encodeMatch(m)
		require.NoError(t, err)
		assert.Equal(t, int64(len(doc)), size.CurrentBytes)
		assert.Equal(t, int64(len(doc)), size.HistoryBytes)
		assert.Equal(t, 1, size.HistoryCount)

		require.NoError(t, r.ClearAll(ctx))
		size, err = r.Size(ctx)
		require.NoError(t, err)
		assert.Zero(t, size.Total())
		assert.Empty(t, historyIDs(t, r))
	})

	t.Run("rejects match without id", func(t *testing.T) {
		r := newRepo(t)
		assert.ErrorIs(t, r.SaveCurrent(ctx, &model.Match{}), ErrMalformed)
		assert.ErrorIs(t, r.SaveToHistory(ctx, &model.Match{}), ErrMalformed)
	})
}
