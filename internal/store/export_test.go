package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snooker/internal/model"
)

func TestExportImport_RoundTrip(t *testing.T) {
	m := playedMatch(t, "match_1700000000000_abc123xyz")

	data, err := Export(m)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"id\": \"match_1700000000000_abc123xyz\""))

	got, err := Import(data)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestExportFilename(t *testing.T) {
	m := &model.Match{ID: "match_1_abc"}
	now := time.Date(2024, time.July, 4, 23, 30, 0, 0, time.FixedZone("X", -2*3600))
	assert.Equal(t, "snooker_match_match_1_abc_2024-07-05.json", ExportFilename(m, now))
}

func TestExport_RequiresID(t *testing.T) {
	_, err := Export(&model.Match{})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestImport_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"id": `},
		{"array", `[1, 2]`},
		{"missing id", `{"players": ["a", "b"], "frames": []}`},
		{"empty id", `{"id": "", "players": ["a", "b"], "frames": []}`},
		{"missing players", `{"id": "m", "frames": []}`},
		{"one player", `{"id": "m", "players": ["a"], "frames": []}`},
		{"three players", `{"id": "m", "players": ["a", "b", "c"], "frames": []}`},
		{"player not a string", `{"id": "m", "players": ["a", 2], "frames": []}`},
		{"missing frames", `{"id": "m", "players": ["a", "b"]}`},
		{"frames not a list", `{"id": "m", "players": ["a", "b"], "frames": {}}`},
		{"frame not an object", `{"id": "m", "players": ["a", "b"], "frames": [3]}`},
		{"wrong field type", `{"id": "m", "players": ["a", "b"], "frames": [], "bestOf": "five"}`},
		{"current break as an object", `{"id": "m", "players": ["a", "b"], "frames": [{"currentBreak": {"player": 0, "points": 8}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Import([]byte(tt.doc))
			assert.Nil(t, m)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestImport_MinimalDocument(t *testing.T) {
	m, err := Import([]byte(`{"id": "match_9_zz", "players": ["Ann", "Bo"], "frames": [], "extra": true}`))
	require.NoError(t, err)
	assert.Equal(t, "match_9_zz", m.ID)
	assert.Equal(t, []string{"Ann", "Bo"}, m.Players)
	assert.Empty(t, m.Frames)
	assert.Equal(t, model.SchemaVersion, m.Version)
	assert.Equal(t, model.DefaultBestOf, m.BestOf)
	assert.Equal(t, model.DefaultReds, m.Reds)
	assert.Equal(t, model.StatusInProgress, m.Status)
	assert.Nil(t, m.Winner)
}

func TestImport_ImpossibleSettings(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"even best of", `{"id": "m", "players": ["a", "b"], "frames": [], "bestOf": 4}`},
		{"negative best of", `{"id": "m", "players": ["a", "b"], "frames": [], "bestOf": -3}`},
		{"too many reds", `{"id": "m", "players": ["a", "b"], "frames": [], "numberOfReds": 16}`},
		{"unknown status", `{"id": "m", "players": ["a", "b"], "frames": [], "status": "paused"}`},
		{"third player to act", `{"id": "m", "players": ["a", "b"], "frames": [{"activePlayer": 2}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Import([]byte(tt.doc))
			assert.Nil(t, m)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestImport_BareFrameGetsFullRack(t *testing.T) {
	m, err := Import([]byte(`{"id": "m", "players": ["a", "b"], "numberOfReds": 6, "frames": [{}]}`))
	require.NoError(t, err)
	require.Len(t, m.Frames, 1)

	f := m.Frames[0]
	assert.Equal(t, 1, f.Number)
	assert.Equal(t, 6, f.InitialReds)
	assert.Equal(t, 6, f.RedsRemaining)
	assert.Equal(t, model.ClearanceOrder(), f.ColorsRemaining)
	assert.Equal(t, model.NoBreak, f.CurrentBreak)
	assert.NotNil(t, f.Log)
	assert.Nil(t, f.Baseline)
}

func TestImport_PlayedFrameWithoutLogKeepsItsTable(t *testing.T) {
	m, err := Import([]byte(`{
		"id": "m",
		"players": ["a", "b"],
		"frames": [{
			"number": 1,
			"scores": [8, 4],
			"breaks": [
				{"player": 1, "points": 4, "shots": [{"ball": "red", "potted": true, "points": 1}, {"ball": "green", "potted": true, "points": 3}], "balls": ["red", "green"]},
				{"player": 0, "points": 8, "shots": [{"ball": "red", "potted": true, "points": 1}, {"ball": "black", "potted": true, "points": 7}], "balls": ["red", "black"]}
			],
			"currentBreak": 1,
			"redsRemaining": 13,
			"colorsRemaining": ["yellow", "green", "brown", "blue", "pink", "black"],
			"activePlayer": 0,
			"undoable": 4
		}]
	}`))
	require.NoError(t, err)

	f := m.Frames[0]
	assert.Equal(t, model.DefaultReds, f.InitialReds)
	assert.Zero(t, f.Undoable, "a frame without a log has nothing to undo")
	require.NotNil(t, f.Baseline)
	assert.Equal(t, [2]int{8, 4}, f.Baseline.Scores)
	assert.Equal(t, 13, f.Baseline.RedsRemaining)
	assert.Equal(t, 1, f.Baseline.CurrentBreak)
	require.Len(t, f.Baseline.Breaks, 2)

	f.Breaks[1].Shots = append(f.Breaks[1].Shots, model.Shot{Ball: model.Red, Potted: true, Points: 1})
	assert.Len(t, f.Baseline.Breaks[1].Shots, 2, "the baseline shares nothing with the frame")
}
