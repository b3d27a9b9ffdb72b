package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snooker/internal/controller"
	"github.com/roach88/snooker/internal/model"
	"github.com/roach88/snooker/internal/rules"
)

func TestSession_NoMatch(t *testing.T) {
	db := testDB(t)

	out, err := execute(t, db, "start\nboard\n", "session")
	require.NoError(t, err, "end of input closes the session")
	assert.Contains(t, out, "No match loaded")
	assert.Contains(t, out, "error: controller: no match loaded")
}

func TestSession_PlaysMatchToCompletion(t *testing.T) {
	db := testDB(t)

	script := strings.Join([]string{
		"new Ronnie Judd 1 1",
		"start",
		"pot red",
		"pot black",
		"pot yellow", "pot green", "pot brown", "pot blue", "pot pink", "pot black",
		"pot red",
		"quit",
	}, "\n")
	out, err := execute(t, db, script, "session")
	require.NoError(t, err)

	assert.Contains(t, out, "Started match")
	assert.Contains(t, out, "[info] Ronnie wins the match 1-0")
	assert.Contains(t, out, "error: controller: match is completed and read-only")
	assert.NotContains(t, out, "unsaved changes")

	h := history(t, db)
	require.Len(t, h.Matches, 1, "a completed match moves to history")
	done := h.Matches[0]
	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.Equal(t, [2]int{1, 0}, done.Frames)
	assert.Zero(t, h.Size.CurrentBytes, "the current slot is cleared")

	text, err := execute(t, db, "", "verify", done.ID)
	require.NoError(t, err)
	assert.Contains(t, text, "Verified")

	out, err = execute(t, db, "", "resume", done.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "(read-only)")
}

func TestSession_RejectedInputKeepsGoing(t *testing.T) {
	db := testDB(t)
	startMatch(t, db)

	script := strings.Join([]string{
		"pot red",
		"start",
		"foul red 3",
		"pot yellow",
		"pot purple",
		"foul red",
		"dance",
		"pot red",
		"board",
	}, "\n")
	out, err := execute(t, db, script, "session")
	require.NoError(t, err)

	assert.Contains(t, out, "cannot pot while awaiting-play-start")
	assert.Contains(t, out, "FOUL_POINTS")
	assert.Contains(t, out, "ILLEGAL_BALL: yellow is not on, expected red")
	assert.Contains(t, out, `unknown ball color "purple"`)
	assert.Contains(t, out, "how many points?")
	assert.Contains(t, out, `unknown command "dance"`)
	assert.Contains(t, out, "* Ronnie")
	assert.Contains(t, out, "break 1")
}

func TestSession_Confirmations(t *testing.T) {
	db := testDB(t)
	startMatch(t, db)

	script := strings.Join([]string{
		"start",
		"pot red",
		"end-break",
		"n",
		"end-break",
		"y",
		"quit",
	}, "\n")
	out, err := execute(t, db, script, "session")
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, "End Ronnie's break? [y/N]"))
	assert.Equal(t, 1, strings.Count(out, "Cancelled."))
	assert.Contains(t, out, "* Judd")
}

func TestSession_PauseAndNextFrame(t *testing.T) {
	db := testDB(t)
	startMatch(t, db, "--best-of", "3", "--reds", "1")

	script := strings.Join([]string{
		"start",
		"p",
		"pot red",
		"p",
		"pot red",
		"end-frame",
		"y",
		"next",
		"y",
		"clock",
		"stats",
		"quit",
	}, "\n")
	out, err := execute(t, db, script, "session")
	require.NoError(t, err)

	assert.Contains(t, out, "cannot pot while paused")
	assert.Contains(t, out, "[info] Frame 1 to Ronnie, 1-0.")
	assert.Contains(t, out, "Start frame 2? [y/N]")
	assert.Contains(t, out, "frame 2")
	assert.Regexp(t, `frame \d+:\d{2}  shot \d+:\d{2}`, out)
	assert.Contains(t, out, "Ronnie vs Judd")

	statsOut, err := execute(t, db, "", "--format", "json", "stats")
	require.NoError(t, err)
	var summary struct {
		CurrentScore [2]int `json:"currentScore"`
		FramesPlayed int    `json:"framesPlayed"`
	}
	decodeData(t, statsOut, &summary)
	assert.Equal(t, [2]int{1, 0}, summary.CurrentScore)
	assert.Equal(t, 2, summary.FramesPlayed)
}

func TestParseFoul(t *testing.T) {
	foul, err := parseFoul([]string{"blue", "5", "again", "free", "reds=2"})
	require.NoError(t, err)
	assert.Equal(t, model.Foul{Ball: model.Blue, Points: 5, PlayAgain: true, FreeBall: true, RedsPotted: 2}, foul)

	foul, err = parseFoul([]string{"red", "4"})
	require.NoError(t, err)
	assert.Equal(t, model.Foul{Ball: model.Red, Points: 4}, foul)

	for _, args := range [][]string{
		{},
		{"red"},
		{"red", "four"},
		{"red", "4", "reds=x"},
		{"red", "4", "sideways"},
	} {
		_, err := parseFoul(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestParseShotFlags(t *testing.T) {
	opt, err := parseShotFlags([]string{"rest", "escape"}, true)
	require.NoError(t, err)
	assert.Equal(t, controller.ShotOptions{Rest: true, Escape: true}, opt)

	_, err = parseShotFlags([]string{"escape"}, false)
	assert.Error(t, err, "safeties take no escape flag")
}

func TestParseSetup(t *testing.T) {
	setup, err := parseSetup([]string{"Ronnie", "Judd"})
	require.NoError(t, err)
	assert.Equal(t, rules.Setup{Players: [2]string{"Ronnie", "Judd"}, BestOf: 5, Reds: 15}, setup)

	setup, err = parseSetup([]string{"Ronnie", "Judd", "9", "6"})
	require.NoError(t, err)
	assert.Equal(t, 9, setup.BestOf)
	assert.Equal(t, 6, setup.Reds)

	_, err = parseSetup([]string{"Ronnie"})
	assert.Error(t, err)
	_, err = parseSetup([]string{"Ronnie", "Judd", "many"})
	assert.Error(t, err)
}
