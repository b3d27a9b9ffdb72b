package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/roach88/snooker/internal/controller"
	"github.com/roach88/snooker/internal/model"
	"github.com/roach88/snooker/internal/rules"
	"github.com/roach88/snooker/internal/stats"
	"github.com/roach88/snooker/internal/timer"
)

func colorNames(cs []model.Color) string {
	if len(cs) == 0 {
		return "-"
	}
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return strings.Join(names, " ")
}

// writeBoard prints the scoreboard for v.
func writeBoard(w io.Writer, v controller.View) {
	m := v.Match
	if m == nil {
		fmt.Fprintln(w, `No match loaded. Start one with "new <player1> <player2> [best-of] [reds]".`)
		return
	}
	f := m.Frame()
	won := rules.FramesWon(m)

	status := v.Phase.String()
	if v.ReadOnly {
		status += ", read-only"
	}
	if v.Dirty {
		status += ", unsaved"
	}
	fmt.Fprintf(w, "%s %d-%d %s  best of %d  frame %d  [%s]\n",
		m.Players[0], won[0], won[1], m.Players[1], m.BestOf, f.Number, status)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	current := f.Current()
	for p, name := range m.Players {
		marker := " "
		if !f.Ended() && f.ActivePlayer == p {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s\t%d", marker, name, f.Scores[p])
		if current != nil && current.Player == p && current.Points > 0 {
			line += fmt.Sprintf("\tbreak %d", current.Points)
		}
		fmt.Fprintln(tw, line)
	}
	_ = tw.Flush()

	if f.Ended() {
		switch {
		case f.Winner != nil:
			fmt.Fprintf(w, "Frame %d won by %s\n", f.Number, m.Players[*f.Winner])
		default:
			fmt.Fprintf(w, "Frame %d finished level\n", f.Number)
		}
		return
	}

	fmt.Fprintf(w, "Reds %d  Colors %s  Remaining %d\n",
		f.RedsRemaining, colorNames(f.ColorsRemaining), rules.PointsRemaining(f))
	next := "On: " + colorNames(v.NextBalls)
	if f.FreeBall {
		next += "  FREE BALL"
	}
	fmt.Fprintf(w, "%s  Time %s\n", next, timer.FormatDuration(v.Elapsed))
}

// writeSummary prints a match overview with both players' statistics.
func writeSummary(w io.Writer, s stats.MatchSummary) {
	fmt.Fprintf(w, "%s vs %s  best of %d  frames %d-%d  [%s]\n",
		s.Players[0], s.Players[1], s.BestOf, s.CurrentScore[0], s.CurrentScore[1], s.Status)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t%s\t\n", s.Players[0], s.Players[1])
	row := func(label string, a, b any) {
		fmt.Fprintf(tw, "%s\t%v\t%v\t\n", label, a, b)
	}
	p1, p2 := s.Player1, s.Player2
	row("Frames won", p1.FramesWon, p2.FramesWon)
	row("Points", p1.TotalPoints, p2.TotalPoints)
	row("High break", p1.HighBreak, p2.HighBreak)
	row("Breaks 20+", p1.Breaks.Over20, p2.Breaks.Over20)
	row("Breaks 50+", p1.Breaks.Over50, p2.Breaks.Over50)
	row("Centuries", p1.Breaks.Century, p2.Breaks.Century)
	row("Pot %", p1.PotPercentage, p2.PotPercentage)
	row("Rest pot %", p1.RestPotPercentage, p2.RestPotPercentage)
	row("Safety %", p1.SafetySuccessRate, p2.SafetySuccessRate)
	row("Escape %", p1.EscapeSuccessRate, p2.EscapeSuccessRate)
	row("Fouls", p1.Fouls, p2.Fouls)
	row("Visits", p1.Visits, p2.Visits)
	row("Points/visit", p1.PointsPerVisit, p2.PointsPerVisit)
	row("Avg shot (s)", p1.AverageShotTime, p2.AverageShotTime)
	_ = tw.Flush()

	if len(s.Frames) > 0 {
		fmt.Fprintln(w, "Frames:")
		for _, f := range s.Frames {
			result := "level"
			if f.Winner != nil {
				result = s.Players[*f.Winner]
			}
			fmt.Fprintf(w, "  %d  %d-%d  %s  high %d  %s\n", f.Number, f.Scores[0], f.Scores[1],
				result, f.HighBreak, timer.FormatDuration(time.Duration(f.Duration)*time.Millisecond))
		}
	}
	if len(s.AllBreaks) > 0 {
		b := s.AllBreaks[0]
		fmt.Fprintf(w, "Highest break: %d by %s in frame %d\n", b.Points, s.Players[b.Player], b.Frame)
	}
}

// historyLine is one row of the history listing.
func historyLine(m *model.Match) string {
	won := rules.FramesWon(m)
	return fmt.Sprintf("%s  %s %d-%d %s  best of %d  %s  %s",
		m.ID, m.Players[0], won[0], won[1], m.Players[1], m.BestOf, m.Status,
		m.Updated.UTC().Format("2006-01-02 15:04"))
}
