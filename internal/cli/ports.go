package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/roach88/snooker/internal/controller"
	"github.com/roach88/snooker/internal/timer"
)

// lineReader hands out input lines one at a time. The session loop and
// the confirmer share one reader so prompts consume the next line.
type lineReader struct {
	lines chan string
}

func newLineReader(r io.Reader) *lineReader {
	l := &lineReader{lines: make(chan string)}
	go func() {
		defer close(l.lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			l.lines <- sc.Text()
		}
	}()
	return l
}

// Next returns the next line, io.EOF at end of input, or ctx.Err().
func (l *lineReader) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-l.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

// promptConfirmer asks yes/no questions on the terminal. Anything but an
// explicit yes declines.
type promptConfirmer struct {
	in  *lineReader
	out io.Writer
}

func (c promptConfirmer) Confirm(ctx context.Context, p controller.Prompt) (bool, error) {
	fmt.Fprintf(c.out, "%s [y/N] ", p.Message)
	line, err := c.in.Next(ctx)
	if err == io.EOF {
		fmt.Fprintln(c.out)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// textNotifier prints notifications. Info messages are shown only when
// verbose is set, unless the notifier belongs to an interactive session.
type textNotifier struct {
	w       io.Writer
	verbose bool
}

func (n textNotifier) Notify(note controller.Notification) {
	if note.Level == controller.LevelInfo && !n.verbose {
		return
	}
	fmt.Fprintf(n.w, "[%s] %s\n", note.Level, note.Message)
}

// boardRenderer redraws the scoreboard after every change. Ticks come
// from the timer goroutine and only record the latest elapsed times.
type boardRenderer struct {
	w     io.Writer
	frame atomic.Int64
	shot  atomic.Int64
}

func (r *boardRenderer) Render(v controller.View) {
	writeBoard(r.w, v)
}

func (r *boardRenderer) Tick(frame, shot time.Duration) {
	r.frame.Store(int64(frame))
	r.shot.Store(int64(shot))
}

// Clock formats the last ticked frame and shot times.
func (r *boardRenderer) Clock() string {
	return fmt.Sprintf("frame %s  shot %s",
		timer.FormatDuration(time.Duration(r.frame.Load())),
		timer.FormatDuration(time.Duration(r.shot.Load())))
}
