// Package logger builds the zerolog logger shared by every component.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a timestamped JSON logger writing to w at the given level.
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(w).
		With().
		Timestamp().
		Logger().
		Level(lvl), nil
}

// NewConsole returns a human-readable logger for interactive use.
func NewConsole(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}
	return zerolog.New(out).
		With().
		Timestamp().
		Logger().
		Level(lvl), nil
}

// ParseLevel accepts zerolog level names, case-insensitively. Empty
// means warn.
func ParseLevel(level string) (zerolog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.WarnLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// Stderr builds the console logger used by the binary, falling back to
// warn when level does not parse.
func Stderr(level string) zerolog.Logger {
	l, err := NewConsole(level, os.Stderr)
	if err != nil {
		l, _ = NewConsole("warn", os.Stderr)
		l.Warn().Err(err).Msg("falling back to warn level")
	}
	return l
}
