package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/snooker/internal/model"
)

// DefaultHistoryLimit caps the number of matches kept in history.
const DefaultHistoryLimit = 50

var (
	// ErrNotFound is returned when a slot or history entry is empty.
	ErrNotFound = errors.New("store: not found")

	// ErrMalformed is returned when a document fails validation.
	ErrMalformed = errors.New("store: malformed match document")
)

// Repository is the persistence contract used by the match controller.
type Repository interface {
	SaveCurrent(ctx context.Context, m *model.Match) error
	LoadCurrent(ctx context.Context) (*model.Match, error)
	ClearCurrent(ctx context.Context) error

	SaveToHistory(ctx context.Context, m *model.Match) error
	History(ctx context.Context) ([]*model.Match, error)
	LoadByID(ctx context.Context, id string) (*model.Match, error)
	DeleteFromHistory(ctx context.Context, id string) error

	LoadSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error

	Size(ctx context.Context) (SizeReport, error)
	ClearAll(ctx context.Context) error
	Close() error
}

// Settings are user preferences.
type Settings struct {
	AutoSave       bool   `json:"autoSave"`
	ConfirmActions bool   `json:"confirmActions"`
	Theme          string `json:"theme"`
}

// DefaultSettings returns the preferences used before anything is saved.
func DefaultSettings() Settings {
	return Settings{AutoSave: true, ConfirmActions: true, Theme: "default"}
}

// SizeReport describes how much the stored documents weigh.
type SizeReport struct {
	CurrentBytes int64 `json:"currentBytes"`
	HistoryBytes int64 `json:"historyBytes"`
	HistoryCount int   `json:"historyCount"`
}

// Total returns the combined size in bytes.
func (r SizeReport) Total() int64 {
	return r.CurrentBytes + r.HistoryBytes
}

// Option configures a store.
type Option func(*options)

type options struct {
	logger       zerolog.Logger
	historyLimit int
}

func defaultOptions() options {
	return options{logger: zerolog.Nop(), historyLimit: DefaultHistoryLimit}
}

// WithLogger sets the logger used for store events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHistoryLimit sets the history cap. Values below 1 are ignored.
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.historyLimit = n
		}
	}
}

func encodeMatch(m *model.Match) ([]byte, error) {
	if m == nil || m.ID == "" {
		return nil, fmt.Errorf("%w: match has no id", ErrMalformed)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode match %s: %w", m.ID, err)
	}
	return data, nil
}

func decodeMatch(data []byte) (*model.Match, error) {
	var m model.Match
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode match: %w", err)
	}
	return &m, nil
}

func settingsFields(s Settings) map[string]string {
	return map[string]string{
		"autoSave":       fmt.Sprint(s.AutoSave),
		"confirmActions": fmt.Sprint(s.ConfirmActions),
		"theme":          s.Theme,
	}
}

// applySettingField sets one stored key onto s. Unknown keys are ignored
// so older binaries can read newer settings.
func applySettingField(s *Settings, key, value string) {
	switch key {
	case "autoSave":
		s.AutoSave = value == "true"
	case "confirmActions":
		s.ConfirmActions = value == "true"
	case "theme":
		s.Theme = value
	}
}
