package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/roach88/snooker/internal/model"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SQLiteStore is the default Repository, backed by a single SQLite file.
type SQLiteStore struct {
	db           *sql.DB
	log          zerolog.Logger
	historyLimit int
}

var _ Repository = (*SQLiteStore)(nil)

// OpenSQLite creates or opens the database at path, applies pragmas and
// runs pending migrations. Safe to call on an existing database.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.With().Str("component", "store").Str("backend", "sqlite").Logger()
	log.Debug().Str("path", path).Msg("opening database")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, log: log, historyLimit: o.historyLimit}, nil
}

func applyPragmas(db *sql.DB, log zerolog.Logger) error {
	pragmas := []struct {
		name  string
		value string
	}{
		{"journal_mode", "WAL"},
		{"synchronous", "NORMAL"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "ON"},
		{"temp_store", "MEMORY"},
	}

	for _, p := range pragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("failed to set PRAGMA %s: %w", p.name, err)
		}
		log.Debug().Str("pragma", p.name).Str("value", p.value).Msg("SQLite pragma set")
	}
	return nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveCurrent overwrites the current match slot.
func (s *SQLiteStore) SaveCurrent(ctx context.Context, m *model.Match) error {
	doc, err := encodeMatch(m)
	if err != nil {
		return fmt.Errorf("save current: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO current_match (slot, match_id, document, saved_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			match_id = excluded.match_id,
			document = excluded.document,
			saved_at = excluded.saved_at
	`, m.ID, string(doc), savedAt(m))
	if err != nil {
		return fmt.Errorf("save current: %w", err)
	}

	s.log.Debug().Str("match", m.ID).Int("bytes", len(doc)).Msg("current match saved")
	return nil
}

// LoadCurrent returns the current match, or ErrNotFound.
func (s *SQLiteStore) LoadCurrent(ctx context.Context) (*model.Match, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM current_match WHERE slot = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load current: %w", err)
	}
	return decodeMatch([]byte(doc))
}

// ClearCurrent empties the current match slot.
func (s *SQLiteStore) ClearCurrent(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM current_match`); err != nil {
		return fmt.Errorf("clear current: %w", err)
	}
	return nil
}

// SaveToHistory inserts m at the head of history, or replaces the stored
// copy in place when m is already there. History beyond the cap is
// dropped, oldest first.
func (s *SQLiteStore) SaveToHistory(ctx context.Context, m *model.Match) error {
	doc, err := encodeMatch(m)
	if err != nil {
		return fmt.Errorf("save to history: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save to history: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO match_history (id, seq, status, document, saved_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM match_history), ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status   = excluded.status,
			document = excluded.document,
			saved_at = excluded.saved_at
	`, m.ID, string(m.Status), string(doc), savedAt(m))
	if err != nil {
		return fmt.Errorf("save to history: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM match_history
		WHERE id NOT IN (
			SELECT id FROM match_history ORDER BY seq DESC LIMIT ?
		)
	`, s.historyLimit)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save to history: %w", err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		s.log.Debug().Int64("dropped", n).Int("limit", s.historyLimit).Msg("history trimmed")
	}
	return nil
}

// History returns every stored match, most recent first.
func (s *SQLiteStore) History(ctx context.Context) ([]*model.Match, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document FROM match_history ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	matches := []*model.Match{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		m, err := decodeMatch([]byte(doc))
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return matches, nil
}

// LoadByID returns the history entry with the given id, or ErrNotFound.
func (s *SQLiteStore) LoadByID(ctx context.Context, id string) (*model.Match, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM match_history WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load match %s: %w", id, err)
	}
	return decodeMatch([]byte(doc))
}

// DeleteFromHistory removes one entry, or returns ErrNotFound.
func (s *SQLiteStore) DeleteFromHistory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM match_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete match %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete match %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadSettings returns stored preferences over the defaults.
func (s *SQLiteStore) LoadSettings(ctx context.Context) (Settings, error) {
	settings := DefaultSettings()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return settings, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, fmt.Errorf("load settings: %w", err)
		}
		applySettingField(&settings, key, value)
	}
	return settings, rows.Err()
}

// SaveSettings stores every preference.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings Settings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	defer tx.Rollback()

	for key, value := range settingsFields(settings) {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value)
		if err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
	}
	return tx.Commit()
}

// Size reports stored document sizes.
func (s *SQLiteStore) Size(ctx context.Context) (SizeReport, error) {
	var r SizeReport
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(LENGTH(CAST(document AS BLOB))), 0), COUNT(*) FROM match_history
	`).Scan(&r.HistoryBytes, &r.HistoryCount)
	if err != nil {
		return r, fmt.Errorf("history size: %w", err)
	}
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(LENGTH(CAST(document AS BLOB))), 0) FROM current_match
	`).Scan(&r.CurrentBytes)
	if err != nil {
		return r, fmt.Errorf("current size: %w", err)
	}
	return r, nil
}

// ClearAll empties every slot.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clear all: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"current_match", "match_history", "settings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func savedAt(m *model.Match) string {
	return m.Updated.UTC().Format(time.RFC3339Nano)
}
