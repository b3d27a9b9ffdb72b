package store

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/snooker/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// Export renders m as a standalone, indented JSON document.
func Export(m *model.Match) ([]byte, error) {
	if m == nil || m.ID == "" {
		return nil, fmt.Errorf("%w: match has no id", ErrMalformed)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export match %s: %w", m.ID, err)
	}
	return append(data, '\n'), nil
}

// ExportFilename is the suggested file name for an export made at now.
func ExportFilename(m *model.Match, now time.Time) string {
	return fmt.Sprintf("snooker_match_%s_%s.json", m.ID, now.UTC().Format("2006-01-02"))
}

// Import parses an exported document. Anything without an id, a two-name
// player list and a frames list is rejected with ErrMalformed.
func Import(data []byte) (*model.Match, error) {
	if err := validateDocument(data); err != nil {
		return nil, err
	}
	m, err := decodeMatch(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if m.Version == "" {
		m.Version = model.SchemaVersion
	}
	if err := normalize(m); err != nil {
		return nil, err
	}
	return m, nil
}

// normalize fills in the settings and table state a minimal document leaves
// out, and rejects settings no match can have.
//
// A frame without a log cannot be replayed. If it shows play, its stored
// table becomes the baseline later shots are replayed onto, so undo never
// reaches below what was imported.
func normalize(m *model.Match) error {
	if m.BestOf == 0 {
		m.BestOf = model.DefaultBestOf
	}
	if m.BestOf < 1 || m.BestOf%2 == 0 {
		return fmt.Errorf("%w: bestOf %d, must be a positive odd number", ErrMalformed, m.BestOf)
	}
	if m.Reds == 0 {
		m.Reds = model.DefaultReds
	}
	if m.Reds < 1 || m.Reds > model.MaxReds {
		return fmt.Errorf("%w: numberOfReds %d, must be 1 to %d", ErrMalformed, m.Reds, model.MaxReds)
	}
	switch m.Status {
	case "":
		m.Status = model.StatusInProgress
	case model.StatusInProgress, model.StatusCompleted:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrMalformed, m.Status)
	}

	for i, f := range m.Frames {
		if f == nil {
			return fmt.Errorf("%w: frame %d is null", ErrMalformed, i+1)
		}
		if f.ActivePlayer != 0 && f.ActivePlayer != 1 {
			return fmt.Errorf("%w: frame %d active player %d", ErrMalformed, i+1, f.ActivePlayer)
		}
		if f.Number == 0 {
			f.Number = i + 1
		}
		if f.InitialReds == 0 {
			f.InitialReds = m.Reds
		}
		if f.Log == nil {
			f.Log = []model.Action{}
		}
		if len(f.Log) > 0 || f.Ended() {
			continue
		}

		f.Undoable = 0
		if f.CurrentBreak >= len(f.Breaks) {
			f.CurrentBreak = model.NoBreak
		}
		played := f.HasShots() || f.Scores != [2]int{}
		if !played {
			if f.RedsRemaining == 0 && len(f.ColorsRemaining) == 0 {
				f.RedsRemaining = f.InitialReds
				f.ColorsRemaining = model.ClearanceOrder()
			}
			continue
		}
		if f.Baseline == nil {
			f.Baseline = &model.Baseline{
				Scores:          f.Scores,
				Breaks:          model.CloneBreaks(f.Breaks),
				CurrentBreak:    f.CurrentBreak,
				RedsRemaining:   f.RedsRemaining,
				ColorsRemaining: slices.Clone(f.ColorsRemaining),
				ActivePlayer:    f.ActivePlayer,
				FreeBall:        f.FreeBall,
			}
		}
	}
	return nil
}

// validateDocument checks data against the #Match definition.
func validateDocument(data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile import schema: %w", err)
	}

	doc := ctx.CompileBytes(data, cue.Filename("import.json"))
	if err := doc.Err(); err != nil {
		return malformed(err)
	}
	if doc.Kind() != cue.StructKind {
		return fmt.Errorf("%w: document is not an object", ErrMalformed)
	}

	for _, field := range []string{"id", "players", "frames"} {
		if !doc.LookupPath(cue.ParsePath(field)).Exists() {
			return fmt.Errorf("%w: missing %s", ErrMalformed, field)
		}
	}

	unified := schema.LookupPath(cue.ParsePath("#Match")).Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return malformed(err)
	}
	return nil
}

// malformed wraps the first CUE error with its position.
func malformed(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	first := errs[0]
	if pos := cueerrors.Positions(first); len(pos) > 0 && pos[0].IsValid() {
		return fmt.Errorf("%w: %d:%d: %v", ErrMalformed, pos[0].Line(), pos[0].Column(), first)
	}
	return fmt.Errorf("%w: %v", ErrMalformed, first)
}
