package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/snooker/internal/model"
	"github.com/roach88/snooker/internal/stats"
	"github.com/roach88/snooker/internal/store"
)

// History lists saved matches, most recent first.
func (c *Controller) History(ctx context.Context) ([]*model.Match, error) {
	return c.repo.History(ctx)
}

// ResumeByID loads a match from history and makes it current. The match
// that was current is archived first. Completed matches open read-only.
func (c *Controller) ResumeByID(ctx context.Context, id string) error {
	m, err := c.repo.LoadByID(ctx, id)
	if err != nil {
		return fmt.Errorf("resume %s: %w", id, err)
	}
	if c.match != nil && c.match.ID != id {
		c.archiveCurrent(ctx)
	}
	if err := c.open(ctx, m); err != nil {
		return err
	}
	if !m.Completed() {
		c.persist(ctx)
	}
	c.logger.Info().Str("match", id).Bool("read_only", m.Completed()).Msg("match resumed")
	return nil
}

// Delete removes a match from history. Deleting the live match also
// clears the current slot.
func (c *Controller) Delete(ctx context.Context, id string) error {
	err := c.ask(ctx, Prompt{Kind: PromptDelete, Message: fmt.Sprintf("Delete match %s?", id)})
	if err != nil {
		return err
	}

	live := c.match != nil && c.match.ID == id
	err = c.repo.DeleteFromHistory(ctx, id)
	if err != nil && !(live && errors.Is(err, store.ErrNotFound)) {
		return fmt.Errorf("delete %s: %w", id, err)
	}

	if live {
		if err := c.repo.ClearCurrent(ctx); err != nil {
			c.persistFailed("clear current match", err)
		}
		c.match = nil
		c.dirty = false
		c.timer.Reset()
		c.phase = PhaseNotStarted
		c.seen = make(map[string]struct{})
	}

	c.logger.Info().Str("match", id).Msg("match deleted")
	c.renderView()
	return nil
}

// Stats recomputes and summarizes the live match.
func (c *Controller) Stats() (stats.MatchSummary, error) {
	if c.match == nil {
		return stats.MatchSummary{}, ErrNoMatch
	}
	stats.Refresh(c.match)
	return stats.SummarizeMatch(c.match), nil
}

// Export serializes the live match and suggests a file name for it.
func (c *Controller) Export() (data []byte, filename string, err error) {
	if c.match == nil {
		return nil, "", ErrNoMatch
	}
	stats.Refresh(c.match)
	data, err = store.Export(c.match)
	if err != nil {
		return nil, "", err
	}
	return data, store.ExportFilename(c.match, c.clock.Now()), nil
}

// Import validates an exported document and adds it to history.
func (c *Controller) Import(ctx context.Context, data []byte) (*model.Match, error) {
	m, err := store.Import(data)
	if err != nil {
		return nil, err
	}
	if err := c.repo.SaveToHistory(ctx, m); err != nil {
		c.persistFailed("import match", err)
		return nil, err
	}
	c.logger.Info().Str("match", m.ID).Msg("match imported")
	return m, nil
}

// StorageSize reports how much space saved matches take.
func (c *Controller) StorageSize(ctx context.Context) (store.SizeReport, error) {
	return c.repo.Size(ctx)
}
