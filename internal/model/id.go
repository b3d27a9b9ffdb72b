package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewMatchID returns an id of the form match_<unix millis>_<9 random chars>.
func NewMatchID(now time.Time) (string, error) {
	suffix, err := gonanoid.Generate(idAlphabet, 9)
	if err != nil {
		return "", fmt.Errorf("generate match id: %w", err)
	}
	return fmt.Sprintf("match_%d_%s", now.UnixMilli(), suffix), nil
}

// NewActionID returns a time-sortable UUIDv7 for an action.
func NewActionID() string {
	return uuid.Must(uuid.NewV7()).String()
}
