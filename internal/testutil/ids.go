package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs hands out predictable action ids: act-0001, act-0002, ...
//
// Thread-safety: safe for concurrent use.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator. An empty prefix means "act".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "act"
	}
	return &SequentialIDs{prefix: prefix}
}

// NewActionID returns the next id.
func (g *SequentialIDs) NewActionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// FixedIDs returns the same id every time. Useful for exercising
// duplicate action detection.
type FixedIDs string

// NewActionID returns the fixed id.
func (f FixedIDs) NewActionID() string {
	return string(f)
}
