// Package local provides an in-memory implementation of the memory.Driver interface.
//
// Turns are kept in insertion order and recalled by naive keyword overlap
// with the query. This is a simple local-dev story — production backends
// would recall turns through the same embedding index used for sources.
package local

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/thinkbooklabs/thinkbook/pkg/memory"
)

// Config holds configuration for the local memory driver.
type Config struct {
	// Enabled controls whether the driver stores and recalls turns.
	// When false, Store is a no-op and Recall returns nil.
	Enabled bool
}

// Driver implements memory.Driver using in-process data structures.
type Driver struct {
	config Config

	mu sync.RWMutex

	// turns in insertion order.
	turns []memory.Turn
}

// NewDriver creates a local in-memory conversation memory driver.
func NewDriver(config Config) *Driver {
	return &Driver{config: config}
}

// Store appends the turn to the history.
func (d *Driver) Store(_ context.Context, turn memory.Turn) error {
	if !d.config.Enabled {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.turns = append(d.turns, turn)
	return nil
}

// Recall returns up to limit past turns scored by keyword overlap with the
// query. Turns with no overlapping words are excluded. Returns nil if the
// driver is disabled or nothing matches.
func (d *Driver) Recall(_ context.Context, query string, limit int) ([]memory.Turn, error) {
	if !d.config.Enabled {
		return nil, nil
	}

	words := tokenize(query)
	if len(words) == 0 {
		return nil, nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	type scored struct {
		turn  memory.Turn
		score int
		pos   int
	}

	var matches []scored
	for i, turn := range d.turns {
		s := overlap(words, tokenize(turn.Query+" "+turn.Answer))
		if s == 0 {
			continue
		}
		matches = append(matches, scored{turn: turn, score: s, pos: i})
	}

	// Higher overlap first; ties broken by recency.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].pos > matches[j].pos
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	result := make([]memory.Turn, len(matches))
	for i, m := range matches {
		result[i] = m.turn
	}
	return result, nil
}

// History returns all stored turns in insertion order.
func (d *Driver) History(_ context.Context) ([]memory.Turn, error) {
	if !d.config.Enabled {
		return nil, nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	// Return a copy to avoid callers mutating internal state.
	result := make([]memory.Turn, len(d.turns))
	copy(result, d.turns)

	return result, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

func tokenize(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,!?;:\"'()[]")
		if len(w) < 3 {
			continue
		}
		words[w] = struct{}{}
	}
	return words
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

// Ensure Driver implements memory.Driver
var _ memory.Driver = (*Driver)(nil)
