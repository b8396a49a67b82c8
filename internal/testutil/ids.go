package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator produces run IDs "<prefix>-0001", "<prefix>-0002", ...
//
// This enables deterministic test execution and stable golden output where
// production code would use time-based UUIDs.
//
// Thread-safety: Generate is safe for concurrent use via internal mutex.
// Concurrent callers receive distinct IDs but in no particular order.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDGenerator creates a generator. An empty prefix defaults to "run".
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "run"
	}
	return &SequentialIDGenerator{prefix: prefix}
}

// Generate returns the next ID.
//
// Implements engine.IDGenerator.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
