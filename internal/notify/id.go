// Package notify generates timed random article notifications.
package notify

import (
	"sync"
	"time"
)

// IDGenerator issues time-derived notification ids that never repeat.
// An id is the current Unix time in milliseconds, bumped past the previous
// id when the clock has not advanced (or went backwards).
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator creates a generator backed by the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns a new id, strictly greater than every id returned before.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
