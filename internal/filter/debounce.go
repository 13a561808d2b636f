package filter

import (
	"sync"
	"time"
)

// DefaultQuietPeriod is how long input must pause before it is committed.
const DefaultQuietPeriod = 300 * time.Millisecond

// Debouncer commits only the last value set within a quiet period.
// Each Set restarts the timer. Stop discards the pending value.
type Debouncer struct {
	quiet  time.Duration
	commit func(string)

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	gen     uint64
	stopped bool
}

// NewDebouncer creates a Debouncer that calls commit with the latest value
// once no Set has happened for quiet. A non-positive quiet uses
// DefaultQuietPeriod.
func NewDebouncer(quiet time.Duration, commit func(string)) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{quiet: quiet, commit: commit}
}

// Set replaces the pending value and restarts the quiet period.
// Calls after Stop are ignored.
func (d *Debouncer) Set(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = value
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.quiet, func() { d.fire(gen) })
}

// Flush commits the pending value now, if there is one.
// It reports whether a value was committed.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.stopped || d.timer == nil {
		d.mu.Unlock()
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	value := d.pending
	d.mu.Unlock()

	d.commit(value)
	return true
}

// Pending reports whether a value is waiting for the quiet period to end.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels the pending commit without flushing it. Safe to call more
// than once.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = ""
}

// fire runs on the timer goroutine. A fire from a superseded Set or one
// racing with Stop sees a newer generation and does nothing.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	value := d.pending
	d.mu.Unlock()

	d.commit(value)
}
