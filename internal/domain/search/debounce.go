// Package search decouples raw keystroke input from filter recomputation.
package search

import (
	"sync"
	"time"
)

// DefaultQuietPeriod is the delay between the last keystroke and the commit
// of the search term.
const DefaultQuietPeriod = 500 * time.Millisecond

// Debouncer tracks a raw search term and commits it after a quiet period.
// The raw term updates immediately on every Set so the input box stays
// responsive; only the committed term should feed filtering. Any Set before
// the quiet period elapses cancels the pending commit and restarts the
// timer.
type Debouncer struct {
	mu        sync.Mutex
	quiet     time.Duration
	timer     *time.Timer
	raw       string
	committed string
	stopped   bool
	onCommit  func(string)
}

// NewDebouncer creates a debouncer with the given quiet period. onCommit, if
// non-nil, runs after each commit with the committed value; it must not call
// back into the debouncer.
func NewDebouncer(quiet time.Duration, onCommit func(string)) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{quiet: quiet, onCommit: onCommit}
}

// Set records a keystroke and schedules the commit.
func (d *Debouncer) Set(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.raw = term
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.commit)
}

// Clear empties both the raw and the committed term immediately, without
// waiting out the quiet period. A pending commit is cancelled so a stale
// non-empty term cannot land after an explicit clear.
func (d *Debouncer) Clear() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.raw = ""
	d.committed = ""
	hook := d.onCommit
	d.mu.Unlock()

	if hook != nil {
		hook("")
	}
}

// Term returns the raw (uncommitted) term.
func (d *Debouncer) Term() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.raw
}

// Committed returns the committed term.
func (d *Debouncer) Committed() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.committed
}

// Stop cancels any pending commit and disables the debouncer. It must be
// called on teardown so the timer cannot fire into a destroyed context.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) commit() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.committed = d.raw
	value := d.committed
	hook := d.onCommit
	d.mu.Unlock()

	if hook != nil {
		hook(value)
	}
}
