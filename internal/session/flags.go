// Package session holds process-wide, session-scoped signal flags.
package session

import "sync"

// NeedRefreshAppListKey is the well-known key set after a successful app
// creation so a subsequently rendered app list knows it must revalidate.
const NeedRefreshAppListKey = "need_refresh_app_list"

// FlagSet is a write-only signal store: producers set idempotent truthy
// values, an external reader consumes them. Not a two-way channel.
type FlagSet struct {
	mu     sync.Mutex
	values map[string]string
}

// NewFlagSet creates an empty flag set.
func NewFlagSet() *FlagSet {
	return &FlagSet{values: make(map[string]string)}
}

// Set writes a flag. Writes are idempotent; setting an already-set flag is
// a no-op as far as readers are concerned.
func (f *FlagSet) Set(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
}

// MarkAppListStale raises the app-list refresh signal.
func (f *FlagSet) MarkAppListStale() {
	f.Set(NeedRefreshAppListKey, "1")
}

// Peek reads a flag without consuming it.
func (f *FlagSet) Peek(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

// Consume reads and clears a flag in one step.
func (f *FlagSet) Consume(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	if ok {
		delete(f.values, key)
	}
	return v, ok
}
