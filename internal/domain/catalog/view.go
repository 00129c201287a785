package catalog

import (
	"sync"
	"time"

	"github.com/lumenapps/explore/internal/domain/filter"
	"github.com/lumenapps/explore/internal/domain/search"
	"github.com/lumenapps/explore/internal/shared/types"
)

// viewKey identifies one derived list. Apps are recomputed only when the
// key changes, never on unrelated reads.
type viewKey struct {
	version  uint64
	category string
	typ      types.AppType
	term     string
}

// View layers one user's filter state on top of a Store. Defaults on
// creation: all categories, no type filter, empty search.
type View struct {
	mu       sync.Mutex
	store    *Store
	sentinel string
	category string
	typ      types.AppType
	deb      *search.Debouncer

	cacheKey  viewKey
	cacheApps []types.TemplateApp
	cached    bool
}

// NewView creates a view with default filter state. quiet is the search
// debounce quiet period; zero selects the package default.
func NewView(store *Store, quiet time.Duration) *View {
	return &View{
		store:    store,
		sentinel: Sentinel(),
		category: Sentinel(),
		deb:      search.NewDebouncer(quiet, nil),
	}
}

// SetCategory selects a category, or the sentinel for all categories.
func (v *View) SetCategory(category string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.category = category
}

// SetType selects a type bucket; types.TypeAll disables the type predicate.
func (v *View) SetType(typ types.AppType) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.typ = typ
}

// SetSearchTerm records a keystroke. The visible list only changes once the
// debouncer commits the term.
func (v *View) SetSearchTerm(term string) {
	v.deb.Set(term)
}

// ClearSearch empties the search immediately, bypassing the quiet period.
func (v *View) ClearSearch() {
	v.deb.Clear()
}

// FilterState reports the current selection.
func (v *View) FilterState() types.FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return types.FilterState{
		Category:            v.category,
		Type:                v.typ,
		SearchTerm:          v.deb.Term(),
		DebouncedSearchTerm: v.deb.Committed(),
	}
}

// Loading reports whether the catalog is still on its pre-load snapshot.
func (v *View) Loading() bool {
	return v.store.Snapshot().Loading()
}

// Apps returns the filtered, search-narrowed list. Category and type always
// apply to the full catalog; search narrows only that result, so a visible
// app satisfies all active filters simultaneously. The result is memoized
// per (snapshot version, category, type, committed term).
func (v *View) Apps() []types.TemplateApp {
	snap := v.store.Snapshot()

	v.mu.Lock()
	defer v.mu.Unlock()

	key := viewKey{
		version:  snap.Version,
		category: v.category,
		typ:      v.typ,
		term:     v.deb.Committed(),
	}
	if v.cached && key == v.cacheKey {
		return v.cacheApps
	}

	apps := filter.Apps(snap.Apps, key.category, key.typ, v.sentinel)
	apps = filter.Search(apps, key.term)

	v.cacheKey = key
	v.cacheApps = apps
	v.cached = true
	return apps
}

// Close stops the debounce timer. Must be called on teardown.
func (v *View) Close() {
	v.deb.Stop()
}
