package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lumenapps/explore/internal/logging"
	"github.com/lumenapps/explore/internal/shared/types"
	"go.uber.org/zap"
)

// ListFetcher retrieves the catalog payload from the upstream API.
type ListFetcher interface {
	FetchAppList(ctx context.Context) (*types.AppList, error)
}

// Snapshot is an immutable view of the catalog. Consumers must treat an
// empty category set as "still loading", not as an empty-results state.
type Snapshot struct {
	Categories []string
	Apps       []types.TemplateApp
	Version    uint64
}

// Loading reports whether the catalog has not completed a first load.
func (s Snapshot) Loading() bool {
	return len(s.Categories) == 0
}

// Store holds the catalog snapshot and revalidates it on demand.
type Store struct {
	mu       sync.RWMutex
	fetcher  ListFetcher
	snap     Snapshot
	version  uint64
	log      *logging.Logger
	observer func(result string, apps int)
}

// NewStore creates a store exposing an empty-but-valid snapshot until the
// first successful Load.
func NewStore(fetcher ListFetcher, log *logging.Logger) *Store {
	if log == nil {
		log = logging.NewDefault()
	}
	return &Store{
		fetcher: fetcher,
		snap:    Snapshot{Categories: []string{}, Apps: []types.TemplateApp{}},
		log:     log.Named("catalog"),
	}
}

// SetObserver installs a hook invoked after every Load attempt with the
// result ("ok" or "error") and the snapshot's app count. Used for metrics.
func (s *Store) SetObserver(fn func(result string, apps int)) {
	s.observer = fn
}

// Load fetches categories and recommended apps together and replaces the
// snapshot atomically. Apps are sorted ascending by position with a stable
// sort, so fetch order breaks ties. Fetch failures propagate to the caller
// and leave the last-known snapshot in place; the store never retries.
func (s *Store) Load(ctx context.Context) error {
	list, err := s.fetcher.FetchAppList(ctx)
	if err != nil {
		if s.observer != nil {
			s.observer("error", len(s.Snapshot().Apps))
		}
		return fmt.Errorf("load catalog: %w", err)
	}

	apps := make([]types.TemplateApp, len(list.RecommendedApps))
	copy(apps, list.RecommendedApps)
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].Position < apps[j].Position
	})

	categories := make([]string, len(list.Categories))
	copy(categories, list.Categories)

	s.mu.Lock()
	s.version++
	version := s.version
	s.snap = Snapshot{Categories: categories, Apps: apps, Version: version}
	s.mu.Unlock()

	if s.observer != nil {
		s.observer("ok", len(apps))
	}
	s.log.Info("catalog loaded",
		zap.Int("categories", len(categories)),
		zap.Int("apps", len(apps)),
		zap.Uint64("version", version),
	)
	return nil
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
