package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/pythia/pkg/domain/model"
)

type researchCacheRepository struct {
	mu      sync.RWMutex
	entries map[string]*model.CacheEntry
}

func newResearchCacheRepository() *researchCacheRepository {
	return &researchCacheRepository{
		entries: make(map[string]*model.CacheEntry),
	}
}

// copyCacheEntry creates a deep copy of a cache entry
func copyCacheEntry(e *model.CacheEntry) *model.CacheEntry {
	copied := *e

	if e.Sources != nil {
		copied.Sources = make([]*model.ScoredSource, len(e.Sources))
		for i, s := range e.Sources {
			sc := *s
			if s.Authors != nil {
				sc.Authors = append([]string(nil), s.Authors...)
			}
			copied.Sources[i] = &sc
		}
	}
	if e.Report != nil {
		report := *e.Report
		copied.Report = &report
	}
	if e.Plan != nil {
		plan := *e.Plan
		copied.Plan = &plan
	}

	return &copied
}

func (r *researchCacheRepository) Get(ctx context.Context, queryHash, userID string) (*model.CacheEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[queryHash]
	if !exists || entry.UserID != userID {
		return nil, goerr.Wrap(ErrNotFound, "cache entry not found", goerr.V("queryHash", queryHash))
	}
	if entry.Expired(time.Now()) {
		return nil, goerr.Wrap(ErrNotFound, "cache entry expired", goerr.V("queryHash", queryHash))
	}

	return copyCacheEntry(entry), nil
}

func (r *researchCacheRepository) Put(ctx context.Context, entry *model.CacheEntry) error {
	if entry.QueryHash == "" {
		return goerr.New("query hash is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[entry.QueryHash] = copyCacheEntry(entry)
	return nil
}
