package interfaces

import (
	"context"

	"github.com/secmon-lab/pythia/pkg/domain/model"
)

// Repository defines the interface for data persistence
type Repository interface {
	ResearchCache() ResearchCacheRepository
	Knowledge() KnowledgeRepository

	Close() error
}

// ResearchCacheRepository stores completed research results keyed by query
// hash. Entries are immutable once stored; reads must treat expired entries
// as absent.
type ResearchCacheRepository interface {
	// Get returns the non-expired entry for (queryHash, userID), or an error
	// wrapping the backend's ErrNotFound when none exists.
	Get(ctx context.Context, queryHash, userID string) (*model.CacheEntry, error)

	// Put stores an entry. Writes for the same key may race; last writer wins.
	Put(ctx context.Context, entry *model.CacheEntry) error
}

// KnowledgeRepository is the user-scoped local document index.
type KnowledgeRepository interface {
	Put(ctx context.Context, knowledge *model.Knowledge) (*model.Knowledge, error)

	// Search returns the documents of userID nearest to the query embedding.
	// It must never return another user's documents.
	Search(ctx context.Context, userID string, embedding []float32, limit int) ([]*model.Knowledge, error)

	CountByUser(ctx context.Context, userID string) (int, error)
}
