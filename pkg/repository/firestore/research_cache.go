package firestore

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// cacheDoc is the Firestore document representation of model.CacheEntry.
// Sources, report and plan are stored as JSON blobs: they are opaque to
// queries and their shapes evolve with the pipeline.
type cacheDoc struct {
	QueryHash string    `firestore:"QueryHash"`
	UserID    string    `firestore:"UserID"`
	Query     string    `firestore:"Query"`
	Payload   []byte    `firestore:"Payload"`
	CreatedAt time.Time `firestore:"CreatedAt"`
	ExpiresAt time.Time `firestore:"ExpiresAt"`
}

func toCacheDoc(e *model.CacheEntry) (*cacheDoc, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal cache entry")
	}
	return &cacheDoc{
		QueryHash: e.QueryHash,
		UserID:    e.UserID,
		Query:     e.Query,
		Payload:   payload,
		CreatedAt: e.CreatedAt,
		ExpiresAt: e.ExpiresAt,
	}, nil
}

func fromCacheDoc(d *cacheDoc) (*model.CacheEntry, error) {
	var entry model.CacheEntry
	if err := json.Unmarshal(d.Payload, &entry); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal cache entry")
	}
	return &entry, nil
}

type researchCacheRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newResearchCacheRepository(client *firestore.Client) *researchCacheRepository {
	return &researchCacheRepository{
		client: client,
	}
}

func (r *researchCacheRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "research_cache")
}

func (r *researchCacheRepository) Get(ctx context.Context, queryHash, userID string) (*model.CacheEntry, error) {
	doc, err := r.collection().Doc(queryHash).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "cache entry not found", goerr.V("queryHash", queryHash))
		}
		return nil, goerr.Wrap(err, "failed to get cache entry", goerr.V("queryHash", queryHash))
	}

	var d cacheDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal cache document", goerr.V("queryHash", queryHash))
	}

	// The hash embeds the user ID, but verify anyway: entries must never
	// cross user boundaries.
	if d.UserID != userID {
		return nil, goerr.Wrap(ErrNotFound, "cache entry not found", goerr.V("queryHash", queryHash))
	}
	if time.Now().After(d.ExpiresAt) {
		return nil, goerr.Wrap(ErrNotFound, "cache entry expired", goerr.V("queryHash", queryHash))
	}

	return fromCacheDoc(&d)
}

func (r *researchCacheRepository) Put(ctx context.Context, entry *model.CacheEntry) error {
	if entry.QueryHash == "" {
		return goerr.New("query hash is required")
	}

	d, err := toCacheDoc(entry)
	if err != nil {
		return err
	}

	if _, err := r.collection().Doc(entry.QueryHash).Set(ctx, d); err != nil {
		return goerr.Wrap(err, "failed to store cache entry", goerr.V("queryHash", entry.QueryHash))
	}
	return nil
}
