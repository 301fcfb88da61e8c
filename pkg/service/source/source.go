package source

import (
	"context"
	"net/http"
	"time"

	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/domain/types"
)

// defaultUserAgent identifies the service to upstream APIs.
const defaultUserAgent = "pythia-research/1.0"

// Request carries one adapter query. UserID is only meaningful for the
// local adapter, which must scope its results to that user.
type Request struct {
	Query      string
	UserID     string
	MaxResults int
}

// Adapter is a single information source. Each implementation performs one
// blocking network call; failures are isolated per adapter by the executor.
type Adapter interface {
	Kind() types.SourceType
	Search(ctx context.Context, req *Request) ([]*model.SourceRecord, error)
}

// AbstractFetcher is implemented by adapters that return metadata-only
// records and support fetching full abstracts in a second batch.
type AbstractFetcher interface {
	FetchAbstracts(ctx context.Context, ids []string) (map[string]string, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
