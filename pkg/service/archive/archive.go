package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/pythia/pkg/domain/model"
)

// Service archives completed research results for later audit. Archival is
// fire-and-forget: callers dispatch it asynchronously and only log failures.
type Service interface {
	Store(ctx context.Context, result *model.ResearchResult) error
}

type gcsArchive struct {
	client *storage.Client
	bucket string
}

// New creates a GCS-backed archive writing to the given bucket.
func New(ctx context.Context, bucket string) (Service, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &gcsArchive{
		client: client,
		bucket: bucket,
	}, nil
}

func (a *gcsArchive) Store(ctx context.Context, result *model.ResearchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal research result")
	}

	name := fmt.Sprintf("research/%s/%s.json", result.UserID, result.RunID)
	w := a.client.Bucket(a.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write archive object", goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize archive object", goerr.V("object", name))
	}

	return nil
}
