package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/pythia/pkg/service/archive"
	"github.com/urfave/cli/v3"
)

// Archive holds CLI flags for research result archival
type Archive struct {
	bucket string
}

// Flags returns CLI flags for archive configuration
func (a *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "GCS bucket for archiving research results (archival disabled when empty)",
			Sources:     cli.EnvVars("PYTHIA_ARCHIVE_BUCKET"),
			Destination: &a.bucket,
		},
	}
}

// Configure creates the archive service, or returns nil when no bucket is
// configured.
func (a *Archive) Configure(ctx context.Context) (archive.Service, error) {
	if a.bucket == "" {
		return nil, nil
	}

	svc, err := archive.New(ctx, a.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize archive service")
	}

	return svc, nil
}
