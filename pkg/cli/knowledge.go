package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/pythia/pkg/cli/config"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/usecase"
	"github.com/secmon-lab/pythia/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdKnowledge() *cli.Command {
	var userID string
	var subject string
	var repoCfg config.Repository
	var geminiCfg config.Gemini

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "User ID owning the documents",
			Value:       "local",
			Sources:     cli.EnvVars("PYTHIA_USER_ID"),
			Destination: &userID,
		},
		&cli.StringFlag{
			Name:        "subject",
			Usage:       "Subject label attached to the documents",
			Destination: &subject,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:      "knowledge",
		Aliases:   []string{"k"},
		Usage:     "Add text files to the local knowledge index",
		ArgsUsage: "<file>...",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return goerr.New("at least one file argument is required")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer repo.Close() //nolint:errcheck // process exits after this

			llm, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Gemini client")
			}
			if llm == nil {
				return goerr.New("gemini-project is required: knowledge ingestion needs embeddings")
			}

			uc := usecase.New(repo, usecase.WithLLM(llm))

			for _, path := range paths {
				data, err := os.ReadFile(path)
				if err != nil {
					return goerr.Wrap(err, "failed to read file", goerr.V("path", path))
				}

				name := filepath.Base(path)
				stored, err := uc.AddKnowledge(ctx, &model.Knowledge{
					UserID:  userID,
					Title:   strings.TrimSuffix(name, filepath.Ext(name)),
					Content: string(data),
					Subject: subject,
				})
				if err != nil {
					return goerr.Wrap(err, "failed to ingest document", goerr.V("path", path))
				}

				logging.Default().Info("Knowledge document stored",
					"id", stored.ID,
					"title", stored.Title,
					"bytes", len(data),
				)
			}

			return nil
		},
	}
}
