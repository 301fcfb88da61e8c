package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/pythia/pkg/cli/config"
	httpctrl "github.com/secmon-lab/pythia/pkg/controller/http"
	"github.com/secmon-lab/pythia/pkg/usecase"
	"github.com/secmon-lab/pythia/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var defaultUserID string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var searchCfg config.Search
	var archiveCfg config.Archive

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("PYTHIA_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "default-user-id",
			Usage:       "User ID applied to requests without one (single-user deployments)",
			Sources:     cli.EnvVars("PYTHIA_DEFAULT_USER_ID"),
			Destination: &defaultUserID,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, searchCfg.Flags()...)
	flags = append(flags, archiveCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llm, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Gemini client")
			}
			if llm == nil {
				logging.Default().Warn("Gemini not configured, running with deterministic fallbacks only")
			}

			archiveSvc, err := archiveCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize archive service")
			}
			if archiveSvc != nil {
				logging.Default().Info("Research result archival enabled")
			}

			adapters := searchCfg.Configure(repo, llm)

			uc := usecase.New(repo,
				usecase.WithLLM(llm),
				usecase.WithAdapters(adapters...),
				usecase.WithArchive(archiveSvc),
			)

			httpHandler := httpctrl.New(uc,
				httpctrl.WithDefaultUserID(defaultUserID),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Create shutdown context with timeout
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// Attempt graceful shutdown
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
