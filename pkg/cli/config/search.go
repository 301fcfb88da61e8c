package config

import (
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/pythia/pkg/domain/interfaces"
	"github.com/secmon-lab/pythia/pkg/service/source"
	"github.com/secmon-lab/pythia/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Search holds CLI flags for the online search adapters. Adapters without a
// required key are simply not registered; the planner's toggles for them
// then yield no results.
type Search struct {
	braveAPIKey    string
	semanticAPIKey string
	pubmedAPIKey   string
	disableArxiv   bool
	disablePubMed  bool
}

// Flags returns CLI flags for search adapter configuration
func (s *Search) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "brave-api-key",
			Usage:       "Brave Search API key (web search disabled when empty)",
			Category:    "Search",
			Sources:     cli.EnvVars("PYTHIA_BRAVE_API_KEY"),
			Destination: &s.braveAPIKey,
		},
		&cli.StringFlag{
			Name:        "semantic-scholar-api-key",
			Usage:       "Semantic Scholar API key (optional, raises rate limits)",
			Category:    "Search",
			Sources:     cli.EnvVars("PYTHIA_SEMANTIC_SCHOLAR_API_KEY"),
			Destination: &s.semanticAPIKey,
		},
		&cli.StringFlag{
			Name:        "pubmed-api-key",
			Usage:       "NCBI E-utilities API key (optional, raises rate limits)",
			Category:    "Search",
			Sources:     cli.EnvVars("PYTHIA_PUBMED_API_KEY"),
			Destination: &s.pubmedAPIKey,
		},
		&cli.BoolFlag{
			Name:        "disable-arxiv",
			Usage:       "Disable the arXiv adapter",
			Category:    "Search",
			Sources:     cli.EnvVars("PYTHIA_DISABLE_ARXIV"),
			Destination: &s.disableArxiv,
		},
		&cli.BoolFlag{
			Name:        "disable-pubmed",
			Usage:       "Disable the PubMed adapter",
			Category:    "Search",
			Sources:     cli.EnvVars("PYTHIA_DISABLE_PUBMED"),
			Destination: &s.disablePubMed,
		},
	}
}

// Configure builds the adapter set from the flags. The local adapter is
// always registered; it needs no external credentials.
func (s *Search) Configure(repo interfaces.Repository, llm gollem.LLMClient) []source.Adapter {
	logger := logging.Default()

	adapters := []source.Adapter{
		source.NewLocal(repo.Knowledge(), llm),
	}

	if !s.disableArxiv {
		adapters = append(adapters, source.NewArxiv())
	}
	adapters = append(adapters, source.NewSemanticScholar(s.semanticAPIKey))
	if !s.disablePubMed {
		adapters = append(adapters, source.NewPubMed(s.pubmedAPIKey))
	}

	if s.braveAPIKey != "" {
		adapters = append(adapters, source.NewWeb(s.braveAPIKey))
	} else {
		logger.Info("Brave API key not configured, web search disabled")
	}

	return adapters
}
