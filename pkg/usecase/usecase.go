package usecase

import (
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/pythia/pkg/domain/interfaces"
	"github.com/secmon-lab/pythia/pkg/service/archive"
	"github.com/secmon-lab/pythia/pkg/service/credibility"
	"github.com/secmon-lab/pythia/pkg/service/source"
)

// UseCases provides business logic operations
type UseCases struct {
	repo    interfaces.Repository
	llm     gollem.LLMClient
	archive archive.Service
	now     func() time.Time

	adapters []source.Adapter

	Research *ResearchUseCase
}

// Option configures UseCases
type Option func(*UseCases)

// WithLLM sets the LLM client used by the planner, synthesis, fact check,
// and local knowledge embedding.
func WithLLM(llm gollem.LLMClient) Option {
	return func(u *UseCases) {
		u.llm = llm
	}
}

// WithAdapters registers the source adapters available to search fan-out.
func WithAdapters(adapters ...source.Adapter) Option {
	return func(u *UseCases) {
		u.adapters = append(u.adapters, adapters...)
	}
}

// WithArchive enables asynchronous result archival.
func WithArchive(svc archive.Service) Option {
	return func(u *UseCases) {
		u.archive = svc
	}
}

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(u *UseCases) {
		u.now = now
	}
}

// New creates a new UseCases instance
func New(repo interfaces.Repository, opts ...Option) *UseCases {
	u := &UseCases{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}

	u.Research = &ResearchUseCase{
		repo:     repo,
		planner:  NewStrategyPlanner(u.llm),
		searcher: NewSearchExecutor(u.adapters...),
		ranker:   NewFilterRanker(credibility.Must()),
		synth:    NewSynthesisEngine(u.llm),
		checker:  NewFactChecker(u.llm),
		archive:  u.archive,
		now:      u.now,
	}

	return u
}

// Repository returns the underlying repository
func (u *UseCases) Repository() interfaces.Repository {
	return u.repo
}
