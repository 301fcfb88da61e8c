package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/pythia/pkg/domain/interfaces"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/domain/types"
	"github.com/secmon-lab/pythia/pkg/service/archive"
	"github.com/secmon-lab/pythia/pkg/utils/async"
	"github.com/secmon-lab/pythia/pkg/utils/errutil"
	"github.com/secmon-lab/pythia/pkg/utils/logging"
)

// ErrEmptyQuery is returned when a research request carries no query text.
var ErrEmptyQuery = goerr.New("query must not be empty")

// ResearchInput is one research request.
type ResearchInput struct {
	Query  string
	UserID string

	// DepthOverride forces the depth level, bypassing the planner's choice.
	DepthOverride types.DepthLevel

	SkipFactCheck bool
	SkipCache     bool
}

// ResearchUseCase orchestrates the full pipeline: plan, concurrent search,
// rank, synthesize, fact-check, cache. Every phase after validation degrades
// rather than fails; the only hard errors are an empty query and context
// cancellation.
type ResearchUseCase struct {
	repo     interfaces.Repository
	planner  *StrategyPlanner
	searcher *SearchExecutor
	ranker   *FilterRanker
	synth    *SynthesisEngine
	checker  *FactChecker
	archive  archive.Service
	now      func() time.Time
}

// Research runs one query end to end.
func (u *ResearchUseCase) Research(ctx context.Context, input *ResearchInput) (*model.ResearchResult, error) {
	if input == nil || strings.TrimSpace(input.Query) == "" {
		return nil, ErrEmptyQuery
	}

	logger := logging.From(ctx)
	startedAt := u.now()
	phases := make(map[string]int64)

	result := &model.ResearchResult{
		RunID:       uuid.NewString(),
		Query:       input.Query,
		UserID:      input.UserID,
		StartedAt:   startedAt,
		PhaseMillis: phases,
	}

	if !input.SkipCache {
		if cached := u.lookupCache(ctx, input); cached != nil {
			logger.Info("research cache hit",
				"run_id", result.RunID,
				"query", input.Query,
			)
			cached.RunID = result.RunID
			cached.StartedAt = startedAt
			cached.CompletedAt = u.now()
			return cached, nil
		}
	}

	// Planning
	phaseStart := u.now()
	plan := u.planner.Plan(ctx, input.Query, u.planHints(ctx, input.UserID))
	if input.DepthOverride.IsValid() {
		plan.DepthLevel = input.DepthOverride
	}
	phases[types.PhasePlanning.String()] = u.sinceMillis(phaseStart)
	result.Plan = plan

	logger.Info("research plan ready",
		"run_id", result.RunID,
		"depth", plan.DepthLevel,
		"sources", plan.Enabled(),
		"fallback", plan.Fallback,
	)

	// Searching
	phaseStart = u.now()
	searched := u.searcher.Execute(ctx, input.Query, input.UserID, plan)
	phases[types.PhaseSearching.String()] = u.sinceMillis(phaseStart)

	// Ranking
	phaseStart = u.now()
	ranked := u.ranker.Rank(input.Query, searched.Sources, plan.MaxSources)
	phases[types.PhaseRanking.String()] = u.sinceMillis(phaseStart)

	result.Sources = ranked
	result.Breakdown = model.BreakdownOf(ranked)

	if len(ranked) == 0 {
		logger.Warn("no usable sources found",
			"run_id", result.RunID,
			"raw_sources", len(searched.Sources),
		)
		result.NoResults = true
		result.Synthesis = fallbackSynthesis(input.Query, nil)
		result.CompletedAt = u.now()
		return result, nil
	}

	// Synthesizing. Quick runs get the narrative only; standard and deep
	// runs get the structured report, whose summary doubles as the narrative.
	phaseStart = u.now()
	if plan.DepthLevel == types.DepthQuick {
		result.Synthesis = u.synth.Synthesize(ctx, input.Query, ranked)
	} else {
		result.Report = u.synth.BuildReport(ctx, input.Query, ranked)
		result.Synthesis = result.Report.Summary
	}
	phases[types.PhaseSynthesizing.String()] = u.sinceMillis(phaseStart)

	// Fact checking
	if !input.SkipFactCheck {
		phaseStart = u.now()
		result.FactCheck = u.checker.Check(ctx, result.Synthesis, ranked)
		phases[types.PhaseFactChecking.String()] = u.sinceMillis(phaseStart)
	}

	result.CompletedAt = u.now()

	// Caching. A failed write only costs a repeat run, so the error is
	// logged and swallowed. Canceled requests skip the write: a partially
	// built result must not be served later.
	if ctx.Err() == nil {
		phaseStart = u.now()
		u.storeCache(ctx, input, result)
		phases[types.PhaseCaching.String()] = u.sinceMillis(phaseStart)
	}

	if u.archive != nil {
		async.Dispatch(ctx, func(ctx context.Context) error {
			return u.archive.Store(ctx, result)
		})
	}

	return result, nil
}

// lookupCache returns the cached result for the request, or nil on any miss,
// expiry, or backend error. Cache failures never block a fresh run.
func (u *ResearchUseCase) lookupCache(ctx context.Context, input *ResearchInput) *model.ResearchResult {
	hash := model.QueryHash(input.Query, input.UserID)
	entry, err := u.repo.ResearchCache().Get(ctx, hash, input.UserID)
	if err != nil {
		logging.From(ctx).Debug("research cache miss",
			"query_hash", hash,
			"error", err.Error(),
		)
		return nil
	}

	return &model.ResearchResult{
		Query:     entry.Query,
		UserID:    entry.UserID,
		Synthesis: entry.Synthesis,
		Sources:   entry.Sources,
		Report:    entry.Report,
		Plan:      entry.Plan,
		Breakdown: entry.Breakdown,
		FromCache: true,
	}
}

func (u *ResearchUseCase) storeCache(ctx context.Context, input *ResearchInput, result *model.ResearchResult) {
	trimmed := make([]*model.ScoredSource, len(result.Sources))
	for i, s := range result.Sources {
		trimmed[i] = s.Trimmed(model.CachedContentLimit)
	}

	now := u.now()
	entry := &model.CacheEntry{
		QueryHash: model.QueryHash(input.Query, input.UserID),
		UserID:    input.UserID,
		Query:     input.Query,
		Sources:   trimmed,
		Synthesis: result.Synthesis,
		Report:    result.Report,
		Plan:      result.Plan,
		Breakdown: result.Breakdown,
		CreatedAt: now,
		ExpiresAt: now.Add(model.CacheTTL(result.Sources)),
	}

	if err := u.repo.ResearchCache().Put(ctx, entry); err != nil {
		_ = errutil.Handle(ctx, err, "failed to store research cache entry")
	}
}

// planHints gathers query-independent context for the planner. Failures
// degrade to zero values.
func (u *ResearchUseCase) planHints(ctx context.Context, userID string) model.PlanHints {
	var hints model.PlanHints
	if userID == "" {
		return hints
	}

	count, err := u.repo.Knowledge().CountByUser(ctx, userID)
	if err != nil {
		logging.From(ctx).Debug("failed to count local documents",
			"user_id", userID,
			"error", err.Error(),
		)
		return hints
	}
	hints.LocalDocCount = count
	return hints
}

func (u *ResearchUseCase) sinceMillis(t time.Time) int64 {
	return u.now().Sub(t).Milliseconds()
}
