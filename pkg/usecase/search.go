package usecase

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/domain/types"
	"github.com/secmon-lab/pythia/pkg/service/source"
	"github.com/secmon-lab/pythia/pkg/utils/logging"
)

const (
	academicSearchTimeout = 30 * time.Second
	generalSearchTimeout  = 15 * time.Second
)

// SearchExecutor fans out to all enabled source adapters concurrently and
// merges whatever settles within the timeout. A failed or timed-out adapter
// contributes an empty list; the overall call never fails.
type SearchExecutor struct {
	adapters map[types.SourceType]source.Adapter
}

func NewSearchExecutor(adapters ...source.Adapter) *SearchExecutor {
	m := make(map[types.SourceType]source.Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Kind()] = a
	}
	return &SearchExecutor{adapters: m}
}

// SearchOutput is the merged result of one fan-out.
type SearchOutput struct {
	Sources   []*model.SourceRecord
	PerSource map[types.SourceType]int
	Duration  time.Duration
}

// Execute runs one concurrent search round for the plan. It waits for all
// adapter calls to settle before returning; there is no streaming.
func (e *SearchExecutor) Execute(ctx context.Context, query, userID string, plan *model.ResearchPlan) *SearchOutput {
	logger := logging.From(ctx)
	started := time.Now()

	enabled := plan.Enabled()
	results := make([][]*model.SourceRecord, len(enabled))

	var eg errgroup.Group
	for i, kind := range enabled {
		adapter, ok := e.adapters[kind]
		if !ok {
			logger.Debug("no adapter registered for source", "source", kind)
			continue
		}

		eg.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, timeoutFor(kind))
			defer cancel()

			records, err := adapter.Search(callCtx, &source.Request{
				Query:      queryFor(kind, query, plan),
				UserID:     userID,
				MaxResults: plan.DepthLevel.PerSourceLimit(),
			})
			if err != nil {
				// Degrade, don't fail: the other adapters' results still count.
				logger.Warn("source adapter failed",
					"source", kind,
					"error", err.Error(),
				)
				return nil
			}
			results[i] = records
			return nil
		})
	}
	_ = eg.Wait()

	out := &SearchOutput{
		PerSource: make(map[types.SourceType]int),
	}
	for i, kind := range enabled {
		out.Sources = append(out.Sources, results[i]...)
		out.PerSource[kind] = len(results[i])
	}

	e.enrichPubMed(ctx, out.Sources)

	out.Duration = time.Since(started)
	return out
}

// enrichPubMed fetches abstracts for metadata-only PubMed records in a
// second batch. Subject to the same degrade-don't-fail rule as the primary
// calls.
func (e *SearchExecutor) enrichPubMed(ctx context.Context, records []*model.SourceRecord) {
	adapter, ok := e.adapters[types.SourceTypePubMed]
	if !ok {
		return
	}
	fetcher, ok := adapter.(source.AbstractFetcher)
	if !ok {
		return
	}

	byID := make(map[string]*model.SourceRecord)
	var ids []string
	for _, rec := range records {
		if rec.SourceType == types.SourceTypePubMed && rec.ExternalID != "" && rec.Content == "" {
			byID[rec.ExternalID] = rec
			ids = append(ids, rec.ExternalID)
		}
	}
	if len(ids) == 0 {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, academicSearchTimeout)
	defer cancel()

	abstracts, err := fetcher.FetchAbstracts(callCtx, ids)
	if err != nil {
		logging.From(ctx).Warn("PubMed abstract enrichment failed",
			"ids", len(ids),
			"error", err.Error(),
		)
		return
	}

	for id, text := range abstracts {
		rec, ok := byID[id]
		if !ok || text == "" {
			continue
		}
		// efetch responses lead with the real article title.
		if title, body, found := strings.Cut(text, "\n\n"); found && title != "" {
			rec.Title = title
			rec.Content = body
		} else {
			rec.Content = text
		}
	}
}

func timeoutFor(kind types.SourceType) time.Duration {
	if kind.IsIndexed() {
		return academicSearchTimeout
	}
	return generalSearchTimeout
}

func queryFor(kind types.SourceType, query string, plan *model.ResearchPlan) string {
	keywords := plan.SearchKeywords
	if kind.IsAcademic() {
		keywords = plan.AcademicKeywords
	}
	if len(keywords) == 0 {
		return query
	}
	return strings.Join(keywords, " ")
}
