package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/domain/types"
	"github.com/secmon-lab/pythia/pkg/repository/memory"
	"github.com/secmon-lab/pythia/pkg/usecase"
)

const plannerWebOnly = `{
  "depth_level": "standard",
  "search_keywords": ["geothermal", "energy"],
  "use_local": false,
  "use_academic": false,
  "use_pubmed": false,
  "use_web": true,
  "max_sources_needed": 5
}`

func webRecord(title string) *model.SourceRecord {
	return &model.SourceRecord{
		Title:      title,
		URL:        "https://example.com/" + title,
		Content:    strings.Repeat("geothermal energy plant output analysis ", 5),
		SourceType: types.SourceTypeWeb,
	}
}

func TestResearchFullPipeline(t *testing.T) {
	repo := memory.New()
	llm := &mockLLMClient{}
	llm.queue(
		plannerWebOnly,
		`{"summaryText": "Geothermal output is growing [1].", "keyFindings": [{"finding": "growth", "supportingSourceIndices": [1], "confidence": 0.8}]}`,
		`{"claims": [{"text": "Geothermal output is growing.", "citedIndices": [1]}]}`,
		`{"checks": [{"verdict": "verified", "confidence": 0.9}], "overallReliability": 0.9, "summary": "solid"}`,
	)

	web := &fakeAdapter{kind: types.SourceTypeWeb, records: []*model.SourceRecord{
		webRecord("report-a"), webRecord("report-b"),
	}}

	uc := usecase.New(repo,
		usecase.WithLLM(llm),
		usecase.WithAdapters(web),
	)

	result, err := uc.Research.Research(context.Background(), &usecase.ResearchInput{
		Query:  "geothermal energy output",
		UserID: "user-1",
	})
	gt.NoError(t, err).Required()

	gt.Value(t, result.Synthesis).Equal("Geothermal output is growing [1].")
	gt.String(t, result.RunID).NotEqual("")
	gt.Bool(t, result.FromCache).False()
	gt.Bool(t, result.NoResults).False()
	gt.Array(t, result.Sources).Length(2)
	gt.Value(t, result.Breakdown.OnlineCount).Equal(2)
	gt.Value(t, result.Report.KeyFindings[0].SupportingSources).Equal([]int{1})
	gt.Value(t, result.FactCheck.OverallReliability).Equal(0.9)
	gt.Number(t, len(result.PhaseMillis)).GreaterOrEqual(4)

	// Second identical request is served from cache without model calls
	cached, err := uc.Research.Research(context.Background(), &usecase.ResearchInput{
		Query:  "geothermal energy output",
		UserID: "user-1",
	})
	gt.NoError(t, err).Required()
	gt.Bool(t, cached.FromCache).True()
	gt.Value(t, cached.Synthesis).Equal(result.Synthesis)
	gt.Value(t, cached.FactCheck).Equal(nil)
	gt.Value(t, llm.sessionCount).Equal(4)
}

func TestResearchEmptyQuery(t *testing.T) {
	uc := usecase.New(memory.New())

	_, err := uc.Research.Research(context.Background(), &usecase.ResearchInput{UserID: "user-1"})
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrEmptyQuery)).True()

	// Whitespace-only queries are empty too
	_, err = uc.Research.Research(context.Background(), &usecase.ResearchInput{
		Query:  "   \t\n",
		UserID: "user-1",
	})
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, usecase.ErrEmptyQuery)).True()
}

func TestResearchCacheIsUserScoped(t *testing.T) {
	repo := memory.New()
	llm := &mockLLMClient{}
	llm.queue(
		plannerWebOnly,
		`{"summaryText": "Answer for user one [1].", "keyFindings": []}`,
		`{"claims": []}`,
	)
	web := &fakeAdapter{kind: types.SourceTypeWeb, records: []*model.SourceRecord{webRecord("doc")}}

	uc := usecase.New(repo, usecase.WithLLM(llm), usecase.WithAdapters(web))

	first, err := uc.Research.Research(context.Background(), &usecase.ResearchInput{
		Query:  "shared question",
		UserID: "user-1",
	})
	gt.NoError(t, err).Required()
	gt.Bool(t, first.FromCache).False()

	// A different user with the same query gets a fresh run, not user-1's entry
	second, err := uc.Research.Research(context.Background(), &usecase.ResearchInput{
		Query:  "shared question",
		UserID: "user-2",
	})
	gt.NoError(t, err).Required()
	gt.Bool(t, second.FromCache).False()
}

func TestResearchNoResults(t *testing.T) {
	repo := memory.New()
	llm := &mockLLMClient{}
	llm.queue(plannerWebOnly)

	empty := &fakeAdapter{kind: types.SourceTypeWeb}
	uc := usecase.New(repo, usecase.WithLLM(llm), usecase.WithAdapters(empty))

	result, err := uc.Research.Research(context.Background(), &usecase.ResearchInput{
		Query:  "query with no matches anywhere",
		UserID: "user-1",
	})
	gt.NoError(t, err).Required()

	gt.Bool(t, result.NoResults).True()
	gt.Array(t, result.Sources).Length(0)
	gt.String(t, result.Synthesis).NotEqual("")
	gt.Value(t, result.FactCheck).Equal(nil)
}

func TestResearchQuickDepthSkipsReport(t *testing.T) {
	repo := memory.New()
	llm := &mockLLMClient{}
	llm.queue(
		plannerWebOnly,
		`{"summaryText": "Quick answer [1]."}`,
		`{"claims": []}`,
	)
	web := &fakeAdapter{kind: types.SourceTypeWeb, records: []*model.SourceRecord{webRecord("doc")}}

	uc := usecase.New(repo, usecase.WithLLM(llm), usecase.WithAdapters(web))

	result, err := uc.Research.Research(context.Background(), &usecase.ResearchInput{
		Query:         "quick question",
		UserID:        "user-1",
		DepthOverride: types.DepthQuick,
	})
	gt.NoError(t, err).Required()

	gt.Value(t, result.Synthesis).Equal("Quick answer [1].")
	gt.Value(t, result.Report).Equal(nil)
}

func TestResearchSkipOptions(t *testing.T) {
	repo := memory.New()
	llm := &mockLLMClient{}
	llm.queue(
		plannerWebOnly,
		`{"summaryText": "First run [1].", "keyFindings": []}`,
		plannerWebOnly,
		`{"summaryText": "Second run [1].", "keyFindings": []}`,
	)
	web := &fakeAdapter{kind: types.SourceTypeWeb, records: []*model.SourceRecord{webRecord("doc")}}

	uc := usecase.New(repo, usecase.WithLLM(llm), usecase.WithAdapters(web))

	input := &usecase.ResearchInput{
		Query:         "repeatable question",
		UserID:        "user-1",
		SkipFactCheck: true,
		SkipCache:     true,
	}

	first, err := uc.Research.Research(context.Background(), input)
	gt.NoError(t, err).Required()
	gt.Value(t, first.FactCheck).Equal(nil)

	// SkipCache forces a fresh run even though an entry exists
	second, err := uc.Research.Research(context.Background(), input)
	gt.NoError(t, err).Required()
	gt.Bool(t, second.FromCache).False()
	gt.Value(t, second.Synthesis).Equal("Second run [1].")
}

func TestResearchCachedSourcesAreTrimmed(t *testing.T) {
	repo := memory.New()
	llm := &mockLLMClient{}
	llm.queue(
		plannerWebOnly,
		`{"summaryText": "Answer [1].", "keyFindings": []}`,
		`{"claims": []}`,
	)

	long := webRecord("long-doc")
	long.Content = strings.Repeat("x", model.CachedContentLimit*3)
	web := &fakeAdapter{kind: types.SourceTypeWeb, records: []*model.SourceRecord{long}}

	uc := usecase.New(repo, usecase.WithLLM(llm), usecase.WithAdapters(web))

	_, err := uc.Research.Research(context.Background(), &usecase.ResearchInput{
		Query:  "trim check",
		UserID: "user-1",
	})
	gt.NoError(t, err).Required()

	hash := model.QueryHash("trim check", "user-1")
	entry, err := repo.ResearchCache().Get(context.Background(), hash, "user-1")
	gt.NoError(t, err).Required()
	gt.Array(t, entry.Sources).Length(1).Required()
	gt.Number(t, len(entry.Sources[0].Content)).LessOrEqual(model.CachedContentLimit)
}
