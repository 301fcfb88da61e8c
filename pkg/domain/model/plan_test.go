package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/domain/types"
)

func TestFallbackPlanDeterministic(t *testing.T) {
	query := "impact of transformer architectures on machine translation"

	a := model.FallbackPlan(query)
	b := model.FallbackPlan(query)

	gt.Value(t, a).Equal(b)
	gt.Bool(t, a.Fallback).True()
	gt.Value(t, a.DepthLevel).Equal(types.DepthStandard)
	gt.Number(t, len(a.SearchKeywords)).GreaterOrEqual(1)
}

func TestFallbackPlanBiomedicalToggle(t *testing.T) {
	plan := model.FallbackPlan("latest cancer drug trials")
	gt.Bool(t, plan.Sources.PubMed).True()

	plan = model.FallbackPlan("history of jazz music")
	gt.Bool(t, plan.Sources.PubMed).False()
	gt.Bool(t, plan.Sources.Web).True()
	gt.Bool(t, plan.Sources.Academic).True()
}

func TestPlanNormalizeDefaults(t *testing.T) {
	plan := &model.ResearchPlan{
		DepthLevel: types.DepthLevel("weird"),
		MaxSources: 100,
	}
	plan.Normalize("quantum computing error correction")

	gt.Value(t, plan.DepthLevel).Equal(types.DepthStandard)
	gt.Value(t, plan.MaxSources).Equal(20)
	gt.Number(t, len(plan.SearchKeywords)).GreaterOrEqual(1)
	gt.Number(t, len(plan.AcademicKeywords)).GreaterOrEqual(1)
	// All toggles off is not a usable plan
	gt.Bool(t, plan.Sources.Web).True()
}

func TestPlanEnabledOrder(t *testing.T) {
	plan := &model.ResearchPlan{
		Sources: model.SourceToggles{Local: true, Academic: true, PubMed: true, Web: true},
	}

	gt.Array(t, plan.Enabled()).Equal([]types.SourceType{
		types.SourceTypeLocal,
		types.SourceTypeArxiv,
		types.SourceTypeSemanticScholar,
		types.SourceTypePubMed,
		types.SourceTypeWeb,
	})
}

func TestExtractKeywords(t *testing.T) {
	keywords := model.ExtractKeywords("What is the impact of CRISPR on gene therapy?")

	gt.Array(t, keywords).Has("impact")
	gt.Array(t, keywords).Has("crispr")
	gt.Array(t, keywords).Has("gene")
	// Stopwords and short terms are dropped
	for _, kw := range keywords {
		gt.Value(t, kw).NotEqual("the")
		gt.Value(t, kw).NotEqual("is")
		gt.Value(t, kw).NotEqual("of")
	}
}

func TestExtractKeywordsCap(t *testing.T) {
	keywords := model.ExtractKeywords(
		"alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo")
	gt.Array(t, keywords).Length(8)
}
