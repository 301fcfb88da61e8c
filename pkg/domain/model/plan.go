package model

import (
	"strings"

	"github.com/secmon-lab/pythia/pkg/domain/types"
)

const (
	defaultMaxSources = 10
	maxSourceBudget   = 20
	maxPlanKeywords   = 8
)

// SourceToggles selects which adapters a research run queries. The academic
// toggle covers both arXiv and Semantic Scholar.
type SourceToggles struct {
	Local    bool `json:"local"`
	Academic bool `json:"academic"`
	PubMed   bool `json:"pubmed"`
	Web      bool `json:"web"`
}

// ResearchPlan is the search strategy for one query. Produced once by the
// planner and treated as immutable by the rest of the pipeline.
type ResearchPlan struct {
	DepthLevel       types.DepthLevel `json:"depthLevel"`
	SearchKeywords   []string         `json:"searchKeywords"`
	AcademicKeywords []string         `json:"academicKeywords"`
	Sources          SourceToggles    `json:"sourceToggles"`
	MaxSources       int              `json:"maxSourcesNeeded"`
	Reasoning        string           `json:"reasoning"`
	Fallback         bool             `json:"fallback,omitempty"`
}

// PlanHints carries query-independent context into the planner.
type PlanHints struct {
	Subject       string
	LocalDocCount int
	HasHistory    bool
}

// Normalize fills defaults for missing or out-of-range fields so that a plan
// parsed from model output is always usable.
func (p *ResearchPlan) Normalize(query string) {
	p.DepthLevel = p.DepthLevel.Normalize()

	if p.MaxSources <= 0 {
		p.MaxSources = defaultMaxSources
	}
	if p.MaxSources > maxSourceBudget {
		p.MaxSources = maxSourceBudget
	}

	if len(p.SearchKeywords) == 0 {
		p.SearchKeywords = ExtractKeywords(query)
	}
	if len(p.AcademicKeywords) == 0 {
		p.AcademicKeywords = p.SearchKeywords
	}

	if !p.Sources.Local && !p.Sources.Academic && !p.Sources.PubMed && !p.Sources.Web {
		p.Sources = defaultToggles(query)
	}
}

// Enabled returns the enabled source toggles in a fixed order.
func (p *ResearchPlan) Enabled() []types.SourceType {
	var out []types.SourceType
	if p.Sources.Local {
		out = append(out, types.SourceTypeLocal)
	}
	if p.Sources.Academic {
		out = append(out, types.SourceTypeArxiv, types.SourceTypeSemanticScholar)
	}
	if p.Sources.PubMed {
		out = append(out, types.SourceTypePubMed)
	}
	if p.Sources.Web {
		out = append(out, types.SourceTypeWeb)
	}
	return out
}

// FallbackPlan builds a deterministic plan from the raw query string alone.
// It is used whenever the planner's model call fails or returns unparsable
// output, so the pipeline can proceed regardless.
func FallbackPlan(query string) *ResearchPlan {
	plan := &ResearchPlan{
		DepthLevel:     types.DepthStandard,
		SearchKeywords: ExtractKeywords(query),
		Sources:        defaultToggles(query),
		MaxSources:     defaultMaxSources,
		Reasoning:      "fallback plan derived from query terms",
		Fallback:       true,
	}
	plan.AcademicKeywords = plan.SearchKeywords
	return plan
}

func defaultToggles(query string) SourceToggles {
	return SourceToggles{
		Local:    true,
		Academic: true,
		PubMed:   isBiomedicalQuery(query),
		Web:      true,
	}
}

var planStopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "about": true,
	"between": true, "can": true, "do": true, "does": true, "for": true,
	"from": true, "how": true, "in": true, "is": true, "of": true,
	"on": true, "or": true, "the": true, "to": true, "what": true,
	"when": true, "where": true, "which": true, "why": true, "with": true,
}

// ExtractKeywords picks the significant terms of a query, lowercased and
// stripped of punctuation, capped at maxPlanKeywords.
func ExtractKeywords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		term := strings.Trim(f, ".,;:!?\"'()[]")
		if len(term) < 3 || planStopwords[term] {
			continue
		}
		keywords = append(keywords, term)
		if len(keywords) >= maxPlanKeywords {
			break
		}
	}
	return keywords
}

var biomedicalTerms = []string{
	"disease", "clinical", "drug", "cancer", "protein", "gene", "genome",
	"therapy", "medical", "medicine", "patient", "vaccine", "virus",
	"bacteria", "neuro", "cardio", "diagnosis", "treatment", "symptom",
}

func isBiomedicalQuery(query string) bool {
	q := strings.ToLower(query)
	for _, term := range biomedicalTerms {
		if strings.Contains(q, term) {
			return true
		}
	}
	return false
}
