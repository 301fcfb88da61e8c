package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/domain/types"
	"github.com/secmon-lab/pythia/pkg/utils/logging"
)

// StrategyPlanner decides which sources to query, with which keywords, and
// at what depth. It never fails: on any model error it returns the
// deterministic fallback plan built from the query string.
type StrategyPlanner struct {
	llm gollem.LLMClient
}

func NewStrategyPlanner(llm gollem.LLMClient) *StrategyPlanner {
	return &StrategyPlanner{llm: llm}
}

const plannerSystemPrompt = `You are a research strategy planner. Given a user's research query,
decide which information sources to consult and with which keywords.

Available sources:
- local: the user's own document collection
- academic: arXiv and Semantic Scholar (computer science, physics, general research)
- pubmed: biomedical literature (enable only for medical/biological topics)
- web: general web search

Respond with a single JSON object only.`

// Plan produces the search strategy for a query. It always returns a valid
// plan and never raises to the caller.
func (p *StrategyPlanner) Plan(ctx context.Context, query string, hints model.PlanHints) *model.ResearchPlan {
	logger := logging.From(ctx)

	var resp planResponse
	if err := generateJSON(ctx, p.llm, plannerSystemPrompt, buildPlannerPrompt(query, hints), plannerSchema(), &resp); err != nil {
		logger.Warn("planner model call failed, using fallback plan",
			"error", err.Error(),
			"query", query,
		)
		return model.FallbackPlan(query)
	}

	plan := resp.toPlan()
	plan.Normalize(query)
	return plan
}

func buildPlannerPrompt(query string, hints model.PlanHints) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Research query: %s\n\n", query)
	if hints.Subject != "" {
		fmt.Fprintf(&sb, "Subject area: %s\n", hints.Subject)
	}
	fmt.Fprintf(&sb, "User has %d documents in their local collection.\n", hints.LocalDocCount)
	if hints.HasHistory {
		sb.WriteString("The user has researched related topics before.\n")
	}
	sb.WriteString("\nPlan the search strategy.")

	return sb.String()
}

func plannerSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "ResearchPlan",
		Description: "Search strategy for a research query",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"depth_level": {
				Type:        gollem.TypeString,
				Description: "How much effort the query warrants: quick, standard, or deep",
			},
			"search_keywords": {
				Type:        gollem.TypeArray,
				Description: "Keywords for web and local search",
				Items:       &gollem.Parameter{Type: gollem.TypeString},
			},
			"academic_keywords": {
				Type:        gollem.TypeArray,
				Description: "Keywords for academic index search",
				Items:       &gollem.Parameter{Type: gollem.TypeString},
			},
			"use_local": {
				Type:        gollem.TypeBoolean,
				Description: "Search the user's local document collection",
			},
			"use_academic": {
				Type:        gollem.TypeBoolean,
				Description: "Search arXiv and Semantic Scholar",
			},
			"use_pubmed": {
				Type:        gollem.TypeBoolean,
				Description: "Search PubMed (biomedical topics only)",
			},
			"use_web": {
				Type:        gollem.TypeBoolean,
				Description: "Search the general web",
			},
			"max_sources_needed": {
				Type:        gollem.TypeInteger,
				Description: "How many ranked sources the answer needs (1-20)",
			},
			"reasoning": {
				Type:        gollem.TypeString,
				Description: "One sentence explaining the strategy",
			},
		},
		Required: []string{"depth_level", "search_keywords", "use_local", "use_academic", "use_pubmed", "use_web"},
	}
}

// planResponse is the structured output from the LLM. Unknown or missing
// fields fall back to defaults in Normalize.
type planResponse struct {
	DepthLevel       string   `json:"depth_level"`
	SearchKeywords   []string `json:"search_keywords"`
	AcademicKeywords []string `json:"academic_keywords"`
	UseLocal         bool     `json:"use_local"`
	UseAcademic      bool     `json:"use_academic"`
	UsePubMed        bool     `json:"use_pubmed"`
	UseWeb           bool     `json:"use_web"`
	MaxSources       int      `json:"max_sources_needed"`
	Reasoning        string   `json:"reasoning"`
}

func (r *planResponse) toPlan() *model.ResearchPlan {
	return &model.ResearchPlan{
		DepthLevel:       types.DepthLevel(r.DepthLevel),
		SearchKeywords:   r.SearchKeywords,
		AcademicKeywords: r.AcademicKeywords,
		Sources: model.SourceToggles{
			Local:    r.UseLocal,
			Academic: r.UseAcademic,
			PubMed:   r.UsePubMed,
			Web:      r.UseWeb,
		},
		MaxSources: r.MaxSources,
		Reasoning:  r.Reasoning,
	}
}
