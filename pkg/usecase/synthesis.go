package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/utils/logging"
)

// excerptLimit bounds per-source content embedded in prompts.
const excerptLimit = 1000

// SynthesisEngine produces the cited narrative answer and the structured
// report from ranked sources. Citation indices in its output are 1-based
// references into the ranked list it was given; that ordering must be
// preserved end-to-end.
type SynthesisEngine struct {
	llm gollem.LLMClient
}

func NewSynthesisEngine(llm gollem.LLMClient) *SynthesisEngine {
	return &SynthesisEngine{llm: llm}
}

const synthesisSystemPrompt = `You are a research synthesis assistant. Write a thorough, neutral
answer to the user's query based only on the numbered source excerpts provided.
Cite sources inline as [n] where n is the excerpt number. Do not invent sources.
Respond with a single JSON object only.`

// Synthesize returns the narrative answer. On model failure it falls back to
// a deterministic listing of the top sources; it never fails the pipeline.
func (e *SynthesisEngine) Synthesize(ctx context.Context, query string, sources []*model.ScoredSource) string {
	var resp struct {
		Summary string `json:"summaryText"`
	}

	schema := &gollem.Parameter{
		Title: "Synthesis",
		Type:  gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"summaryText": {
				Type:        gollem.TypeString,
				Description: "Cited narrative answer to the query",
			},
		},
		Required: []string{"summaryText"},
	}

	if err := generateJSON(ctx, e.llm, synthesisSystemPrompt, buildSynthesisPrompt(query, sources), schema, &resp); err != nil || strings.TrimSpace(resp.Summary) == "" {
		if err != nil {
			logging.From(ctx).Warn("synthesis model call failed, using source listing",
				"error", err.Error(),
			)
		}
		return fallbackSynthesis(query, sources)
	}

	return resp.Summary
}

// BuildReport returns the structured report. The fallback report carries the
// deterministic source listing and no LLM-authored findings.
func (e *SynthesisEngine) BuildReport(ctx context.Context, query string, sources []*model.ScoredSource) *model.SynthesisResult {
	var resp model.SynthesisResult

	if err := generateJSON(ctx, e.llm, synthesisSystemPrompt, buildReportPrompt(query, sources), reportSchema(), &resp); err != nil {
		logging.From(ctx).Warn("report model call failed, using fallback report",
			"error", err.Error(),
		)
		return &model.SynthesisResult{
			Summary:  fallbackSynthesis(query, sources),
			Fallback: true,
		}
	}

	resp.ClampCitations(len(sources))
	return &resp
}

func buildSynthesisPrompt(query string, sources []*model.ScoredSource) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n\n", query)
	sb.WriteString(numberedExcerpts(sources))
	sb.WriteString("\nWrite the cited answer.")
	return sb.String()
}

func buildReportPrompt(query string, sources []*model.ScoredSource) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n\n", query)
	sb.WriteString(numberedExcerpts(sources))
	sb.WriteString("\nProduce the structured report: summary, key findings with supporting excerpt numbers and confidence, themes, consensus areas, and contradictions between sources.")
	return sb.String()
}

// numberedExcerpts renders the bounded-size excerpt block. The numbering is
// what citation indices refer to.
func numberedExcerpts(sources []*model.ScoredSource) string {
	var sb strings.Builder
	sb.WriteString("Sources:\n\n")
	for i, src := range sources {
		fmt.Fprintf(&sb, "[%d] %s (%s", i+1, src.Title, src.SourceType)
		if len(src.Authors) > 0 {
			fmt.Fprintf(&sb, "; %s", strings.Join(src.Authors, ", "))
		}
		sb.WriteString(")\n")

		content := model.Truncate(src.Content, excerptLimit)
		if content != "" {
			sb.WriteString(content)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// fallbackSynthesis lists the top sources deterministically when the model
// is unavailable.
func fallbackSynthesis(query string, sources []*model.ScoredSource) string {
	if len(sources) == 0 {
		return fmt.Sprintf("No sources could be synthesized for %q.", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Synthesis is unavailable. The most relevant sources for %q are:\n\n", query)
	for i, src := range sources {
		fmt.Fprintf(&sb, "[%d] %s (%s) %s\n", i+1, src.Title, src.CredibilityTier, src.URL)
	}
	return sb.String()
}

func reportSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "ResearchReport",
		Description: "Structured report built from the numbered source excerpts",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"summaryText": {
				Type:        gollem.TypeString,
				Description: "Cited narrative answer to the query",
			},
			"keyFindings": {
				Type:        gollem.TypeArray,
				Description: "Discrete findings with supporting excerpt numbers",
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"finding": {
							Type: gollem.TypeString,
						},
						"supportingSourceIndices": {
							Type:  gollem.TypeArray,
							Items: &gollem.Parameter{Type: gollem.TypeInteger},
						},
						"confidence": {
							Type:        gollem.TypeNumber,
							Description: "Confidence in [0,1]",
						},
					},
					Required: []string{"finding", "supportingSourceIndices"},
				},
			},
			"themes": {
				Type:  gollem.TypeArray,
				Items: &gollem.Parameter{Type: gollem.TypeString},
			},
			"consensusAreas": {
				Type:  gollem.TypeArray,
				Items: &gollem.Parameter{Type: gollem.TypeString},
			},
			"contradictions": {
				Type:  gollem.TypeArray,
				Items: &gollem.Parameter{Type: gollem.TypeString},
			},
		},
		Required: []string{"summaryText", "keyFindings"},
	}
}
