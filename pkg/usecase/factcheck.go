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

// FactChecker verifies a synthesized answer against the sources it cites.
// It runs in two model calls: claim extraction from the synthesis text, then
// cross-referencing each claim against the numbered source excerpts. Both
// phases degrade without failing the pipeline, and the synthesis text is
// never modified.
type FactChecker struct {
	llm gollem.LLMClient
}

func NewFactChecker(llm gollem.LLMClient) *FactChecker {
	return &FactChecker{llm: llm}
}

const extractSystemPrompt = `You are a fact-check assistant. Extract the discrete, independently
verifiable factual claims from the research answer below. Skip opinions,
hedged statements, and meta-commentary. Respond with a single JSON object only.`

const crossRefSystemPrompt = `You are a fact-check assistant. For each claim, decide whether the
numbered source excerpts support it. Verdicts:
- verified: directly supported by at least one source
- partially_supported: supported in part, or with weaker wording than claimed
- unsupported: no source supports it
- exaggerated: a source supports a weaker version of the claim
- unverifiable: the sources do not address it
Respond with a single JSON object only.`

// Check fact-checks synthesis against sources. It always returns a
// well-formed result; degraded phases are marked by a reliability of 0.5
// and an explanatory summary.
func (c *FactChecker) Check(ctx context.Context, synthesis string, sources []*model.ScoredSource) *model.FactCheckResult {
	logger := logging.From(ctx)

	claims, err := c.extractClaims(ctx, synthesis)
	if err != nil {
		logger.Warn("claim extraction failed, skipping fact check",
			"error", err.Error(),
		)
		return &model.FactCheckResult{
			OverallReliability: 0.5,
			Summary:            "Fact check unavailable: claim extraction failed.",
		}
	}

	if len(claims) == 0 {
		return &model.FactCheckResult{
			OverallReliability: 1.0,
			Summary:            "No verifiable factual claims found; nothing to check.",
		}
	}

	result, err := c.crossReferenceClaims(ctx, claims, sources)
	if err != nil {
		logger.Warn("claim cross-reference failed, marking claims unverifiable",
			"claims", len(claims),
			"error", err.Error(),
		)
		checks := make([]model.ClaimCheck, len(claims))
		for i, claim := range claims {
			checks[i] = model.ClaimCheck{
				Claim:   claim,
				Verdict: types.VerdictUnverifiable,
			}
		}
		out := &model.FactCheckResult{
			Claims:             checks,
			OverallReliability: 0.5,
			Summary:            "Fact check incomplete: claims could not be cross-referenced.",
		}
		out.Recount()
		return out
	}

	return result
}

func (c *FactChecker) extractClaims(ctx context.Context, synthesis string) ([]model.Claim, error) {
	var resp struct {
		Claims []model.Claim `json:"claims"`
	}

	schema := &gollem.Parameter{
		Title: "ExtractedClaims",
		Type:  gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"claims": {
				Type: gollem.TypeArray,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"text": {
							Type:        gollem.TypeString,
							Description: "The claim, as a standalone statement",
						},
						"citedIndices": {
							Type:        gollem.TypeArray,
							Description: "Source numbers cited for this claim, if any",
							Items:       &gollem.Parameter{Type: gollem.TypeInteger},
						},
						"category": {
							Type:        gollem.TypeString,
							Description: "Short label such as statistic, causal, definitional",
						},
					},
					Required: []string{"text"},
				},
			},
		},
		Required: []string{"claims"},
	}

	prompt := fmt.Sprintf("Research answer:\n\n%s\n\nExtract the factual claims.", synthesis)
	if err := generateJSON(ctx, c.llm, extractSystemPrompt, prompt, schema, &resp); err != nil {
		return nil, err
	}

	return resp.Claims, nil
}

func (c *FactChecker) crossReferenceClaims(ctx context.Context, claims []model.Claim, sources []*model.ScoredSource) (*model.FactCheckResult, error) {
	var resp struct {
		Checks []struct {
			Verdict    string  `json:"verdict"`
			Confidence float64 `json:"confidence"`
			Note       string  `json:"note"`
		} `json:"checks"`
		OverallReliability *float64 `json:"overallReliability"`
		Summary            string   `json:"summary"`
	}

	if err := generateJSON(ctx, c.llm, crossRefSystemPrompt, buildCrossRefPrompt(claims, sources), crossRefSchema(), &resp); err != nil {
		return nil, err
	}

	result := &model.FactCheckResult{
		Claims:  make([]model.ClaimCheck, len(claims)),
		Summary: resp.Summary,
	}
	for i, claim := range claims {
		check := model.ClaimCheck{
			Claim:   claim,
			Verdict: types.VerdictUnverifiable,
		}
		// Extra verdicts beyond the claim count are ignored; missing ones
		// stay unverifiable.
		if i < len(resp.Checks) {
			check.Verdict = types.ClaimVerdict(resp.Checks[i].Verdict).Normalize()
			check.Confidence = resp.Checks[i].Confidence
			check.Note = resp.Checks[i].Note
		}
		result.Claims[i] = check
	}
	result.Recount()

	// The model's aggregate wins when it is a sane probability; otherwise
	// fall back to the verified ratio.
	if resp.OverallReliability != nil && *resp.OverallReliability >= 0 && *resp.OverallReliability <= 1 {
		result.OverallReliability = *resp.OverallReliability
	} else {
		result.OverallReliability = float64(result.VerifiedCount) / float64(len(result.Claims))
	}

	return result, nil
}

func buildCrossRefPrompt(claims []model.Claim, sources []*model.ScoredSource) string {
	var sb strings.Builder

	sb.WriteString("Claims:\n\n")
	for i, claim := range claims {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, claim.Text)
	}
	sb.WriteString("\n")
	sb.WriteString(numberedExcerpts(sources))
	sb.WriteString("\nReturn one verdict per claim, in claim order.")

	return sb.String()
}

func crossRefSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title: "ClaimChecks",
		Type:  gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"checks": {
				Type:        gollem.TypeArray,
				Description: "One entry per claim, in the order given",
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"verdict": {
							Type:        gollem.TypeString,
							Description: "verified, partially_supported, unsupported, exaggerated, or unverifiable",
						},
						"confidence": {
							Type:        gollem.TypeNumber,
							Description: "Confidence in the verdict, [0,1]",
						},
						"note": {
							Type:        gollem.TypeString,
							Description: "One sentence on what the sources say",
						},
					},
					Required: []string{"verdict"},
				},
			},
			"overallReliability": {
				Type:        gollem.TypeNumber,
				Description: "Aggregate reliability of the answer, [0,1]",
			},
			"summary": {
				Type:        gollem.TypeString,
				Description: "One or two sentences summarizing the check",
			},
		},
		Required: []string{"checks"},
	}
}
