package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// generateJSON runs a one-shot LLM session requesting strict JSON output and
// decodes it into out. The model is never trusted to honor the schema: the
// first top-level {...} block is extracted by pattern match before parsing,
// and any failure is returned for the caller's deterministic fallback.
func generateJSON(ctx context.Context, llm gollem.LLMClient, systemPrompt, userPrompt string, schema *gollem.Parameter, out any) error {
	if llm == nil {
		return goerr.New("LLM client is not configured")
	}

	session, err := llm.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(schema),
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(userPrompt))
	if err != nil {
		return goerr.Wrap(err, "failed to generate content from LLM")
	}
	if len(resp.Texts) == 0 {
		return goerr.New("empty LLM response")
	}

	raw := extractJSONBlock(resp.Texts[0])
	if raw == "" {
		return goerr.New("no JSON object in LLM response", goerr.V("response", resp.Texts[0]))
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", raw))
	}

	return nil
}

// extractJSONBlock returns the first top-level {...} block of s, or "" when
// none exists.
func extractJSONBlock(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end <= start {
		return ""
	}
	return s[start : end+1]
}
