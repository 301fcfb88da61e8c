package usecase

import (
	"sort"
	"strings"

	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/service/credibility"
)

const (
	// minContentLength filters low-content sources, except academic types
	// whose citation value outweighs missing text.
	minContentLength = 30

	credibilityWeight = 0.6
	relevanceWeight   = 0.4
)

// FilterRanker deduplicates, filters, scores and truncates a raw source
// list. The step order is a contract: dedup, content filter, scoring, stable
// sort, truncation.
type FilterRanker struct {
	scorer *credibility.Scorer
}

func NewFilterRanker(scorer *credibility.Scorer) *FilterRanker {
	return &FilterRanker{scorer: scorer}
}

// Rank produces the final ranked source list for synthesis.
func (r *FilterRanker) Rank(query string, sources []*model.SourceRecord, maxResults int) []*model.ScoredSource {
	queryTerms := model.ExtractKeywords(query)

	seen := make(map[string]bool, len(sources))
	scored := make([]*model.ScoredSource, 0, len(sources))

	for _, src := range sources {
		key := src.DedupeKey()
		if seen[key] {
			continue
		}
		seen[key] = true

		if len(strings.TrimSpace(src.Content)) < minContentLength && !src.SourceType.IsAcademic() {
			continue
		}

		cred := r.scorer.Evaluate(src)
		relevance := relevanceScore(queryTerms, src)

		scored = append(scored, &model.ScoredSource{
			SourceRecord:      *src,
			CredibilityScore:  cred.Value,
			CredibilityTier:   cred.Tier,
			CredibilityReason: cred.Reasoning,
			RelevanceScore:    relevance,
			FinalScore:        credibilityWeight*cred.Value + relevanceWeight*relevance,
		})
	}

	// Ties keep discovery order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})

	if maxResults > 0 && len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	return scored
}

// relevanceScore is the fraction of query terms appearing in the source
// title or content, with a bonus when the title alone covers a term.
func relevanceScore(queryTerms []string, src *model.SourceRecord) float64 {
	if len(queryTerms) == 0 {
		return 0.5
	}

	title := strings.ToLower(src.Title)
	content := strings.ToLower(src.Content)

	var score float64
	for _, term := range queryTerms {
		switch {
		case strings.Contains(title, term):
			score += 1.0
		case strings.Contains(content, term):
			score += 0.7
		}
	}

	score /= float64(len(queryTerms))
	if score > 1 {
		score = 1
	}
	return score
}
