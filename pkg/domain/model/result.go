package model

import (
	"time"

	"github.com/secmon-lab/pythia/pkg/domain/types"
)

// SourceBreakdown counts retained sources by origin.
type SourceBreakdown struct {
	LocalCount  int                      `json:"localCount"`
	OnlineCount int                      `json:"onlineCount"`
	PerSource   map[types.SourceType]int `json:"perSource,omitempty"`
}

// BreakdownOf tallies the retained source list.
func BreakdownOf(sources []*ScoredSource) SourceBreakdown {
	b := SourceBreakdown{PerSource: make(map[types.SourceType]int)}
	for _, s := range sources {
		b.PerSource[s.SourceType]++
		if s.SourceType == types.SourceTypeLocal {
			b.LocalCount++
		} else {
			b.OnlineCount++
		}
	}
	return b
}

// ResearchResult is the composite answer returned to the request layer.
// It is always well-formed: recoverable failures surface as emptiness or
// low-confidence markers, never as a missing result.
type ResearchResult struct {
	RunID     string `json:"runId"`
	Query     string `json:"query"`
	UserID    string `json:"userId"`
	Synthesis string `json:"synthesis"`

	Sources   []*ScoredSource  `json:"sources"`
	Report    *SynthesisResult `json:"report,omitempty"`
	FactCheck *FactCheckResult `json:"factCheck,omitempty"`
	Plan      *ResearchPlan    `json:"plan,omitempty"`
	Breakdown SourceBreakdown  `json:"sourceBreakdown"`

	FromCache bool `json:"fromCache"`
	NoResults bool `json:"noResults,omitempty"`

	StartedAt   time.Time        `json:"startedAt"`
	CompletedAt time.Time        `json:"completedAt"`
	PhaseMillis map[string]int64 `json:"phaseMillis,omitempty"`
}
