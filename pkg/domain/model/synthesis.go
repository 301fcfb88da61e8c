package model

// KeyFinding is one discrete finding of a research report. Supporting source
// indices are 1-based references into the ranked source list.
type KeyFinding struct {
	Finding           string  `json:"finding"`
	SupportingSources []int   `json:"supportingSourceIndices"`
	Confidence        float64 `json:"confidence"`
}

// SynthesisResult is the structured report built from ranked sources.
type SynthesisResult struct {
	Summary        string       `json:"summaryText"`
	KeyFindings    []KeyFinding `json:"keyFindings"`
	Themes         []string     `json:"themes,omitempty"`
	ConsensusAreas []string     `json:"consensusAreas,omitempty"`
	Contradictions []string     `json:"contradictions,omitempty"`
	Fallback       bool         `json:"fallback,omitempty"`
}

// ClampCitations drops citation indices outside [1, sourceCount] from every
// key finding, so indices always remain valid for the lifetime of the result.
func (r *SynthesisResult) ClampCitations(sourceCount int) {
	for i := range r.KeyFindings {
		kept := r.KeyFindings[i].SupportingSources[:0]
		for _, idx := range r.KeyFindings[i].SupportingSources {
			if idx >= 1 && idx <= sourceCount {
				kept = append(kept, idx)
			}
		}
		r.KeyFindings[i].SupportingSources = kept
	}
}
