package model

import "github.com/secmon-lab/pythia/pkg/domain/types"

// Claim is a discrete, independently verifiable statement extracted from a
// synthesized answer.
type Claim struct {
	Text         string `json:"text"`
	CitedSources []int  `json:"citedIndices,omitempty"`
	Category     string `json:"category,omitempty"`
}

// ClaimCheck is the cross-reference result for one claim.
type ClaimCheck struct {
	Claim

	Verdict    types.ClaimVerdict `json:"verdict"`
	Confidence float64            `json:"confidence"`
	Note       string             `json:"note,omitempty"`
}

// FactCheckResult is derived from the synthesis text; it never mutates it.
type FactCheckResult struct {
	Claims             []ClaimCheck `json:"claims"`
	VerifiedCount      int          `json:"verifiedClaims"`
	FlaggedCount       int          `json:"flaggedClaims"`
	OverallReliability float64      `json:"overallReliability"`
	Summary            string       `json:"summary"`
}

// Recount recomputes verified/flagged counters from the claim verdicts.
func (r *FactCheckResult) Recount() {
	r.VerifiedCount = 0
	r.FlaggedCount = 0
	for _, c := range r.Claims {
		if c.Verdict == types.VerdictVerified {
			r.VerifiedCount++
		}
		if c.Verdict.Flagged() {
			r.FlaggedCount++
		}
	}
}
