package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

const (
	// CacheTTLAcademic applies when any retained source comes from a curated
	// research index; that knowledge is assumed stable.
	CacheTTLAcademic = 7 * 24 * time.Hour

	// CacheTTLDefault applies to general web content.
	CacheTTLDefault = 24 * time.Hour

	// CachedContentLimit caps per-source content stored in a cache entry.
	CachedContentLimit = 500
)

// CacheEntry is a completed research result stored per (query, user) pair.
// Entries are immutable once stored and treated as absent after ExpiresAt.
type CacheEntry struct {
	QueryHash string           `json:"queryHash"`
	UserID    string           `json:"userId"`
	Query     string           `json:"query"`
	Sources   []*ScoredSource  `json:"sources"`
	Synthesis string           `json:"synthesis"`
	Report    *SynthesisResult `json:"report,omitempty"`
	Plan      *ResearchPlan    `json:"plan,omitempty"`
	Breakdown SourceBreakdown  `json:"sourceBreakdown"`
	CreatedAt time.Time        `json:"createdAt"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// Expired reports whether the entry must be treated as absent.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// QueryHash derives the cache key from the normalized query and the
// requesting user. Different users never share an entry: local-source
// results are user-scoped.
func QueryHash(query, userID string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(normalized + ":" + userID))
	return hex.EncodeToString(sum[:])
}

// CacheTTL selects the entry lifetime from the retained source mix.
func CacheTTL(sources []*ScoredSource) time.Duration {
	for _, s := range sources {
		if s.SourceType.IsIndexed() {
			return CacheTTLAcademic
		}
	}
	return CacheTTLDefault
}
