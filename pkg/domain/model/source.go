package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/secmon-lab/pythia/pkg/domain/types"
)

const dedupeTitlePrefixLen = 60

// Truncate shortens s to at most max bytes without splitting a UTF-8 rune.
func Truncate(s string, max int) string {
	if max < 0 {
		max = 0
	}
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// SourceRecord is one piece of retrieved evidence with provenance metadata.
// Content may be empty when the adapter returned metadata only.
type SourceRecord struct {
	Title       string           `json:"title"`
	URL         string           `json:"url"`
	Content     string           `json:"content"`
	SourceType  types.SourceType `json:"sourceType"`
	Authors     []string         `json:"authors,omitempty"`
	PublishedAt *time.Time       `json:"publishedAt,omitempty"`

	// ExternalID is the provider-native identifier (e.g. a PubMed ID) used
	// for follow-up calls such as abstract enrichment.
	ExternalID string `json:"externalId,omitempty"`
}

// DedupeKey is the identity used for deduplication: normalized URL plus a
// lowercased title prefix. Two records with the same key are the same source.
func (s *SourceRecord) DedupeKey() string {
	title := strings.ToLower(strings.TrimSpace(s.Title))
	title = Truncate(title, dedupeTitlePrefixLen)
	return normalizeURL(s.URL) + "|" + title
}

func normalizeURL(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	if i := strings.IndexAny(u, "#?"); i >= 0 {
		u = u[:i]
	}
	return strings.TrimSuffix(u, "/")
}

// Domain returns the host part of the record URL, without scheme, port or
// "www." prefix. Empty when the URL is unset or malformed.
func (s *SourceRecord) Domain() string {
	u := strings.ToLower(strings.TrimSpace(s.URL))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	if i := strings.IndexAny(u, "/#?"); i >= 0 {
		u = u[:i]
	}
	if i := strings.Index(u, ":"); i >= 0 {
		u = u[:i]
	}
	return u
}

// ScoredSource is a SourceRecord with credibility and relevance scores
// attached by the ranker.
type ScoredSource struct {
	SourceRecord

	CredibilityScore  float64               `json:"credibilityScore"`
	CredibilityTier   types.CredibilityTier `json:"credibilityTier"`
	CredibilityReason string                `json:"credibilityReason,omitempty"`
	RelevanceScore    float64               `json:"relevanceScore"`
	FinalScore        float64               `json:"finalScore"`
}

// Trimmed returns a copy with content capped at maxContent characters, for
// cache storage and API responses.
func (s *ScoredSource) Trimmed(maxContent int) *ScoredSource {
	out := *s
	out.Content = Truncate(out.Content, maxContent)
	if s.Authors != nil {
		out.Authors = append([]string(nil), s.Authors...)
	}
	return &out
}
