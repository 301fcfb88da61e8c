package types

import "fmt"

// SourceType identifies where a retrieved source came from
type SourceType string

const (
	SourceTypeLocal           SourceType = "local"
	SourceTypeArxiv           SourceType = "arxiv"
	SourceTypePubMed          SourceType = "pubmed"
	SourceTypeSemanticScholar SourceType = "semantic_scholar"
	SourceTypeWeb             SourceType = "web"
	SourceTypeAcademic        SourceType = "academic"
)

// AllSourceTypes returns all valid source types
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceTypeLocal,
		SourceTypeArxiv,
		SourceTypePubMed,
		SourceTypeSemanticScholar,
		SourceTypeWeb,
		SourceTypeAcademic,
	}
}

// IsValid checks if the source type is valid
func (s SourceType) IsValid() bool {
	switch s {
	case SourceTypeLocal,
		SourceTypeArxiv,
		SourceTypePubMed,
		SourceTypeSemanticScholar,
		SourceTypeWeb,
		SourceTypeAcademic:
		return true
	default:
		return false
	}
}

// IsAcademic reports whether the source type carries citation value on its
// own. Such sources are retained by the ranker even when the adapter
// returned metadata only.
func (s SourceType) IsAcademic() bool {
	switch s {
	case SourceTypeArxiv, SourceTypePubMed, SourceTypeSemanticScholar, SourceTypeAcademic:
		return true
	default:
		return false
	}
}

// IsIndexed reports whether the source comes from a curated research index
// (arXiv, PubMed, Semantic Scholar). Cached results containing at least one
// indexed source get the long TTL.
func (s SourceType) IsIndexed() bool {
	switch s {
	case SourceTypeArxiv, SourceTypePubMed, SourceTypeSemanticScholar:
		return true
	default:
		return false
	}
}

// String returns the string representation of the source type
func (s SourceType) String() string {
	return string(s)
}

// ParseSourceType parses a string into a SourceType
func ParseSourceType(s string) (SourceType, error) {
	st := SourceType(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid source type: %s", s)
	}
	return st, nil
}
