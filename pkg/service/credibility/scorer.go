package credibility

import (
	_ "embed"
	"regexp"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/domain/types"
)

//go:embed domains.toml
var domainTableRaw []byte

// baselineScore applies to unknown domains. Credibility is a ranking signal,
// not a gate: unscored sources must never be automatically excluded.
const baselineScore = 0.40

// Score is the credibility assessment of one source.
type Score struct {
	Value     float64
	Tier      types.CredibilityTier
	Reasoning string
}

type domainEntry struct {
	Name  string  `toml:"name"`
	Score float64 `toml:"score"`
}

type tldEntry struct {
	Suffix string  `toml:"suffix"`
	Score  float64 `toml:"score"`
}

type domainTable struct {
	Domains []domainEntry `toml:"domain"`
	TLDs    []tldEntry    `toml:"tld"`
}

// Scorer assigns reputation scores from a static domain table plus content
// heuristics. It is a pure function of the source record.
type Scorer struct {
	domains map[string]float64

	// suffixes holds the table entries sorted longest-name-first, so a host
	// under nested entries (pubmed.ncbi.nlm.nih.gov inside nih.gov) always
	// resolves to the most specific one.
	suffixes []domainEntry
	tlds     []tldEntry
}

// New parses the embedded reputation table.
func New() (*Scorer, error) {
	var table domainTable
	if err := toml.Unmarshal(domainTableRaw, &table); err != nil {
		return nil, goerr.Wrap(err, "failed to parse domain reputation table")
	}

	domains := make(map[string]float64, len(table.Domains))
	for _, d := range table.Domains {
		domains[d.Name] = d.Score
	}

	suffixes := append([]domainEntry(nil), table.Domains...)
	sort.Slice(suffixes, func(i, j int) bool {
		if len(suffixes[i].Name) != len(suffixes[j].Name) {
			return len(suffixes[i].Name) > len(suffixes[j].Name)
		}
		return suffixes[i].Name < suffixes[j].Name
	})

	return &Scorer{
		domains:  domains,
		suffixes: suffixes,
		tlds:     table.TLDs,
	}, nil
}

// Must is New for wiring paths where a broken embedded table is fatal.
func Must() *Scorer {
	s, err := New()
	if err != nil {
		panic(err)
	}
	return s
}

var (
	citationPattern = regexp.MustCompile(`\[\d+\]|\(\d{4}\)|doi\.org/|et al\.`)
	sectionHeaders  = []string{"abstract", "introduction", "methodology", "methods", "results", "conclusion", "references"}
)

// Evaluate scores a single source record. The result is always in [0,1].
func (s *Scorer) Evaluate(src *model.SourceRecord) Score {
	var reasons []string

	score, reason := s.domainScore(src.Domain())
	reasons = append(reasons, reason)

	if bonus, reason := typeBonus(src.SourceType); bonus > 0 {
		score += bonus
		reasons = append(reasons, reason)
	}

	score += s.contentBonus(src, &reasons)

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}

	return Score{
		Value:     score,
		Tier:      types.TierForScore(score),
		Reasoning: strings.Join(reasons, "; "),
	}
}

// domainScore resolves the host against the table: exact match, then suffix
// match, then TLD heuristic, then baseline.
func (s *Scorer) domainScore(host string) (float64, string) {
	if host == "" {
		return baselineScore, "no domain"
	}

	if score, ok := s.domains[host]; ok {
		return score, "known domain " + host
	}

	for _, entry := range s.suffixes {
		if strings.HasSuffix(host, "."+entry.Name) {
			return entry.Score, "known domain suffix " + entry.Name
		}
	}

	for _, tld := range s.tlds {
		if strings.HasSuffix(host, tld.Suffix) {
			return tld.Score, "TLD heuristic " + tld.Suffix
		}
	}

	return baselineScore, "unknown domain"
}

func typeBonus(st types.SourceType) (float64, string) {
	switch st {
	case types.SourceTypeLocal:
		return 0.15, "local knowledge source"
	case types.SourceTypeArxiv, types.SourceTypePubMed:
		return 0.12, "research index source"
	case types.SourceTypeSemanticScholar:
		return 0.10, "scholar index source"
	case types.SourceTypeAcademic:
		return 0.08, "academic source"
	default:
		return 0, ""
	}
}

func (s *Scorer) contentBonus(src *model.SourceRecord, reasons *[]string) float64 {
	var bonus float64
	content := src.Content
	lower := strings.ToLower(content)

	if citationPattern.MatchString(content) {
		bonus += 0.05
		*reasons = append(*reasons, "contains citations")
	}

	for _, header := range sectionHeaders {
		if strings.Contains(lower, header) {
			bonus += 0.03
			*reasons = append(*reasons, "academic structure")
			break
		}
	}

	switch {
	case len(content) > 1000:
		bonus += 0.04
		*reasons = append(*reasons, "substantial content")
	case len(content) > 300:
		bonus += 0.02
	}

	if len(src.Authors) > 0 {
		bonus += 0.03
		*reasons = append(*reasons, "attributed authors")
	}

	return bonus
}
