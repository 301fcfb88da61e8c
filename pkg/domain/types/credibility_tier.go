package types

// CredibilityTier buckets a credibility score into a coarse label
type CredibilityTier string

const (
	TierAuthoritative CredibilityTier = "authoritative"
	TierEducational   CredibilityTier = "educational"
	TierReputable     CredibilityTier = "reputable"
	TierUnverified    CredibilityTier = "unverified"
)

// TierForScore maps a credibility score in [0,1] to its tier.
func TierForScore(score float64) CredibilityTier {
	switch {
	case score >= 0.90:
		return TierAuthoritative
	case score >= 0.70:
		return TierEducational
	case score >= 0.50:
		return TierReputable
	default:
		return TierUnverified
	}
}

// String returns the string representation of the tier
func (t CredibilityTier) String() string {
	return string(t)
}
