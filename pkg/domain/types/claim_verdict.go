package types

// ClaimVerdict classifies how well a synthesized claim is supported by the
// underlying sources
type ClaimVerdict string

const (
	VerdictVerified           ClaimVerdict = "verified"
	VerdictPartiallySupported ClaimVerdict = "partially_supported"
	VerdictUnsupported        ClaimVerdict = "unsupported"
	VerdictExaggerated        ClaimVerdict = "exaggerated"
	VerdictUnverifiable       ClaimVerdict = "unverifiable"
)

// AllClaimVerdicts returns all valid claim verdicts
func AllClaimVerdicts() []ClaimVerdict {
	return []ClaimVerdict{
		VerdictVerified,
		VerdictPartiallySupported,
		VerdictUnsupported,
		VerdictExaggerated,
		VerdictUnverifiable,
	}
}

// IsValid checks if the claim verdict is valid
func (v ClaimVerdict) IsValid() bool {
	switch v {
	case VerdictVerified,
		VerdictPartiallySupported,
		VerdictUnsupported,
		VerdictExaggerated,
		VerdictUnverifiable:
		return true
	default:
		return false
	}
}

// Normalize returns the verdict, treating unknown model output as unverifiable.
func (v ClaimVerdict) Normalize() ClaimVerdict {
	if !v.IsValid() {
		return VerdictUnverifiable
	}
	return v
}

// Flagged reports whether the verdict should count against reliability.
func (v ClaimVerdict) Flagged() bool {
	switch v {
	case VerdictUnsupported, VerdictExaggerated:
		return true
	default:
		return false
	}
}

// String returns the string representation of the verdict
func (v ClaimVerdict) String() string {
	return string(v)
}
