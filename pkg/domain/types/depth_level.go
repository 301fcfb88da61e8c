package types

import "fmt"

// DepthLevel controls how many sources and how much synthesis effort a
// research query warrants
type DepthLevel string

const (
	DepthQuick    DepthLevel = "quick"
	DepthStandard DepthLevel = "standard"
	DepthDeep     DepthLevel = "deep"
)

// AllDepthLevels returns all valid depth levels
func AllDepthLevels() []DepthLevel {
	return []DepthLevel{
		DepthQuick,
		DepthStandard,
		DepthDeep,
	}
}

// IsValid checks if the depth level is valid
func (d DepthLevel) IsValid() bool {
	switch d {
	case DepthQuick, DepthStandard, DepthDeep:
		return true
	default:
		return false
	}
}

// Normalize returns the depth level, treating unknown values as DepthStandard.
func (d DepthLevel) Normalize() DepthLevel {
	if !d.IsValid() {
		return DepthStandard
	}
	return d
}

// PerSourceLimit returns how many results each adapter is asked for at this depth.
func (d DepthLevel) PerSourceLimit() int {
	switch d {
	case DepthQuick:
		return 3
	case DepthDeep:
		return 10
	default:
		return 5
	}
}

// String returns the string representation of the depth level
func (d DepthLevel) String() string {
	return string(d)
}

// ParseDepthLevel parses a string into a DepthLevel
func ParseDepthLevel(s string) (DepthLevel, error) {
	d := DepthLevel(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid depth level: %s", s)
	}
	return d, nil
}
