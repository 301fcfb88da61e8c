package types

// ResearchPhase names a stage of the research pipeline. Phases only move
// forward; there is no retry loop in the orchestrator.
type ResearchPhase string

const (
	PhaseIdle         ResearchPhase = "idle"
	PhasePlanning     ResearchPhase = "planning"
	PhaseSearching    ResearchPhase = "searching"
	PhaseRanking      ResearchPhase = "ranking"
	PhaseSynthesizing ResearchPhase = "synthesizing"
	PhaseFactChecking ResearchPhase = "fact_checking"
	PhaseCaching      ResearchPhase = "caching"
	PhaseDone         ResearchPhase = "done"
)

// String returns the string representation of the phase
func (p ResearchPhase) String() string {
	return string(p)
}
