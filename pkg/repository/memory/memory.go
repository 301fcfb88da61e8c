package memory

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/pythia/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = goerr.New("not found")

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	cache     *researchCacheRepository
	knowledge *knowledgeRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		cache:     newResearchCacheRepository(),
		knowledge: newKnowledgeRepository(),
	}
}

func (m *Memory) ResearchCache() interfaces.ResearchCacheRepository {
	return m.cache
}

func (m *Memory) Knowledge() interfaces.KnowledgeRepository {
	return m.knowledge
}

func (m *Memory) Close() error {
	return nil
}
