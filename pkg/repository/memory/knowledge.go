package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/pythia/pkg/domain/model"
)

type knowledgeRepository struct {
	mu        sync.RWMutex
	knowledge map[model.KnowledgeID]*model.Knowledge
}

func newKnowledgeRepository() *knowledgeRepository {
	return &knowledgeRepository{
		knowledge: make(map[model.KnowledgeID]*model.Knowledge),
	}
}

// copyKnowledge creates a deep copy of a knowledge entry
func copyKnowledge(k *model.Knowledge) *model.Knowledge {
	copied := *k
	if k.Embedding != nil {
		copied.Embedding = make([]float32, len(k.Embedding))
		copy(copied.Embedding, k.Embedding)
	}
	return &copied
}

func (r *knowledgeRepository) Put(ctx context.Context, knowledge *model.Knowledge) (*model.Knowledge, error) {
	if knowledge.UserID == "" {
		return nil, goerr.New("user ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyKnowledge(knowledge)
	if created.ID == "" {
		created.ID = model.NewKnowledgeID()
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	r.knowledge[created.ID] = created
	return copyKnowledge(created), nil
}

func (r *knowledgeRepository) Search(ctx context.Context, userID string, embedding []float32, limit int) ([]*model.Knowledge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		doc  *model.Knowledge
		dist float64
	}

	var candidates []scored
	for _, k := range r.knowledge {
		if k.UserID != userID || len(k.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, scored{
			doc:  copyKnowledge(k),
			dist: cosineDistance(embedding, k.Embedding),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	result := make([]*model.Knowledge, len(candidates))
	for i, c := range candidates {
		result[i] = c.doc
	}
	return result, nil
}

func (r *knowledgeRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, k := range r.knowledge {
		if k.UserID == userID {
			count++
		}
	}
	return count, nil
}

// cosineDistance matches Firestore's DistanceMeasureCosine semantics:
// smaller is closer.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.MaxFloat64
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return math.MaxFloat64
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
