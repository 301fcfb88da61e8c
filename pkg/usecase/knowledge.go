package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/pythia/pkg/domain/model"
)

// AddKnowledge embeds a document and stores it in the user's local index.
// The content is embedded as-is; very long documents should be split by the
// caller before ingestion.
func (u *UseCases) AddKnowledge(ctx context.Context, knowledge *model.Knowledge) (*model.Knowledge, error) {
	if knowledge.UserID == "" {
		return nil, goerr.New("user ID is required")
	}
	if knowledge.Content == "" {
		return nil, goerr.New("content is required")
	}
	if u.llm == nil {
		return nil, goerr.New("LLM client is not configured")
	}

	text := knowledge.Title + "\n" + knowledge.Content
	embeddings, err := u.llm.GenerateEmbedding(ctx, model.EmbeddingDimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed knowledge document")
	}
	if len(embeddings) == 0 {
		return nil, goerr.New("empty embedding response")
	}

	vec := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		vec[i] = float32(v)
	}
	knowledge.Embedding = vec

	if knowledge.ID == "" {
		knowledge.ID = model.NewKnowledgeID()
	}
	now := u.now()
	if knowledge.CreatedAt.IsZero() {
		knowledge.CreatedAt = now
	}
	knowledge.UpdatedAt = now

	stored, err := u.repo.Knowledge().Put(ctx, knowledge)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store knowledge document")
	}

	return stored, nil
}
