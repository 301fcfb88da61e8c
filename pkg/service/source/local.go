package source

import (
	"context"

	"github.com/m-mizutani/gollem"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/pythia/pkg/domain/interfaces"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/domain/types"
)

type localAdapter struct {
	knowledge interfaces.KnowledgeRepository
	llm       gollem.LLMClient
}

// NewLocal creates the local knowledge adapter. It embeds the query and runs
// vector search over the requesting user's documents only.
func NewLocal(knowledge interfaces.KnowledgeRepository, llm gollem.LLMClient) Adapter {
	return &localAdapter{
		knowledge: knowledge,
		llm:       llm,
	}
}

func (a *localAdapter) Kind() types.SourceType {
	return types.SourceTypeLocal
}

func (a *localAdapter) Search(ctx context.Context, req *Request) ([]*model.SourceRecord, error) {
	if req.UserID == "" {
		return nil, goerr.New("user ID is required for local search")
	}
	if a.llm == nil {
		return nil, goerr.New("LLM client is not configured for local search")
	}

	embedding, err := a.embedQuery(ctx, req.Query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	docs, err := a.knowledge.Search(ctx, req.UserID, embedding, req.MaxResults)
	if err != nil {
		return nil, goerr.Wrap(err, "local knowledge search failed")
	}

	records := make([]*model.SourceRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, &model.SourceRecord{
			Title:      doc.Title,
			URL:        doc.URL,
			Content:    doc.Content,
			SourceType: types.SourceTypeLocal,
			ExternalID: string(doc.ID),
		})
	}

	return records, nil
}

func (a *localAdapter) embedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := a.llm.GenerateEmbedding(ctx, model.EmbeddingDimension, []string{query})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, goerr.New("no embedding returned")
	}

	result := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		result[i] = float32(v)
	}
	return result, nil
}
