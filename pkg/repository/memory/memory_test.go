package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/repository/memory"
)

func TestResearchCachePutGet(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	hash := model.QueryHash("quantum computing", "user-1")
	entry := &model.CacheEntry{
		QueryHash: hash,
		UserID:    "user-1",
		Query:     "quantum computing",
		Synthesis: "a synthesized answer",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	gt.NoError(t, repo.ResearchCache().Put(ctx, entry)).Required()

	got, err := repo.ResearchCache().Get(ctx, hash, "user-1")
	gt.NoError(t, err).Required()
	gt.Value(t, got.Synthesis).Equal("a synthesized answer")
}

func TestResearchCacheMiss(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	_, err := repo.ResearchCache().Get(ctx, "no-such-hash", "user-1")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, memory.ErrNotFound)).True()
}

func TestResearchCacheExpiry(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	hash := model.QueryHash("stale query", "user-1")
	entry := &model.CacheEntry{
		QueryHash: hash,
		UserID:    "user-1",
		Query:     "stale query",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	gt.NoError(t, repo.ResearchCache().Put(ctx, entry)).Required()

	_, err := repo.ResearchCache().Get(ctx, hash, "user-1")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, memory.ErrNotFound)).True()
}

func TestResearchCacheUserIsolation(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	hash := model.QueryHash("shared query", "user-1")
	entry := &model.CacheEntry{
		QueryHash: hash,
		UserID:    "user-1",
		Query:     "shared query",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	gt.NoError(t, repo.ResearchCache().Put(ctx, entry)).Required()

	_, err := repo.ResearchCache().Get(ctx, hash, "user-2")
	gt.Error(t, err)
}

func TestResearchCacheReturnsCopy(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	hash := model.QueryHash("copy check", "user-1")
	entry := &model.CacheEntry{
		QueryHash: hash,
		UserID:    "user-1",
		Synthesis: "original",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	gt.NoError(t, repo.ResearchCache().Put(ctx, entry)).Required()

	got, err := repo.ResearchCache().Get(ctx, hash, "user-1")
	gt.NoError(t, err).Required()
	got.Synthesis = "mutated"

	again, err := repo.ResearchCache().Get(ctx, hash, "user-1")
	gt.NoError(t, err).Required()
	gt.Value(t, again.Synthesis).Equal("original")
}

func TestKnowledgeSearchOrdering(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	put := func(title string, embedding []float32) {
		t.Helper()
		_, err := repo.Knowledge().Put(ctx, &model.Knowledge{
			UserID:    "user-1",
			Title:     title,
			Content:   "content of " + title,
			Embedding: embedding,
		})
		gt.NoError(t, err).Required()
	}

	put("exact", []float32{1, 0, 0})
	put("near", []float32{0.9, 0.1, 0})
	put("far", []float32{0, 0, 1})

	results, err := repo.Knowledge().Search(ctx, "user-1", []float32{1, 0, 0}, 2)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(2)
	gt.Value(t, results[0].Title).Equal("exact")
	gt.Value(t, results[1].Title).Equal("near")
}

func TestKnowledgeSearchUserIsolation(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	_, err := repo.Knowledge().Put(ctx, &model.Knowledge{
		UserID:    "user-1",
		Title:     "mine",
		Content:   "private notes",
		Embedding: []float32{1, 0},
	})
	gt.NoError(t, err).Required()

	results, err := repo.Knowledge().Search(ctx, "user-2", []float32{1, 0}, 10)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(0)
}

func TestKnowledgeCountByUser(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Knowledge().Put(ctx, &model.Knowledge{
			UserID:    "user-1",
			Title:     "doc",
			Content:   "text",
			Embedding: []float32{1},
		})
		gt.NoError(t, err).Required()
	}

	count, err := repo.Knowledge().CountByUser(ctx, "user-1")
	gt.NoError(t, err).Required()
	gt.Value(t, count).Equal(3)

	count, err = repo.Knowledge().CountByUser(ctx, "user-2")
	gt.NoError(t, err).Required()
	gt.Value(t, count).Equal(0)
}

func TestKnowledgePutRequiresUser(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	_, err := repo.Knowledge().Put(ctx, &model.Knowledge{Title: "orphan"})
	gt.Error(t, err)
}
