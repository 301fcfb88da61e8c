package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/domain/types"
)

func TestQueryHashNormalizesQuery(t *testing.T) {
	a := model.QueryHash("  What IS  quantum computing?  ", "user-1")
	b := model.QueryHash("what is quantum computing?", "user-1")
	gt.Value(t, a).Equal(b)
}

func TestQueryHashScopesByUser(t *testing.T) {
	a := model.QueryHash("quantum computing", "user-1")
	b := model.QueryHash("quantum computing", "user-2")
	gt.Value(t, a).NotEqual(b)
}

func TestCacheTTL(t *testing.T) {
	webOnly := []*model.ScoredSource{
		{SourceRecord: model.SourceRecord{SourceType: types.SourceTypeWeb}},
		{SourceRecord: model.SourceRecord{SourceType: types.SourceTypeLocal}},
	}
	gt.Value(t, model.CacheTTL(webOnly)).Equal(model.CacheTTLDefault)

	withIndexed := append(webOnly, &model.ScoredSource{
		SourceRecord: model.SourceRecord{SourceType: types.SourceTypeArxiv},
	})
	gt.Value(t, model.CacheTTL(withIndexed)).Equal(model.CacheTTLAcademic)
}

func TestCacheEntryExpired(t *testing.T) {
	now := time.Now()
	entry := &model.CacheEntry{ExpiresAt: now.Add(time.Hour)}

	gt.Bool(t, entry.Expired(now)).False()
	gt.Bool(t, entry.Expired(now.Add(2*time.Hour))).True()
}
