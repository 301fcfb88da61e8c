package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/pythia/pkg/controller/http"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/domain/types"
	"github.com/secmon-lab/pythia/pkg/repository/memory"
	"github.com/secmon-lab/pythia/pkg/service/source"
	"github.com/secmon-lab/pythia/pkg/usecase"
)

// canned gollem session/client, same shape as the usecase tests

type stubSession struct {
	text string
}

func (s *stubSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return &gollem.Response{Texts: []string{s.text}}, nil
}

func (s *stubSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *stubSession) History() (*gollem.History, error) { return nil, nil }

func (s *stubSession) AppendHistory(*gollem.History) error { return nil }

func (s *stubSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

type stubLLM struct {
	mu        sync.Mutex
	responses []string
}

func (c *stubLLM) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	text := "{}"
	if len(c.responses) > 0 {
		text = c.responses[0]
		c.responses = c.responses[1:]
	}
	return &stubSession{text: text}, nil
}

func (c *stubLLM) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	out := make([][]float64, len(input))
	for i := range input {
		vec := make([]float64, dimension)
		vec[0] = 1
		out[i] = vec
	}
	return out, nil
}

type stubAdapter struct {
	records []*model.SourceRecord
}

func (a *stubAdapter) Kind() types.SourceType { return types.SourceTypeWeb }

func (a *stubAdapter) Search(ctx context.Context, req *source.Request) ([]*model.SourceRecord, error) {
	return a.records, nil
}

func newTestServer(responses ...string) *httpctrl.Server {
	llm := &stubLLM{responses: responses}
	web := &stubAdapter{records: []*model.SourceRecord{
		{
			Title:      "Relevant document",
			URL:        "https://example.com/doc",
			Content:    strings.Repeat("relevant research content ", 5),
			SourceType: types.SourceTypeWeb,
		},
	}}

	uc := usecase.New(memory.New(),
		usecase.WithLLM(llm),
		usecase.WithAdapters(web),
	)
	return httpctrl.New(uc, httpctrl.WithDefaultUserID("default-user"))
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Bool(t, strings.Contains(rec.Body.String(), "ok")).True()
}

func TestResearchEndpoint(t *testing.T) {
	srv := newTestServer(
		`{"depth_level": "standard", "search_keywords": ["test"], "use_local": false, "use_academic": false, "use_pubmed": false, "use_web": true}`,
		`{"summaryText": "The answer [1].", "keyFindings": []}`,
		`{"claims": []}`,
	)

	body, _ := json.Marshal(map[string]any{"query": "test question"})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/research", bytes.NewReader(body)))

	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var result model.ResearchResult
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result)).Required()
	gt.Value(t, result.Synthesis).Equal("The answer [1].")
	gt.Value(t, result.UserID).Equal("default-user")
	gt.Array(t, result.Sources).Length(1)
}

func TestResearchEndpointEmptyQuery(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/research", strings.NewReader(`{}`)))

	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestResearchEndpointInvalidBody(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/research", strings.NewReader("not json")))

	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestResearchEndpointInvalidDepth(t *testing.T) {
	srv := newTestServer()

	body := `{"query": "q", "depth": "extreme"}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/research", strings.NewReader(body)))

	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestKnowledgeEndpoint(t *testing.T) {
	srv := newTestServer()

	body, _ := json.Marshal(map[string]any{
		"title":   "My notes",
		"content": "Some private research notes.",
	})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/knowledge", bytes.NewReader(body)))

	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	var stored model.Knowledge
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored)).Required()
	gt.String(t, string(stored.ID)).NotEqual("")
	gt.Value(t, stored.UserID).Equal("default-user")
}

func TestKnowledgeEndpointMissingContent(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/knowledge", strings.NewReader(`{"title": "x"}`)))

	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
}
