package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/domain/types"
	"github.com/secmon-lab/pythia/pkg/utils/safe"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared as
// a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,url,publicationDate"

type semanticScholarAdapter struct {
	client *http.Client
	apiKey string
}

// NewSemanticScholar creates the Semantic Scholar adapter. The API key is
// optional; unauthenticated requests are rate-limited harder.
func NewSemanticScholar(apiKey string) Adapter {
	return &semanticScholarAdapter{
		client: newHTTPClient(),
		apiKey: apiKey,
	}
}

func (a *semanticScholarAdapter) Kind() types.SourceType {
	return types.SourceTypeSemanticScholar
}

func (a *semanticScholarAdapter) Search(ctx context.Context, req *Request) ([]*model.SourceRecord, error) {
	if req.Query == "" {
		return nil, goerr.New("empty Semantic Scholar query")
	}

	params := url.Values{
		"query":  {req.Query},
		"limit":  {fmt.Sprintf("%d", req.MaxResults)},
		"fields": {semanticFields},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Semantic Scholar request")
	}
	httpReq.Header.Set("User-Agent", defaultUserAgent)
	if a.apiKey != "" {
		httpReq.Header.Set("x-api-key", a.apiKey)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "Semantic Scholar API request failed")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("Semantic Scholar API returned non-OK status", goerr.V("status", resp.StatusCode))
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, goerr.Wrap(err, "failed to parse Semantic Scholar response")
	}

	records := make([]*model.SourceRecord, 0, len(sr.Data))
	for _, paper := range sr.Data {
		rec := &model.SourceRecord{
			Title:      paper.Title,
			URL:        paper.URL,
			Content:    paper.Abstract,
			SourceType: types.SourceTypeSemanticScholar,
			ExternalID: paper.PaperID,
		}
		for _, author := range paper.Authors {
			rec.Authors = append(rec.Authors, author.Name)
		}
		if paper.PublicationDate != "" {
			if t, parseErr := time.Parse("2006-01-02", paper.PublicationDate); parseErr == nil {
				rec.PublishedAt = &t
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

type semanticResponse struct {
	Data []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string           `json:"paperId"`
	Title           string           `json:"title"`
	Abstract        string           `json:"abstract"`
	URL             string           `json:"url"`
	PublicationDate string           `json:"publicationDate"`
	Authors         []semanticAuthor `json:"authors"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}
