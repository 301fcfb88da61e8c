package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/domain/types"
	"github.com/secmon-lab/pythia/pkg/utils/safe"
)

// webAPIBase is the Brave Search endpoint. Declared as a var so tests can
// substitute an httptest server.
var webAPIBase = "https://api.search.brave.com/res/v1/web/search"

type webAdapter struct {
	client *http.Client
	apiKey string
}

// NewWeb creates the web search adapter backed by the Brave Search API.
func NewWeb(apiKey string) Adapter {
	return &webAdapter{
		client: newHTTPClient(),
		apiKey: apiKey,
	}
}

func (a *webAdapter) Kind() types.SourceType {
	return types.SourceTypeWeb
}

func (a *webAdapter) Search(ctx context.Context, req *Request) ([]*model.SourceRecord, error) {
	if req.Query == "" {
		return nil, goerr.New("empty web query")
	}
	if a.apiKey == "" {
		return nil, goerr.New("web search API key is not configured")
	}

	params := url.Values{
		"q":     {req.Query},
		"count": {fmt.Sprintf("%d", req.MaxResults)},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, webAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create web search request")
	}
	httpReq.Header.Set("User-Agent", defaultUserAgent)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Subscription-Token", a.apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "web search request failed")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("web search returned non-OK status", goerr.V("status", resp.StatusCode))
	}

	var wr webSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, goerr.Wrap(err, "failed to parse web search response")
	}

	records := make([]*model.SourceRecord, 0, len(wr.Web.Results))
	for _, result := range wr.Web.Results {
		records = append(records, &model.SourceRecord{
			Title:      result.Title,
			URL:        result.URL,
			Content:    result.Description,
			SourceType: types.SourceTypeWeb,
		})
	}

	return records, nil
}

type webSearchResponse struct {
	Web struct {
		Results []webResult `json:"results"`
	} `json:"web"`
}

type webResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}
