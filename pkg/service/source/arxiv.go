package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/domain/types"
	"github.com/secmon-lab/pythia/pkg/utils/safe"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests can
// substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

type arxivAdapter struct {
	client *http.Client
}

// NewArxiv creates the arXiv adapter.
func NewArxiv() Adapter {
	return &arxivAdapter{client: newHTTPClient()}
}

func (a *arxivAdapter) Kind() types.SourceType {
	return types.SourceTypeArxiv
}

func (a *arxivAdapter) Search(ctx context.Context, req *Request) ([]*model.SourceRecord, error) {
	terms := strings.Fields(req.Query)
	if len(terms) == 0 {
		return nil, goerr.New("empty arXiv query")
	}

	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, "all:"+url.QueryEscape(strings.Join(terms, " ")), req.MaxResults)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create arXiv request")
	}
	httpReq.Header.Set("User-Agent", defaultUserAgent)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "arXiv API request failed")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("arXiv API returned non-OK status", goerr.V("status", resp.StatusCode))
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse arXiv response")
	}

	records := make([]*model.SourceRecord, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		rec := &model.SourceRecord{
			Title:      strings.TrimSpace(entry.Title),
			URL:        strings.TrimSpace(entry.ID),
			Content:    strings.TrimSpace(entry.Summary),
			SourceType: types.SourceTypeArxiv,
			ExternalID: extractArxivID(entry.ID),
		}
		for _, author := range entry.Authors {
			rec.Authors = append(rec.Authors, strings.TrimSpace(author.Name))
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			rec.PublishedAt = &t
		}
		records = append(records, rec)
	}

	return records, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041").
func extractArxivID(idURL string) string {
	i := strings.LastIndex(idURL, "/abs/")
	if i < 0 {
		return ""
	}
	id := idURL[i+len("/abs/"):]
	if j := strings.LastIndex(id, "v"); j > 0 {
		if _, err := fmt.Sscanf(id[j+1:], "%d", new(int)); err == nil {
			id = id[:j]
		}
	}
	return id
}
