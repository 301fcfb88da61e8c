package source

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/domain/types"
	"github.com/secmon-lab/pythia/pkg/utils/safe"
)

// NCBI eutils endpoints. Declared as vars so tests can substitute httptest
// servers.
var (
	pubmedSearchAPIBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedFetchAPIBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

type pubmedAdapter struct {
	client *http.Client
	apiKey string
}

// NewPubMed creates the PubMed adapter. The primary call returns article IDs
// and titles only; abstracts are enriched by a second FetchAbstracts batch.
func NewPubMed(apiKey string) Adapter {
	return &pubmedAdapter{
		client: newHTTPClient(),
		apiKey: apiKey,
	}
}

func (a *pubmedAdapter) Kind() types.SourceType {
	return types.SourceTypePubMed
}

func (a *pubmedAdapter) Search(ctx context.Context, req *Request) ([]*model.SourceRecord, error) {
	if req.Query == "" {
		return nil, goerr.New("empty PubMed query")
	}

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {req.Query},
		"retmax":  {fmt.Sprintf("%d", req.MaxResults)},
		"retmode": {"json"},
		"sort":    {"relevance"},
	}
	if a.apiKey != "" {
		params.Set("api_key", a.apiKey)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedSearchAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create PubMed request")
	}
	httpReq.Header.Set("User-Agent", defaultUserAgent)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "PubMed API request failed")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("PubMed API returned non-OK status", goerr.V("status", resp.StatusCode))
	}

	var sr pubmedSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, goerr.Wrap(err, "failed to parse PubMed response")
	}

	records := make([]*model.SourceRecord, 0, len(sr.Result.IDList))
	for _, id := range sr.Result.IDList {
		records = append(records, &model.SourceRecord{
			Title:      fmt.Sprintf("PubMed article %s", id),
			URL:        "https://pubmed.ncbi.nlm.nih.gov/" + id + "/",
			SourceType: types.SourceTypePubMed,
			ExternalID: id,
		})
	}

	return records, nil
}

// FetchAbstracts retrieves abstracts (and real titles) for the given PubMed
// IDs in one efetch call. Implements AbstractFetcher.
func (a *pubmedAdapter) FetchAbstracts(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
		"rettype": {"abstract"},
	}
	if a.apiKey != "" {
		params.Set("api_key", a.apiKey)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedFetchAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create PubMed fetch request")
	}
	httpReq.Header.Set("User-Agent", defaultUserAgent)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "PubMed fetch request failed")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("PubMed fetch returned non-OK status", goerr.V("status", resp.StatusCode))
	}

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, goerr.Wrap(err, "failed to parse PubMed fetch response")
	}

	abstracts := make(map[string]string, len(set.Articles))
	for _, article := range set.Articles {
		text := strings.TrimSpace(strings.Join(article.Citation.Article.Abstract.Texts, "\n"))
		title := strings.TrimSpace(article.Citation.Article.Title)
		if title != "" {
			text = title + "\n\n" + text
		}
		abstracts[article.Citation.PMID] = text
	}

	return abstracts, nil
}

type pubmedSearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// PubMed efetch XML structures (PubmedArticleSet subset).
type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			Title    string `xml:"ArticleTitle"`
			Abstract struct {
				Texts []string `xml:"AbstractText"`
			} `xml:"Abstract"`
		} `xml:"Article"`
	} `xml:"MedlineCitation"`
}
