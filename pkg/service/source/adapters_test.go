package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/pythia/pkg/domain/types"
)

func TestArxivSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.String(t, r.URL.Query().Get("search_query")).NotEqual("")
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.07041v2</id>
    <title>Test Paper Title</title>
    <summary>An abstract about testing.</summary>
    <published>2023-01-17T12:00:00Z</published>
    <author><name>Jane Doe</name></author>
    <author><name>John Roe</name></author>
  </entry>
</feed>`))
	}))
	defer srv.Close()

	orig := arxivAPIBase
	arxivAPIBase = srv.URL
	defer func() { arxivAPIBase = orig }()

	adapter := NewArxiv()
	gt.Value(t, adapter.Kind()).Equal(types.SourceTypeArxiv)

	records, err := adapter.Search(context.Background(), &Request{
		Query:      "testing methods",
		MaxResults: 5,
	})
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(1)
	gt.Value(t, records[0].Title).Equal("Test Paper Title")
	gt.Value(t, records[0].Content).Equal("An abstract about testing.")
	gt.Value(t, records[0].ExternalID).Equal("2301.07041")
	gt.Array(t, records[0].Authors).Equal([]string{"Jane Doe", "John Roe"})
	gt.Value(t, records[0].PublishedAt).NotEqual(nil)
}

func TestArxivEmptyQuery(t *testing.T) {
	adapter := NewArxiv()
	_, err := adapter.Search(context.Background(), &Request{Query: "  "})
	gt.Error(t, err)
}

func TestSemanticScholarSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Header.Get("x-api-key")).Equal("test-key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
  "data": [
    {
      "paperId": "abc123",
      "title": "Graph Paper",
      "abstract": "About graphs.",
      "url": "https://www.semanticscholar.org/paper/abc123",
      "publicationDate": "2022-06-01",
      "authors": [{"name": "A. Scholar"}]
    }
  ]
}`))
	}))
	defer srv.Close()

	orig := semanticAPIBase
	semanticAPIBase = srv.URL
	defer func() { semanticAPIBase = orig }()

	adapter := NewSemanticScholar("test-key")
	records, err := adapter.Search(context.Background(), &Request{
		Query:      "graph theory",
		MaxResults: 3,
	})
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(1)
	gt.Value(t, records[0].SourceType).Equal(types.SourceTypeSemanticScholar)
	gt.Value(t, records[0].ExternalID).Equal("abc123")
	gt.Value(t, records[0].Content).Equal("About graphs.")
}

func TestPubMedSearchAndFetch(t *testing.T) {
	searchSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Query().Get("retmode")).Equal("json")
		w.Write([]byte(`{"esearchresult": {"idlist": ["11111", "22222"]}}`))
	}))
	defer searchSrv.Close()

	fetchSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>11111</PMID>
      <Article>
        <ArticleTitle>Clinical Study Title</ArticleTitle>
        <Abstract><AbstractText>First abstract.</AbstractText></Abstract>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`))
	}))
	defer fetchSrv.Close()

	origSearch, origFetch := pubmedSearchAPIBase, pubmedFetchAPIBase
	pubmedSearchAPIBase = searchSrv.URL
	pubmedFetchAPIBase = fetchSrv.URL
	defer func() {
		pubmedSearchAPIBase = origSearch
		pubmedFetchAPIBase = origFetch
	}()

	adapter := NewPubMed("")
	records, err := adapter.Search(context.Background(), &Request{
		Query:      "cancer therapy",
		MaxResults: 5,
	})
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(2)
	// The primary call is metadata only
	gt.Value(t, records[0].Content).Equal("")
	gt.Value(t, records[0].ExternalID).Equal("11111")

	fetcher := adapter.(AbstractFetcher)
	abstracts, err := fetcher.FetchAbstracts(context.Background(), []string{"11111"})
	gt.NoError(t, err).Required()
	gt.Value(t, abstracts["11111"]).Equal("Clinical Study Title\n\nFirst abstract.")
}

func TestWebSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Header.Get("X-Subscription-Token")).Equal("brave-key")
		w.Write([]byte(`{
  "web": {
    "results": [
      {"title": "Result One", "url": "https://example.com/1", "description": "First hit."}
    ]
  }
}`))
	}))
	defer srv.Close()

	orig := webAPIBase
	webAPIBase = srv.URL
	defer func() { webAPIBase = orig }()

	adapter := NewWeb("brave-key")
	records, err := adapter.Search(context.Background(), &Request{
		Query:      "anything",
		MaxResults: 5,
	})
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(1)
	gt.Value(t, records[0].Title).Equal("Result One")
}

func TestWebSearchRequiresAPIKey(t *testing.T) {
	adapter := NewWeb("")
	_, err := adapter.Search(context.Background(), &Request{Query: "anything"})
	gt.Error(t, err)
}

func TestAdapterNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	orig := semanticAPIBase
	semanticAPIBase = srv.URL
	defer func() { semanticAPIBase = orig }()

	adapter := NewSemanticScholar("")
	_, err := adapter.Search(context.Background(), &Request{Query: "q", MaxResults: 1})
	gt.Error(t, err)
}
