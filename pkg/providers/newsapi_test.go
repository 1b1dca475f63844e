package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/headline-hq/chirper/pkg/httpclient"
)

const newsAPIBody = `{
	"status": "ok",
	"totalResults": 2,
	"articles": [
		{
			"source": {"id": "ap", "name": "AP"},
			"title": "Senate passes spending bill",
			"description": "The bill now heads to the House.",
			"url": "https://example.com/senate-bill",
			"urlToImage": "https://example.com/img.jpg",
			"publishedAt": "2024-08-01T12:00:00Z",
			"content": "The Senate passed..."
		},
		{
			"source": {"id": null, "name": "Blog"},
			"title": "No link here",
			"description": "d",
			"url": "",
			"publishedAt": "bad-date",
			"content": "c"
		}
	]
}`

func TestNewsAPIFetch(t *testing.T) {
	var gotKey, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		gotQuery = r.URL.Query().Get("q")
		if r.URL.Query().Get("language") != "en" {
			t.Errorf("language = %q", r.URL.Query().Get("language"))
		}
		if r.URL.Query().Get("sortBy") != "popularity" {
			t.Errorf("sortBy = %q", r.URL.Query().Get("sortBy"))
		}
		if r.URL.Query().Get("pageSize") != "100" {
			t.Errorf("pageSize = %q", r.URL.Query().Get("pageSize"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(newsAPIBody))
	}))
	defer srv.Close()

	f := NewNewsAPIFetcher(httpclient.NewRestyClient(5*time.Second), "secret-key")
	articles, err := f.Fetch(context.Background(), Provider{
		ID:        "headlines",
		Type:      ProviderTypeNewsAPI,
		SourceURL: srv.URL,
		Query:     "politics OR elections",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotKey != "secret-key" {
		t.Errorf("X-Api-Key = %q", gotKey)
	}
	if gotQuery != "politics OR elections" {
		t.Errorf("q = %q", gotQuery)
	}

	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1 (url-less entry skipped)", len(articles))
	}
	a := articles[0]
	if a.Title != "Senate passes spending bill" {
		t.Errorf("title = %q", a.Title)
	}
	if a.ProviderID != "headlines" {
		t.Errorf("provider id = %q", a.ProviderID)
	}
	if a.ID == "" {
		t.Error("article id not derived from url")
	}
	if a.PublishedAt.IsZero() {
		t.Error("publishedAt not parsed")
	}
}

func TestNewsAPIFetchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"error","code":"rateLimited","message":"too many requests"}`))
	}))
	defer srv.Close()

	f := NewNewsAPIFetcher(httpclient.NewRestyClient(5*time.Second), "k")
	_, err := f.Fetch(context.Background(), Provider{ID: "h", Type: ProviderTypeNewsAPI, SourceURL: srv.URL, Query: "q"})
	if err == nil || !strings.Contains(err.Error(), "rateLimited") {
		t.Fatalf("err = %v, want rateLimited error", err)
	}
}

func TestNewsAPIFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewNewsAPIFetcher(httpclient.NewRestyClient(5*time.Second), "k")
	_, err := f.Fetch(context.Background(), Provider{ID: "h", Type: ProviderTypeNewsAPI, SourceURL: srv.URL, Query: "q"})
	if err == nil || !strings.Contains(err.Error(), "status 502") {
		t.Fatalf("err = %v, want status 502 error", err)
	}
}

func TestNewsAPIFetchRequiresKey(t *testing.T) {
	f := NewNewsAPIFetcher(nil, "")
	_, err := f.Fetch(context.Background(), Provider{ID: "h", Type: ProviderTypeNewsAPI, Query: "q"})
	if err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("err = %v, want api key error", err)
	}
}
