package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/headline-hq/chirper/internal/domain"
	"github.com/headline-hq/chirper/pkg/httpclient"
	"github.com/headline-hq/chirper/pkg/providers"
)

const articlePage = `<!doctype html>
<html><head>
<title>Fallback Title</title>
<meta property="og:title" content="OG Title">
<meta property="og:description" content="OG description of the story.">
<meta property="og:image" content="/img/lead.jpg">
</head><body></body></html>`

func TestEnrichBackfillsMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	s := NewScraper(httpclient.NewRestyClient(5*time.Second), nil)
	in := []domain.Article{
		{URL: srv.URL + "/story", Title: ""},
		{URL: srv.URL + "/other", Title: "Kept Title", Description: "kept description"},
	}

	out := s.Enrich(context.Background(), providers.Provider{ID: "wire"}, in)

	if out[0].Title != "OG Title" {
		t.Errorf("title = %q, want scraped og:title", out[0].Title)
	}
	if out[0].Description != "OG description of the story." {
		t.Errorf("description = %q", out[0].Description)
	}
	if out[0].ImageURL != srv.URL+"/img/lead.jpg" {
		t.Errorf("image url = %q, want resolved absolute url", out[0].ImageURL)
	}

	if out[1].Title != "Kept Title" || out[1].Description != "kept description" {
		t.Errorf("complete article was modified: %+v", out[1])
	}
}

func TestEnrichKeepsOriginalOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	s := NewScraper(httpclient.NewRestyClient(5*time.Second), nil)
	in := []domain.Article{{URL: srv.URL + "/story", Title: "Original"}}

	out := s.Enrich(context.Background(), providers.Provider{ID: "wire"}, in)
	if out[0].Title != "Original" {
		t.Errorf("title = %q, want original kept", out[0].Title)
	}
}

func TestEnrichHonoursCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScraper(httpclient.NewRestyClient(5*time.Second), nil)
	in := []domain.Article{{URL: srv.URL + "/a"}, {URL: srv.URL + "/b"}}

	out := s.Enrich(ctx, providers.Provider{ID: "wire", RequestDelayMs: 50}, in)
	if len(out) != len(in) {
		t.Fatalf("partial result length %d, want %d", len(out), len(in))
	}
}

func TestParseMetaFallsBackToTitleTag(t *testing.T) {
	meta, err := parseMeta([]byte(`<html><head><title> Plain Title </title></head></html>`))
	if err != nil {
		t.Fatal(err)
	}
	if meta.Title != "Plain Title" {
		t.Errorf("title = %q", meta.Title)
	}
}

func TestResolveURL(t *testing.T) {
	if got := resolveURL("/a.jpg", "https://example.com/story/x"); got != "https://example.com/a.jpg" {
		t.Errorf("resolveURL = %q", got)
	}
	if got := resolveURL("https://cdn.example.com/a.jpg", "https://example.com"); got != "https://cdn.example.com/a.jpg" {
		t.Errorf("absolute url changed: %q", got)
	}
}
