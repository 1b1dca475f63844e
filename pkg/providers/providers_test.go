package providers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRegistry(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRegistry(t *testing.T) {
	t.Setenv("TEST_NEWS_QUERY", "politics OR elections")

	path := writeRegistry(t, "providers.yaml", `
providers:
  - id: headlines
    type: newsapi
    query: ${TEST_NEWS_QUERY}
    language: en
  - id: wire
    type: google-news
    source_url: https://example.com/news-sitemap.xml
    enabled: false
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	if got := len(reg.All()); got != 2 {
		t.Fatalf("All() = %d entries, want 2", got)
	}
	if got := len(reg.Enabled()); got != 1 {
		t.Errorf("Enabled() = %d entries, want 1", got)
	}

	cfg, ok := reg.ByID("headlines")
	if !ok {
		t.Fatal("ByID(headlines) not found")
	}
	if cfg.Query != "politics OR elections" {
		t.Errorf("env expansion failed, query = %q", cfg.Query)
	}
}

func TestLoadRegistryRejectsDuplicates(t *testing.T) {
	path := writeRegistry(t, "providers.yaml", `
providers:
  - id: a
    type: newsapi
    query: q
  - id: a
    type: newsapi
    query: q
`)

	if _, err := LoadRegistry(path); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("err = %v, want duplicate id error", err)
	}
}

func TestLoadRegistryValidatesTypes(t *testing.T) {
	cases := []struct {
		name    string
		content string
		errPart string
	}{
		{
			name:    "unknown type",
			content: "providers:\n  - id: x\n    type: rss\n",
			errPart: "not supported",
		},
		{
			name:    "newsapi without query",
			content: "providers:\n  - id: x\n    type: newsapi\n",
			errPart: "query is required",
		},
		{
			name:    "google-news without source",
			content: "providers:\n  - id: x\n    type: google-news\n",
			errPart: "source_url is required",
		},
		{
			name:    "missing id",
			content: "providers:\n  - type: newsapi\n    query: q\n",
			errPart: "id is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeRegistry(t, "providers.yaml", tc.content)
			_, err := LoadRegistry(path)
			if err == nil || !strings.Contains(err.Error(), tc.errPart) {
				t.Fatalf("err = %v, want %q", err, tc.errPart)
			}
		})
	}
}

func TestFetcherRegistrySelectsByType(t *testing.T) {
	reg := DefaultFetcherRegistry(nil, "key")

	f, err := reg.FetcherFor(Provider{ID: "a", Type: "newsapi"})
	if err != nil {
		t.Fatalf("FetcherFor(newsapi): %v", err)
	}
	if f.Type() != ProviderTypeNewsAPI {
		t.Errorf("fetcher type = %q", f.Type())
	}

	if _, err := reg.FetcherFor(Provider{ID: "b", Type: "rss"}); err == nil {
		t.Error("expected error for unregistered type")
	}
}

func TestHeadersMergesProviderHeaders(t *testing.T) {
	headers := Headers(Provider{ExtraHeaders: map[string]string{
		"Accept":   "application/xml",
		" Empty ":  "",
		"X-Custom": " v ",
	}})

	if headers["User-Agent"] == "" {
		t.Error("default User-Agent missing")
	}
	if headers["Accept"] != "application/xml" {
		t.Errorf("Accept = %q", headers["Accept"])
	}
	if headers["X-Custom"] != "v" {
		t.Errorf("X-Custom = %q, want trimmed value", headers["X-Custom"])
	}
	if _, ok := headers["Empty"]; ok {
		t.Error("empty header should be dropped")
	}
}
