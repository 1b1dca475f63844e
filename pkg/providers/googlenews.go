package providers

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/headline-hq/chirper/internal/domain"
)

// googleNewsFetcher pulls articles from a Google News sitemap, following
// sitemap indexes when the root document nests further sitemaps.
type googleNewsFetcher struct {
	client HTTPClient
}

// NewGoogleNewsFetcher builds a fetcher for Google News sitemap providers.
func NewGoogleNewsFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &googleNewsFetcher{client: client}
}

func (f *googleNewsFetcher) Type() string {
	return ProviderTypeGoogleNews
}

func (f *googleNewsFetcher) Fetch(ctx context.Context, cfg Provider) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeGoogleNews) {
		return nil, fmt.Errorf("google news fetcher received incompatible provider type %q", cfg.Type)
	}
	if strings.TrimSpace(cfg.SourceURL) == "" {
		return nil, fmt.Errorf("provider %q source_url is empty", cfg.ID)
	}

	headers := Headers(cfg)

	entries, err := f.resolveSitemap(ctx, cfg, cfg.SourceURL, headers, make(map[string]struct{}))
	if err != nil {
		return nil, err
	}

	articles := articlesFromSitemap(cfg.ID, entries)
	if len(articles) == 0 {
		return nil, fmt.Errorf("%s sitemap returned no records", cfg.ID)
	}
	return articles, nil
}

// resolveSitemap fetches the sitemap at url and returns its article
// entries, recursing through sitemap indexes. Visited URLs are tracked to
// break cycles in malformed indexes.
func (f *googleNewsFetcher) resolveSitemap(ctx context.Context, cfg Provider, url string, headers map[string]string, visited map[string]struct{}) ([]sitemapEntry, error) {
	if _, seen := visited[url]; seen {
		return nil, nil
	}
	visited[url] = struct{}{}

	resp, err := f.client.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch %s sitemap: %w", cfg.ID, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s sitemap returned status %d body: %s", cfg.ID, resp.StatusCode(), responseSnippet(body))
	}

	var doc sitemapDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode %s sitemap: %w", cfg.ID, err)
	}
	if len(doc.Entries) > 0 {
		return doc.Entries, nil
	}

	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err != nil {
		return nil, fmt.Errorf("decode %s sitemap index: %w", cfg.ID, err)
	}

	var all []sitemapEntry
	for _, nested := range index.Sitemaps {
		loc := strings.TrimSpace(nested.Loc)
		if loc == "" {
			continue
		}

		entries, err := f.resolveSitemap(ctx, cfg, loc, headers, visited)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	return all, nil
}

type sitemapDoc struct {
	Entries []sitemapEntry `xml:"url"`
}

type sitemapEntry struct {
	Loc    string         `xml:"loc"`
	News   sitemapNews    `xml:"news"`
	Images []sitemapImage `xml:"image:image"`
}

type sitemapNews struct {
	PublicationDate string `xml:"publication_date"`
	Keywords        string `xml:"keywords"`
	Title           string `xml:"title"`
}

type sitemapImage struct {
	Loc string `xml:"image:loc"`
}

type sitemapIndex struct {
	Sitemaps []sitemapIndexEntry `xml:"sitemap"`
}

type sitemapIndexEntry struct {
	Loc string `xml:"loc"`
}

// articlesFromSitemap maps sitemap entries into domain articles.
func articlesFromSitemap(providerID string, entries []sitemapEntry) []domain.Article {
	articles := make([]domain.Article, 0, len(entries))
	for _, entry := range entries {
		loc := strings.TrimSpace(entry.Loc)
		if loc == "" {
			continue
		}

		articles = append(articles, domain.Article{
			ProviderID:  providerID,
			ID:          hashURL(loc),
			Title:       strings.TrimSpace(entry.News.Title),
			URL:         loc,
			ImageURL:    firstImageURL(entry.Images),
			Keywords:    splitKeywords(entry.News.Keywords),
			PublishedAt: parsePublicationDate(entry.News.PublicationDate),
		})
	}
	return articles
}

// firstImageURL returns the first non-empty image location.
func firstImageURL(images []sitemapImage) string {
	for _, img := range images {
		if loc := strings.TrimSpace(img.Loc); loc != "" {
			return loc
		}
	}
	return ""
}

// splitKeywords splits a comma-separated keyword list into trimmed values.
func splitKeywords(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	if len(keywords) == 0 {
		return nil
	}
	return keywords
}

// parsePublicationDate parses an RFC 3339 publication date, returning the
// zero time when absent or malformed.
func parsePublicationDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}

	return time.Time{}
}
