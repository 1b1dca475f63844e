// Package crawler enriches fetched articles with page metadata so that
// sitemap-sourced entries carry enough text for composition.
package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/headline-hq/chirper/internal/domain"
	"github.com/headline-hq/chirper/internal/logger"
	"github.com/headline-hq/chirper/pkg/httpclient"
	"github.com/headline-hq/chirper/pkg/providers"
)

const (
	maxHTMLBodyBytes  = 1 << 20 // 1 MiB
	maxArticleWorkers = 10
)

// Scraper backfills article metadata by scraping HTML pages.
type Scraper struct {
	client httpclient.Client
	log    logger.Logger
}

// NewScraper creates a Scraper with the given HTTP client and logger.
func NewScraper(client httpclient.Client, log logger.Logger) *Scraper {
	if client == nil {
		client = providers.DefaultHTTPClient()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Scraper{client: client, log: log}
}

// Enrich fills missing titles and descriptions by scraping each article
// page. Articles that already carry both fields are left untouched; a
// scrape failure keeps the original entry so partial results survive.
func (s *Scraper) Enrich(ctx context.Context, cfg providers.Provider, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles)

	var pending []int
	for i, art := range articles {
		if art.Title == "" || art.Description == "" {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return out
	}

	var limiter <-chan time.Time
	if delay := cfg.RequestDelay(); delay > 0 {
		ticker := time.NewTicker(delay)
		defer ticker.Stop()
		limiter = ticker.C
	}

	jobCh := make(chan int)
	var wg sync.WaitGroup

	workers := min(len(pending), maxArticleWorkers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.drain(ctx, cfg, jobCh, limiter, articles, out)
		}()
	}

	for _, idx := range pending {
		if ctx.Err() != nil {
			break
		}
		jobCh <- idx
	}
	close(jobCh)
	wg.Wait()

	return out
}

// drain consumes indexes from jobCh, pacing requests via the limiter.
func (s *Scraper) drain(ctx context.Context, cfg providers.Provider, jobCh <-chan int, limiter <-chan time.Time, in, out []domain.Article) {
	for idx := range jobCh {
		if ctx.Err() != nil {
			return
		}

		if limiter != nil {
			select {
			case <-ctx.Done():
				return
			case <-limiter:
			}
		}

		enriched, err := s.scrape(ctx, cfg, in[idx])
		if err != nil {
			s.log.WarnObj("article metadata scrape failed", "scrape_error", map[string]any{
				"provider_id": cfg.ID,
				"url":         in[idx].URL,
				"error":       err.Error(),
			})
			continue
		}
		out[idx] = enriched
	}
}

// scrape fetches the article page and merges scraped metadata into the
// empty fields.
func (s *Scraper) scrape(ctx context.Context, cfg providers.Provider, art domain.Article) (domain.Article, error) {
	resp, err := s.client.Get(ctx, art.URL, providers.Headers(cfg))
	if err != nil {
		return art, fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != 200 {
		return art, fmt.Errorf("status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return art, err
	}

	updated := art
	if updated.Title == "" {
		updated.Title = meta.Title
	}
	if updated.Description == "" {
		updated.Description = meta.Description
	}
	if updated.Content == "" {
		updated.Content = meta.Description
	}
	if updated.ImageURL == "" && meta.ImageURL != "" {
		updated.ImageURL = resolveURL(meta.ImageURL, art.URL)
	}

	return updated, nil
}

// pageMeta holds metadata extracted from an HTML page.
type pageMeta struct {
	Title       string
	Description string
	ImageURL    string
}

// parseMeta extracts OpenGraph and fallback metadata from the HTML body.
func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	content := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	pm := pageMeta{
		Description: firstNonEmpty(
			content(`meta[property="og:description"]`),
			content(`meta[name="description"]`),
		),
		ImageURL: content(`meta[property="og:image"]`),
	}
	pm.Title = firstNonEmpty(
		content(`meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)

	return pm, nil
}

// firstNonEmpty returns the first non-blank value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// resolveURL resolves a possibly relative URL against a base URL.
func resolveURL(raw, base string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}

	return baseURL.ResolveReference(parsed).String()
}
