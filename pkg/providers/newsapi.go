package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/headline-hq/chirper/internal/domain"
)

const (
	newsAPIDefaultEndpoint = "https://newsapi.org/v2/everything"
	newsAPIDefaultPageSize = 100
	newsAPIMaxPageSize     = 100
)

// newsAPIFetcher pulls articles from the NewsAPI "everything" endpoint.
type newsAPIFetcher struct {
	client HTTPClient
	apiKey string
}

// NewNewsAPIFetcher builds a fetcher authenticated with the given API key.
func NewNewsAPIFetcher(client HTTPClient, apiKey string) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &newsAPIFetcher{
		client: client,
		apiKey: strings.TrimSpace(apiKey),
	}
}

func (f *newsAPIFetcher) Type() string {
	return ProviderTypeNewsAPI
}

func (f *newsAPIFetcher) Fetch(ctx context.Context, cfg Provider) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeNewsAPI) {
		return nil, fmt.Errorf("newsapi fetcher received incompatible provider type %q", cfg.Type)
	}
	if f.apiKey == "" {
		return nil, fmt.Errorf("newsapi provider %q has no api key", cfg.ID)
	}
	if strings.TrimSpace(cfg.Query) == "" {
		return nil, fmt.Errorf("newsapi provider %q query is empty", cfg.ID)
	}

	endpoint := cfg.SourceURL
	if endpoint == "" {
		endpoint = newsAPIDefaultEndpoint
	}

	headers := Headers(cfg)
	headers["X-Api-Key"] = f.apiKey

	resp, err := f.client.Get(ctx, buildNewsAPIURL(endpoint, cfg), headers)
	if err != nil {
		return nil, fmt.Errorf("fetch newsapi %s: %w", cfg.ID, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("newsapi %s returned status %d body: %s", cfg.ID, resp.StatusCode(), responseSnippet(body))
	}

	var payload newsAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}
	if !strings.EqualFold(payload.Status, "ok") {
		return nil, fmt.Errorf("newsapi %s error %s: %s", cfg.ID, payload.Code, payload.Message)
	}

	articles := buildArticlesFromNewsAPI(cfg.ID, payload.Articles)
	if len(articles) == 0 {
		return nil, fmt.Errorf("newsapi %s returned no usable articles", cfg.ID)
	}
	return articles, nil
}

// buildNewsAPIURL assembles the query URL for the everything endpoint.
func buildNewsAPIURL(endpoint string, cfg Provider) string {
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	sortBy := cfg.SortBy
	if sortBy == "" {
		sortBy = "popularity"
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > newsAPIMaxPageSize {
		pageSize = newsAPIDefaultPageSize
	}

	q := url.Values{}
	q.Set("q", cfg.Query)
	q.Set("language", lang)
	q.Set("sortBy", sortBy)
	q.Set("page", "1")
	q.Set("pageSize", strconv.Itoa(pageSize))

	return endpoint + "?" + q.Encode()
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Total    int              `json:"totalResults"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source      newsAPISource `json:"source"`
	Author      string        `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	ImageURL    string        `json:"urlToImage"`
	PublishedAt string        `json:"publishedAt"`
	Content     string        `json:"content"`
}

type newsAPISource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// buildArticlesFromNewsAPI maps the API payload into domain articles,
// skipping entries without a URL.
func buildArticlesFromNewsAPI(providerID string, items []newsAPIArticle) []domain.Article {
	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		u := strings.TrimSpace(item.URL)
		if u == "" {
			continue
		}

		var publishedAt time.Time
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(item.PublishedAt)); err == nil {
			publishedAt = t
		}

		articles = append(articles, domain.Article{
			ProviderID:  providerID,
			ID:          hashURL(u),
			Title:       strings.TrimSpace(item.Title),
			URL:         u,
			Description: strings.TrimSpace(item.Description),
			Content:     strings.TrimSpace(item.Content),
			ImageURL:    strings.TrimSpace(item.ImageURL),
			PublishedAt: publishedAt,
		})
	}
	return articles
}
