package domain

import "time"

// Domain contains the core models shared across fetchers, composition
// and publishing.

// Article is one candidate news item.
type Article struct {
	ProviderID  string
	ID          string
	Title       string
	URL         string
	Description string
	Content     string
	ImageURL    string
	Keywords    []string
	PublishedAt time.Time
}

// Post is the composed social update derived from an article.
type Post struct {
	Text       string
	ArticleURL string
	ProviderID string
	CreatedAt  time.Time
}
