package compose

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/headline-hq/chirper/internal/domain"
)

const (
	summaryBudget = 180
	postLimit     = 280
	ellipsis      = "..."
)

// Post renders the article into a publishable update:
//
//	<summary>
//	<article url>
//	<hashtags>
//
// hard-truncated to the 280-character platform limit.
func Post(art domain.Article, now time.Time) domain.Post {
	fullText := fmt.Sprintf("%s. %s", strings.TrimSpace(art.Title), strings.TrimSpace(art.Description))

	summary := Summarize(fullText, summaryBudget)
	if summary == "" {
		summary = truncate(fullText, summaryBudget)
	}

	parts := []string{summary, art.URL}
	if tags := Hashtags(fullText, art.Keywords); len(tags) > 0 {
		parts = append(parts, strings.Join(tags, " "))
	}

	text := strings.Join(parts, "\n")
	if utf8.RuneCountInString(text) > postLimit {
		text = truncate(text, postLimit-len(ellipsis)) + ellipsis
	}

	return domain.Post{
		Text:       text,
		ArticleURL: art.URL,
		ProviderID: art.ProviderID,
		CreatedAt:  now,
	}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
