// Package compose selects a postable article and renders the social
// update text: a sentence-budget summary, the article link and up to
// three generated hashtags, capped at the platform's 280 characters.
package compose

import (
	"strings"

	"github.com/headline-hq/chirper/internal/domain"
)

// consentWallMarker appears in scraped summaries of pages hidden behind
// a cookie-consent interstitial; such articles carry no real text.
const consentWallMarker = "If you click 'Accept all', we and our partners"

// removedMarker is NewsAPI's placeholder for withdrawn articles.
const removedMarker = "[Removed]"

// Usable reports whether the article has enough clean text to post and
// has not been posted before.
func Usable(art domain.Article, alreadyPosted func(url string) bool) bool {
	if art.Title == "" || art.Description == "" || art.Content == "" || art.URL == "" {
		return false
	}
	if alreadyPosted != nil && alreadyPosted(art.URL) {
		return false
	}
	if strings.Contains(art.Title, removedMarker) {
		return false
	}
	if strings.Contains(art.Description, consentWallMarker) || strings.Contains(art.Content, consentWallMarker) {
		return false
	}
	return true
}

// Pick returns the first usable article in feed order.
func Pick(articles []domain.Article, alreadyPosted func(url string) bool) (domain.Article, bool) {
	for _, art := range articles {
		if Usable(art, alreadyPosted) {
			return art, true
		}
	}
	return domain.Article{}, false
}
