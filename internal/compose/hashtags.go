package compose

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxHashtags   = 3
	maxHashtagLen = 20
)

var (
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// stopwords excludes capitalized function words that open sentences from
// being mistaken for names.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "of": {}, "to": {}, "for": {},
	"with": {}, "by": {}, "from": {}, "as": {}, "it": {}, "its": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "his": {},
	"her": {}, "their": {}, "he": {}, "she": {}, "they": {}, "we": {},
	"after": {}, "before": {}, "over": {}, "under": {}, "about": {},
	"new": {}, "more": {}, "will": {}, "has": {}, "have": {}, "had": {},
}

// Hashtags derives up to three hashtags from the article text and
// keywords. Candidate phrases are provider keywords plus capitalized
// word runs of at most two words; candidates are ranked by frequency,
// then by length (shorter first), then lexically for determinism.
func Hashtags(text string, keywords []string) []string {
	counts := make(map[string]int)

	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if len(strings.Fields(kw)) > 2 {
			continue
		}
		counts[kw]++
	}

	for _, phrase := range capitalizedPhrases(text) {
		counts[strings.ToLower(phrase)]++
	}

	type ranked struct {
		phrase string
		count  int
	}
	phrases := make([]ranked, 0, len(counts))
	for p, c := range counts {
		phrases = append(phrases, ranked{phrase: p, count: c})
	}
	sort.Slice(phrases, func(i, j int) bool {
		if phrases[i].count != phrases[j].count {
			return phrases[i].count > phrases[j].count
		}
		if len(phrases[i].phrase) != len(phrases[j].phrase) {
			return len(phrases[i].phrase) < len(phrases[j].phrase)
		}
		return phrases[i].phrase < phrases[j].phrase
	})

	var hashtags []string
	seen := make(map[string]struct{})
	for _, p := range phrases {
		if len(hashtags) >= maxHashtags {
			break
		}

		tag := toHashtag(p.phrase)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		hashtags = append(hashtags, tag)
	}

	return hashtags
}

// capitalizedPhrases extracts runs of capitalized words from text,
// clipped to two words, skipping stopwords.
func capitalizedPhrases(text string) []string {
	words := strings.Fields(nonWordRe.ReplaceAllString(text, " "))

	var phrases []string
	var run []string

	flush := func() {
		if len(run) == 0 {
			return
		}
		if len(run) > 2 {
			run = run[:2]
		}
		phrases = append(phrases, strings.Join(run, " "))
		run = nil
	}

	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if _, stop := stopwords[strings.ToLower(w)]; !stop && unicode.IsUpper(r) {
			run = append(run, w)
			continue
		}
		flush()
	}
	flush()

	return phrases
}

// toHashtag renders a phrase as a #TitleCase tag, or "" when the result
// is degenerate or too long.
func toHashtag(phrase string) string {
	clean := nonWordRe.ReplaceAllString(phrase, "")
	clean = whitespaceRe.ReplaceAllString(clean, " ")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return ""
	}

	var b strings.Builder
	b.WriteByte('#')
	for _, word := range strings.Fields(clean) {
		runes := []rune(word)
		b.WriteRune(unicode.ToUpper(runes[0]))
		b.WriteString(strings.ToLower(string(runes[1:])))
	}

	tag := b.String()
	if utf8.RuneCountInString(tag) <= 1 || utf8.RuneCountInString(tag) > maxHashtagLen {
		return ""
	}
	return tag
}
