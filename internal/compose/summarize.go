package compose

import (
	"strings"
	"unicode/utf8"
)

// Summarize packs whole sentences from text into a character budget.
// Sentences are taken in order; the first one that would overflow the
// budget ends the summary. A single over-budget sentence yields an
// empty summary rather than a mid-sentence cut.
func Summarize(text string, maxLen int) string {
	var summary strings.Builder
	used := 0

	for _, sentence := range splitSentences(text) {
		n := utf8.RuneCountInString(sentence)
		if used+n > maxLen {
			break
		}
		summary.WriteString(sentence)
		summary.WriteByte(' ')
		used += n + 1
	}

	return strings.TrimSpace(summary.String())
}

// splitSentences cuts text at terminal punctuation followed by a space
// or end of input. The terminator stays with its sentence. Dotted
// abbreviations split too aggressively here, which only costs summary
// length, never correctness.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	runes := []rune(text)
	start := 0

	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] != ' ' {
			continue
		}

		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
