package compose

import (
	"testing"
	"unicode/utf8"
)

func TestSummarizePacksWholeSentences(t *testing.T) {
	text := "First sentence. Second sentence is a bit longer. Third sentence would not fit at all here."

	got := Summarize(text, 50)
	want := "First sentence. Second sentence is a bit longer."
	if got != want {
		t.Errorf("Summarize = %q, want %q", got, want)
	}
}

func TestSummarizeStopsAtBudget(t *testing.T) {
	text := "Short. This second sentence is far too long to fit inside the remaining budget of the summary."
	got := Summarize(text, 10)
	if got != "Short." {
		t.Errorf("Summarize = %q, want only the first sentence", got)
	}
}

func TestSummarizeOverlongFirstSentence(t *testing.T) {
	if got := Summarize("This single sentence is already longer than the budget allows.", 10); got != "" {
		t.Errorf("Summarize = %q, want empty for over-budget first sentence", got)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if got := Summarize("   ", 100); got != "" {
		t.Errorf("Summarize(blank) = %q", got)
	}
}

func TestSummarizeNeverExceedsBudget(t *testing.T) {
	text := "Alpha beta gamma. Delta epsilon zeta! Eta theta iota? Kappa lambda mu."
	for budget := 5; budget <= 80; budget += 5 {
		got := Summarize(text, budget)
		if n := utf8.RuneCountInString(got); n > budget {
			t.Errorf("budget %d produced %d runes: %q", budget, n, got)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One. Two! Three? Trailing tail")
	want := []string{"One.", "Two!", "Three?", "Trailing tail"}
	if len(got) != len(want) {
		t.Fatalf("splitSentences = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitSentencesKeepsDecimalNumbers(t *testing.T) {
	got := splitSentences("Inflation hit 3.5 percent. Markets fell.")
	if len(got) != 2 {
		t.Fatalf("splitSentences = %v, want 2 sentences", got)
	}
	if got[0] != "Inflation hit 3.5 percent." {
		t.Errorf("sentence[0] = %q", got[0])
	}
}
