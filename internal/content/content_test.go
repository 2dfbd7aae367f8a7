package content

import "testing"

func TestSummarizeCapsAtMax(t *testing.T) {
	candidates := []Candidate{
		{Title: "One", URL: "/one", Body: "dropped from summaries"},
		{Title: "Two", URL: "/two"},
		{Title: "Three", URL: "/three"},
	}

	summaries := Summarize(candidates, 2)
	if len(summaries) != 2 {
		t.Fatalf("len = %d, want 2", len(summaries))
	}
	if summaries[0].Title != "One" || summaries[1].Title != "Two" {
		t.Errorf("order changed: %v", summaries)
	}
}

func TestSummarizeZeroMaxKeepsAll(t *testing.T) {
	candidates := []Candidate{{Title: "A"}, {Title: "B"}}
	if got := Summarize(candidates, 0); len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	if got := Summarize(nil, 5); len(got) != 0 {
		t.Errorf("nil candidates produced %v", got)
	}
}

func TestFirstWords(t *testing.T) {
	if got := firstWords("one two three four", 2); got != "one two" {
		t.Errorf("firstWords() = %q", got)
	}
	if got := firstWords("short", 30); got != "short" {
		t.Errorf("firstWords() = %q", got)
	}
	if got := firstWords("", 5); got != "" {
		t.Errorf("firstWords() = %q", got)
	}
}
