package content

import "context"

// Candidate is a published content item considered as a possible
// suggestion. Owned by the index; read-only to everything else.
type Candidate struct {
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Excerpt    string   `json:"excerpt"`
	Body       string   `json:"-"`
	Categories []string `json:"categories,omitempty"`
}

// Summary is the compact form of a candidate fed to prompt builders.
type Summary struct {
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Excerpt    string   `json:"excerpt,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Index supplies a bounded list of candidate content items. The index
// decides recency and ordering; callers only consume the result.
type Index interface {
	Candidates(ctx context.Context, limit int) ([]Candidate, error)
}

// Summarize maps candidates to prompt summaries, capped at max items.
func Summarize(candidates []Candidate, max int) []Summary {
	if max > 0 && len(candidates) > max {
		candidates = candidates[:max]
	}
	summaries := make([]Summary, 0, len(candidates))
	for _, c := range candidates {
		summaries = append(summaries, Summary{
			Title:      c.Title,
			URL:        c.URL,
			Excerpt:    c.Excerpt,
			Categories: c.Categories,
		})
	}
	return summaries
}
