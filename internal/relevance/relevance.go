package relevance

import (
	"sort"
	"strings"

	"github.com/rsheldon/wayfinder/internal/content"
)

// Title matches are worth more than body matches.
const (
	titlePoints = 10
	bodyPoints  = 2
)

// Scored pairs a candidate with its derived relevance score.
type Scored struct {
	content.Candidate
	Score int
}

// Score computes the lexical relevance of one candidate. Substring
// matching on purpose: it over-counts partial words ("art" in "start")
// but keeps recall high without word-boundary machinery.
func Score(c content.Candidate, keywords []string) int {
	title := strings.ToLower(c.Title)
	body := strings.ToLower(c.Body)

	score := 0
	for _, kw := range keywords {
		if strings.Contains(title, kw) {
			score += titlePoints
		}
		score += strings.Count(body, kw) * bodyPoints
	}
	return score
}

// Rank scores all candidates and sorts them by descending relevance.
// The sort is stable so ties keep the index's original order.
func Rank(candidates []content.Candidate, keywords []string) []Scored {
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, Scored{Candidate: c, Score: Score(c, keywords)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
