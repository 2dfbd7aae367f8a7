package suggest

import (
	"context"

	"github.com/rsheldon/wayfinder/internal/content"
	"github.com/rsheldon/wayfinder/internal/keywords"
	"github.com/rsheldon/wayfinder/internal/relevance"
)

// MaxSuggestions caps every suggestion list shown to a visitor.
const MaxSuggestions = 4

// Suggestion is a candidate promoted into user-facing form. Reason is
// either the candidate's excerpt (local scoring) or an AI-authored
// justification.
type Suggestion struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// Request describes the broken navigation a selector works from.
type Request struct {
	URL      string
	Path     string
	Referrer string
}

// Selector is one strategy for producing a suggestion list. Local
// scoring and AI-authored suggestions both implement it; callers pick
// one at wiring time rather than hardcoding a path.
type Selector interface {
	Suggest(ctx context.Context, req Request) ([]Suggestion, error)
}

// FromScored maps ranked candidates into suggestions, dropping body and
// score and using the excerpt as the visible reason. Zero-score
// candidates are skipped; they matched nothing.
func FromScored(ranked []relevance.Scored, max int) []Suggestion {
	if max <= 0 || max > MaxSuggestions {
		max = MaxSuggestions
	}
	var out []Suggestion
	for _, s := range ranked {
		if s.Score <= 0 {
			continue
		}
		out = append(out, Suggestion{Title: s.Title, URL: s.URL, Reason: s.Excerpt})
		if len(out) >= max {
			break
		}
	}
	return out
}

// Local ranks index candidates against keywords extracted from the
// broken path. No network involved.
type Local struct {
	Index content.Index

	// CandidateLimit bounds how many items are pulled from the index
	// for scoring. Zero means the default of 20.
	CandidateLimit int

	// Max bounds the returned list; zero means MaxSuggestions.
	Max int
}

func (l *Local) Suggest(ctx context.Context, req Request) ([]Suggestion, error) {
	terms := keywords.Extract(req.Path)
	if len(terms) == 0 {
		return nil, nil
	}

	limit := l.CandidateLimit
	if limit <= 0 {
		limit = 20
	}
	candidates, err := l.Index.Candidates(ctx, limit)
	if err != nil {
		return nil, err
	}

	return FromScored(relevance.Rank(candidates, terms), l.Max), nil
}

// Truncate enforces the suggestion cap on lists produced elsewhere,
// such as AI-authored ones.
func Truncate(list []Suggestion, max int) []Suggestion {
	if max <= 0 || max > MaxSuggestions {
		max = MaxSuggestions
	}
	if len(list) > max {
		return list[:max]
	}
	return list
}
