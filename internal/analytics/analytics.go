// Package analytics holds the triage helpers for tracked 404s: browser
// family simplification, fix suggestions derived from URL shape, and
// the CSV export.
package analytics

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rsheldon/wayfinder/internal/content"
	"github.com/rsheldon/wayfinder/internal/keywords"
	"github.com/rsheldon/wayfinder/internal/models"
	"github.com/rsheldon/wayfinder/internal/relevance"
)

// SimplifyUserAgent folds a raw User-Agent string into a small set of
// browser families. Chrome must be checked before Safari: Chrome UAs
// contain both tokens.
func SimplifyUserAgent(ua string) string {
	switch {
	case strings.Contains(ua, "Chrome"):
		return "Chrome"
	case strings.Contains(ua, "Firefox"):
		return "Firefox"
	case strings.Contains(ua, "Safari"):
		return "Safari"
	case strings.Contains(ua, "Edge"):
		return "Edge"
	case strings.Contains(ua, "bot"), strings.Contains(ua, "Bot"):
		return "Bot/Crawler"
	}
	return "Other"
}

var datedPath = regexp.MustCompile(`/(\d{4})/`)

// Fixer derives a human-readable fix suggestion for a broken URL from
// its shape, falling back to a keyword search of the content index.
type Fixer struct {
	Index content.Index
	Now   func() time.Time
}

func (f *Fixer) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// SuggestFix returns triage advice for one broken URL. Pattern checks
// run in order of specificity; the content index is only consulted
// when no pattern matches.
func (f *Fixer) SuggestFix(ctx context.Context, brokenURL string) string {
	if m := datedPath.FindStringSubmatch(brokenURL); m != nil {
		year, _ := strconv.Atoi(m[1])
		current := f.now().Year()
		if year < current {
			return fmt.Sprintf("Check for updated %d version of this content", current)
		}
	}

	if strings.Contains(brokenURL, "/blog/") {
		return "Search blog posts for similar content or create new blog post"
	}
	if strings.Contains(brokenURL, "/products/") || strings.Contains(brokenURL, "/shop/") {
		return "Check if product was moved or discontinued, setup redirect"
	}
	if strings.Contains(brokenURL, "/category/") || strings.Contains(brokenURL, "/tag/") {
		return "Check if category/tag was renamed or merged"
	}
	if strings.Contains(brokenURL, ".html") || strings.Contains(brokenURL, ".php") {
		return "Setup redirect from old file-based URL to current page"
	}

	if f.Index != nil {
		words := keywords.Extract(brokenURL)
		if len(words) > 2 {
			words = words[:2]
		}
		if len(words) > 0 {
			if candidates, err := f.Index.Candidates(ctx, 50); err == nil {
				ranked := relevance.Rank(candidates, words)
				if len(ranked) > 0 && ranked[0].Score > 0 {
					return fmt.Sprintf("Consider redirecting to: %s", ranked[0].URL)
				}
			}
		}
	}

	return "Review content and setup appropriate redirect or create new page"
}

var exportHeader = []string{
	"URL",
	"Hits",
	"Clicks",
	"Success Rate (%)",
	"Status",
	"Notes",
	"Suggested Fix",
	"First Seen",
	"Last Seen",
	"Top Referrer",
	"Referrer Hits",
}

// WriteCSV streams the tracked 404s as a CSV report. fixFor supplies
// the suggested fix per URL; a nil func leaves the column empty.
func WriteCSV(w io.Writer, entries []models.NotFoundEntry, fixFor func(url string) string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for _, e := range entries {
		fix := ""
		if fixFor != nil {
			fix = fixFor(e.URL)
		}
		record := []string{
			e.URL,
			strconv.Itoa(e.Hits),
			strconv.Itoa(e.Clicks),
			strconv.FormatFloat(round1(e.SuccessRate()), 'f', -1, 64),
			capitalize(e.Status),
			e.Notes,
			fix,
			e.FirstSeen.Format("2006-01-02 15:04:05"),
			e.LastSeen.Format("2006-01-02 15:04:05"),
			e.TopReferrer,
			strconv.Itoa(e.ReferrerHits),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
