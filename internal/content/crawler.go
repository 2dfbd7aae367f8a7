package content

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
)

// Sink receives crawled pages, usually the content item store.
type Sink interface {
	UpsertContentItem(item Candidate) error
}

// Crawler walks the host site and feeds published pages into a Sink so
// the index has fresh candidates to score.
type Crawler struct {
	userAgent      string
	requestTimeout time.Duration
	maxPages       int
}

// NewCrawler creates a crawler with sane defaults for a content site.
// maxPages caps the crawl; zero or negative means the default of 200.
func NewCrawler(maxPages int) *Crawler {
	if maxPages <= 0 {
		maxPages = 200
	}
	return &Crawler{
		userAgent:      "Wayfinder/1.0 (404 recovery assistant)",
		requestTimeout: 30 * time.Second,
		maxPages:       maxPages,
	}
}

// Crawl visits pages under baseURL, same host only, and upserts one
// candidate per page. Returns the number of pages stored.
func (c *Crawler) Crawl(ctx context.Context, baseURL string, sink Sink) (int, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return 0, fmt.Errorf("invalid base URL %q", baseURL)
	}

	collector := colly.NewCollector(
		colly.UserAgent(c.userAgent),
		colly.AllowedDomains(parsed.Host),
		colly.MaxDepth(3),
	)
	collector.SetRequestTimeout(c.requestTimeout)

	var mu sync.Mutex
	stored := 0
	pages := make(map[string]*Candidate)

	pageFor := func(u string) *Candidate {
		if p, ok := pages[u]; ok {
			return p
		}
		p := &Candidate{URL: u}
		pages[u] = p
		return p
	}

	collector.OnHTML("title", func(e *colly.HTMLElement) {
		mu.Lock()
		defer mu.Unlock()
		p := pageFor(e.Request.URL.String())
		if p.Title == "" {
			p.Title = strings.TrimSpace(e.Text)
		}
	})

	collector.OnHTML(`meta[name="description"]`, func(e *colly.HTMLElement) {
		mu.Lock()
		defer mu.Unlock()
		pageFor(e.Request.URL.String()).Excerpt = strings.TrimSpace(e.Attr("content"))
	})

	collector.OnHTML(`meta[property="article:tag"], meta[name="keywords"]`, func(e *colly.HTMLElement) {
		mu.Lock()
		defer mu.Unlock()
		p := pageFor(e.Request.URL.String())
		for _, tag := range strings.Split(e.Attr("content"), ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				p.Categories = append(p.Categories, tag)
			}
		}
	})

	collector.OnHTML("article p, main p, h1, h2, h3", func(e *colly.HTMLElement) {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		p := pageFor(e.Request.URL.String())
		if len(p.Body) < 20000 {
			p.Body += text + "\n"
		}
	})

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		mu.Lock()
		visited := len(pages)
		mu.Unlock()
		if visited >= c.maxPages {
			return
		}
		if err := ctx.Err(); err != nil {
			return
		}
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" || strings.Contains(link, "#") {
			return
		}
		e.Request.Visit(link)
	})

	collector.OnError(func(r *colly.Response, err error) {
		slog.Debug("crawl request failed", "url", r.Request.URL.String(), "error", err)
	})

	if err := collector.Visit(baseURL); err != nil {
		return 0, fmt.Errorf("crawl %s: %w", baseURL, err)
	}
	collector.Wait()

	mu.Lock()
	defer mu.Unlock()
	for _, p := range pages {
		if p.Title == "" && p.Body == "" {
			continue
		}
		if p.Excerpt == "" {
			p.Excerpt = firstWords(p.Body, 30)
		}
		if err := sink.UpsertContentItem(*p); err != nil {
			slog.Warn("store crawled page failed", "url", p.URL, "error", err)
			continue
		}
		stored++
	}

	slog.Info("crawl complete", "base", baseURL, "pages", stored)
	return stored, nil
}

func firstWords(text string, n int) string {
	fields := strings.Fields(text)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
