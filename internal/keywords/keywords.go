package keywords

import (
	"regexp"
	"strings"
)

// Generic URL segments that carry no search signal.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"blog": {}, "page": {}, "post": {},
}

var (
	yearPattern    = regexp.MustCompile(`\b20[2-9][0-9]\b`)
	numericPattern = regexp.MustCompile(`^[0-9]+$`)
	separators     = strings.NewReplacer("-", " ", "_", " ", "/", " ", ".html", " ", ".php", " ")
)

// Extract turns a broken URL path into a set of normalized search terms.
// The same path always produces the same set. An empty result means the
// path has no usable signal and callers should fall back without
// searching or calling a provider.
func Extract(path string) []string {
	cleaned := separators.Replace(path)
	cleaned = yearPattern.ReplaceAllString(cleaned, "")

	seen := make(map[string]struct{})
	var words []string
	for _, word := range strings.Fields(cleaned) {
		word = strings.ToLower(strings.TrimSpace(word))
		if len(word) <= 2 {
			continue
		}
		if numericPattern.MatchString(word) {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	return words
}

// IsStopWord reports whether the extractor would discard the word for
// being on the fixed stop-word list.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}
