// Package markdown converts the small markdown dialect AI providers
// actually emit into safe HTML for the chat transcript. It is a fixed
// sequence of text transforms, not a CommonMark parser: the dialect is
// bespoke, and so is the safety guarantee. Every transform runs on
// text that has already been HTML-escaped, so nothing in the input can
// ever become live markup. Only AI-authored text goes through Render;
// user-authored text gets EscapeText and nothing else.
package markdown

import (
	"html"
	"regexp"
	"strings"
)

var (
	// Normalization of sloppy AI list output.
	numberedLine = regexp.MustCompile(`(?m)^(\d+)\.?\s+(.*)$`)
	bulletLine   = regexp.MustCompile(`(?m)^[•▪▫‣⁃]\s+(.*)$`)

	// Runs of 3+ asterisks are a common provider glitch; repair them
	// to canonical double-asterisk bold before emphasis runs.
	boldColonRepair = regexp.MustCompile(`\*{3,}([^*]+?):\*{3,}`)
	boldRepair      = regexp.MustCompile(`\*{3,}([^*]+?)\*{3,}`)

	boldStars       = regexp.MustCompile(`\*\*([^*]+?)\*\*`)
	boldUnderscores = regexp.MustCompile(`__([^_]+?)__`)
	italicStars     = regexp.MustCompile(`\*([^*\n]+?)\*`)
	italicUnders    = regexp.MustCompile(`_([^_\n]+?)_`)
	strongSpan      = regexp.MustCompile(`<strong>.*?</strong>`)

	fenceBackticks = regexp.MustCompile("(?s)```(.*?)```")
	fenceTildes    = regexp.MustCompile(`(?s)~~~(.*?)~~~`)
	inlineCode     = regexp.MustCompile("`([^`\n]+?)`")

	// Longest prefix first so #### is not mis-matched as #.
	header4 = regexp.MustCompile(`(?m)^#{4}\s+(.*)$`)
	header3 = regexp.MustCompile(`(?m)^#{3}\s+(.*)$`)
	header2 = regexp.MustCompile(`(?m)^#{2}\s+(.*)$`)
	header1 = regexp.MustCompile(`(?m)^#\s+(.*)$`)

	mdLink    = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	plainLink = regexp.MustCompile(`\[Link:\s*([^\]]+)\]`)

	orderedItem   = regexp.MustCompile(`^\d+\.\s`)
	unorderedItem = regexp.MustCompile(`^[•▪▫‣⁃*-]\s`)
	itemMarker    = regexp.MustCompile(`^\d+\.\s|^[•▪▫‣⁃*-]\s`)

	blockStart     = regexp.MustCompile(`^<(h[1-6]|ul|ol|pre|div)`)
	multiNewline   = regexp.MustCompile(`\n+`)
	paragraphBreak = regexp.MustCompile(`</p>\s*<p>`)
	emptyParagraph = regexp.MustCompile(`<p>\s*</p>`)
	adjacentUL     = regexp.MustCompile(`</ul>\s*<ul>`)
	adjacentOL     = regexp.MustCompile(`</ol>\s*<ol>`)
	trailingColon  = regexp.MustCompile(`<strong>([^<]*)</strong>:`)
)

// EscapeText renders user-authored text inert. User input is never
// interpreted as markdown.
func EscapeText(text string) string {
	return html.EscapeString(text)
}

// Render converts AI-authored text to HTML. Escaping happens first,
// unconditionally; every transform below operates on escaped text.
func Render(text string) string {
	out := html.EscapeString(text)

	// Normalize list glyphs and loose numbering.
	out = numberedLine.ReplaceAllString(out, "$1. $2")
	out = bulletLine.ReplaceAllString(out, "• $1")

	// Repair malformed emphasis runs like ***text:**** first.
	out = boldColonRepair.ReplaceAllString(out, "**$1:**")
	out = boldRepair.ReplaceAllString(out, "**$1**")

	// Bold before italic so ** is not eaten as two italics.
	out = boldStars.ReplaceAllString(out, "<strong>$1</strong>")
	out = boldUnderscores.ReplaceAllString(out, "<strong>$1</strong>")
	out = replaceOutsideStrong(out, italicStars, "<em>", "</em>")
	out = replaceOutsideStrong(out, italicUnders, "<em>", "</em>")

	// Code blocks, then inline code.
	out = fenceBackticks.ReplaceAllString(out, "<pre><code>$1</code></pre>")
	out = fenceTildes.ReplaceAllString(out, "<pre><code>$1</code></pre>")
	out = inlineCode.ReplaceAllString(out, "<code>$1</code>")

	out = header4.ReplaceAllString(out, "<h4>$1</h4>")
	out = header3.ReplaceAllString(out, "<h3>$1</h3>")
	out = header2.ReplaceAllString(out, "<h2>$1</h2>")
	out = header1.ReplaceAllString(out, "<h1>$1</h1>")

	out = mdLink.ReplaceAllString(out, `<a href="$2" target="_blank" rel="noopener">$1</a>`)
	out = plainLink.ReplaceAllString(out, `<a href="$1" target="_blank" rel="noopener">Visit Link</a>`)

	out = assembleBlocks(out)

	// Whitespace and paragraph cleanup.
	out = multiNewline.ReplaceAllString(out, "\n")
	out = strings.Trim(out, "\n")
	if !blockStart.MatchString(out) {
		out = "<p>" + out + "</p>"
	}
	out = paragraphBreak.ReplaceAllString(out, "</p><p>")
	out = emptyParagraph.ReplaceAllString(out, "")
	out = adjacentUL.ReplaceAllString(out, "")
	out = adjacentOL.ReplaceAllString(out, "")
	out = trailingColon.ReplaceAllString(out, "<strong>$1:</strong>")

	return out
}

// replaceOutsideStrong applies an emphasis regex but skips matches
// that fall inside an already-produced strong span. RE2 has no
// lookaround, so matches are filtered by position instead.
func replaceOutsideStrong(s string, re *regexp.Regexp, open, closeTag string) string {
	strongRanges := strongSpan.FindAllStringIndex(s, -1)
	inStrong := func(start, end int) bool {
		for _, r := range strongRanges {
			if start >= r[0] && end <= r[1] {
				return true
			}
		}
		return false
	}

	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start < last {
			continue
		}
		content := s[m[2]:m[3]]
		if inStrong(start, end) || strings.Contains(content, "<strong>") {
			continue
		}
		sb.WriteString(s[last:start])
		sb.WriteString(open)
		sb.WriteString(content)
		sb.WriteString(closeTag)
		last = end
	}
	sb.WriteString(s[last:])
	return sb.String()
}

// assembleBlocks walks lines building lists and paragraph breaks:
// contiguous list lines become one list, a switch of list type closes
// the previous list, blank lines become paragraph breaks, and any
// still-open list is closed at end of input.
func assembleBlocks(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	inList := false
	listType := ""

	closeList := func() {
		if inList {
			out = append(out, "</"+listType+">")
			inList = false
			listType = ""
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if line == "" {
			closeList()
			out = append(out, "</p><p>")
			continue
		}

		var currentType string
		switch {
		case orderedItem.MatchString(line):
			currentType = "ol"
		case unorderedItem.MatchString(line):
			currentType = "ul"
		}

		if currentType != "" {
			if !inList {
				out = append(out, "<"+currentType+">")
				inList = true
				listType = currentType
			} else if listType != currentType {
				out = append(out, "</"+listType+">", "<"+currentType+">")
				listType = currentType
			}
			out = append(out, "<li>"+itemMarker.ReplaceAllString(line, "")+"</li>")
			continue
		}

		closeList()
		out = append(out, line)
	}
	closeList()

	return strings.Join(out, "\n")
}
