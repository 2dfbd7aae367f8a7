package markdown

import (
	"strings"
	"testing"
)

func TestRenderBoldWithColon(t *testing.T) {
	got := Render("**Bold:** text")
	want := "<p><strong>Bold:</strong> text</p>"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderColonOutsideBoldPulledIn(t *testing.T) {
	got := Render("**Suggestions**: check these out")
	if !strings.Contains(got, "<strong>Suggestions:</strong>") {
		t.Errorf("colon not normalized into strong tag: %q", got)
	}
}

func TestRenderRepairsMalformedBold(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"triple stars with colon", "***Heads up:*** read this", "<strong>Heads up:</strong>"},
		{"quadruple stars", "****important****", "<strong>important</strong>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.input)
			if !strings.Contains(got, tt.want) {
				t.Errorf("Render(%q) = %q, want substring %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRenderItalic(t *testing.T) {
	got := Render("some *emphasis* here")
	if !strings.Contains(got, "<em>emphasis</em>") {
		t.Errorf("italic not rendered: %q", got)
	}
}

func TestRenderItalicSkipsBoldContent(t *testing.T) {
	got := Render("**bold text** and *italic text*")
	if !strings.Contains(got, "<strong>bold text</strong>") {
		t.Errorf("bold lost: %q", got)
	}
	if !strings.Contains(got, "<em>italic text</em>") {
		t.Errorf("italic lost: %q", got)
	}
	if strings.Contains(got, "<em><strong>") || strings.Contains(got, "<strong><em>bold") {
		t.Errorf("emphasis nested into strong span: %q", got)
	}
}

func TestRenderHeaders(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"# Top", "<h1>Top</h1>"},
		{"## Section", "<h2>Section</h2>"},
		{"### Sub", "<h3>Sub</h3>"},
		{"#### Minor", "<h4>Minor</h4>"},
	}
	for _, tt := range tests {
		got := Render(tt.input)
		if !strings.Contains(got, tt.want) {
			t.Errorf("Render(%q) = %q, want substring %q", tt.input, got, tt.want)
		}
	}
}

func TestRenderHeaderNotMisparsedAsShorterPrefix(t *testing.T) {
	got := Render("#### Deep")
	if strings.Contains(got, "<h1>") || strings.Contains(got, "###") {
		t.Errorf("four-hash header mangled: %q", got)
	}
}

func TestRenderUnorderedList(t *testing.T) {
	got := Render("Options:\n• First\n• Second")
	for _, want := range []string{"<ul>", "<li>First</li>", "<li>Second</li>", "</ul>"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
	if strings.Count(got, "<ul>") != 1 {
		t.Errorf("contiguous bullets split into multiple lists: %q", got)
	}
}

func TestRenderNormalizesBulletGlyphsAndDashes(t *testing.T) {
	got := Render("▪ one\n- two\n* three")
	if strings.Count(got, "<li>") != 3 {
		t.Errorf("expected 3 list items, got %q", got)
	}
}

func TestRenderOrderedList(t *testing.T) {
	got := Render("1. alpha\n2 beta\n3. gamma")
	for _, want := range []string{"<ol>", "<li>alpha</li>", "<li>beta</li>", "<li>gamma</li>", "</ol>"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestRenderListTypeSwitchClosesPrevious(t *testing.T) {
	got := Render("1. first\n• second")
	olClose := strings.Index(got, "</ol>")
	ulOpen := strings.Index(got, "<ul>")
	if olClose == -1 || ulOpen == -1 || olClose > ulOpen {
		t.Errorf("ordered list not closed before unordered opens: %q", got)
	}
}

func TestRenderListClosedAtEndOfInput(t *testing.T) {
	got := Render("• only item")
	if !strings.HasSuffix(strings.TrimSpace(got), "</ul>") {
		t.Errorf("trailing list not closed: %q", got)
	}
}

func TestRenderCodeBlocks(t *testing.T) {
	got := Render("```\ncode here\n```")
	if !strings.Contains(got, "<pre><code>") || !strings.Contains(got, "</code></pre>") {
		t.Errorf("fenced block not rendered: %q", got)
	}

	got = Render("use `fmt.Println` for output")
	if !strings.Contains(got, "<code>fmt.Println</code>") {
		t.Errorf("inline code not rendered: %q", got)
	}
}

func TestRenderLinks(t *testing.T) {
	got := Render("see [our docs](https://example.com/docs)")
	want := `<a href="https://example.com/docs" target="_blank" rel="noopener">our docs</a>`
	if !strings.Contains(got, want) {
		t.Errorf("link not rendered: %q", got)
	}
}

func TestRenderLinkShorthand(t *testing.T) {
	got := Render("[Link: https://example.com/pricing]")
	want := `<a href="https://example.com/pricing" target="_blank" rel="noopener">Visit Link</a>`
	if !strings.Contains(got, want) {
		t.Errorf("shorthand link not rendered: %q", got)
	}
}

func TestRenderParagraphBreaks(t *testing.T) {
	got := Render("first paragraph\n\nsecond paragraph")
	if !strings.Contains(got, "</p><p>") {
		t.Errorf("blank line did not produce paragraph break: %q", got)
	}
	if !strings.HasPrefix(got, "<p>") || !strings.HasSuffix(got, "</p>") {
		t.Errorf("output not paragraph wrapped: %q", got)
	}
}

func TestRenderBlockOutputNotWrapped(t *testing.T) {
	got := Render("# Heading only")
	if strings.HasPrefix(got, "<p>") {
		t.Errorf("block-level output should not gain a paragraph wrapper: %q", got)
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	inputs := []string{
		"<script>alert('x')</script>",
		"**bold** <img src=x onerror=alert(1)>",
		"[click](javascript:alert(1))<script>",
		"• item <b>raw</b>",
	}
	for _, input := range inputs {
		got := Render(input)
		if strings.Contains(got, "<script") || strings.Contains(got, "<img") || strings.Contains(got, "<b>") {
			t.Errorf("raw HTML survived rendering of %q: %q", input, got)
		}
	}
}

func TestRenderEmptyParagraphsRemoved(t *testing.T) {
	got := Render("text\n\n\n\nmore")
	if strings.Contains(got, "<p></p>") {
		t.Errorf("empty paragraph left behind: %q", got)
	}
}

func TestEscapeText(t *testing.T) {
	got := EscapeText(`<a href="x">hi & bye</a>`)
	if strings.Contains(got, "<a") || !strings.Contains(got, "&amp;") {
		t.Errorf("EscapeText() = %q", got)
	}
	if markers := EscapeText("**not bold**"); markers != "**not bold**" {
		t.Errorf("user text should not be interpreted as markdown: %q", markers)
	}
}
