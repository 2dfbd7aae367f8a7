package ai

import (
	"strings"
	"testing"

	"github.com/rsheldon/wayfinder/internal/content"
	"github.com/rsheldon/wayfinder/internal/suggest"
)

func TestVoiceContextKnownTone(t *testing.T) {
	got := voiceContext(BrandVoice{Tone: "technical", MessageLength: "brief"})
	if !strings.Contains(got, "developer-friendly") {
		t.Errorf("voiceContext missing technical tone instruction: %q", got)
	}
	if !strings.Contains(got, "1-2 sentences") {
		t.Errorf("voiceContext missing brief length instruction: %q", got)
	}
	if !strings.Contains(got, "Do not use emoji") {
		t.Errorf("voiceContext missing emoji opt-out: %q", got)
	}
}

func TestVoiceContextUnknownEnumsFallBack(t *testing.T) {
	got := voiceContext(BrandVoice{Tone: "belligerent", Industry: "piracy", MessageLength: "novel"})
	if !strings.Contains(got, "warm, friendly") {
		t.Errorf("unknown tone should fall back to friendly: %q", got)
	}
	if !strings.Contains(got, "2-3 sentences") {
		t.Errorf("unknown length should fall back to standard: %q", got)
	}
	if strings.Contains(got, "piracy") {
		t.Errorf("unknown industry should be omitted, not echoed: %q", got)
	}
}

func TestVoiceContextTruncatesWritingSample(t *testing.T) {
	sample := strings.Repeat("x", 2000)
	got := voiceContext(BrandVoice{WritingSample: sample})
	if strings.Contains(got, strings.Repeat("x", writingSampleLimit+1)) {
		t.Error("writing sample not truncated")
	}
	if !strings.Contains(got, strings.Repeat("x", writingSampleLimit)) {
		t.Error("truncated writing sample missing from context")
	}
}

func TestBuildAnalysisPrompt(t *testing.T) {
	items := []content.Summary{
		{Title: "Pricing", URL: "/pricing", Excerpt: "Plans", Categories: []string{"sales"}},
	}
	got := BuildAnalysisPrompt("https://example.com/old-pricing", "https://google.com", items, BrandVoice{})

	for _, want := range []string{
		"https://example.com/old-pricing",
		"https://google.com",
		`"url":"/pricing"`,
		"fun_title",
		"fun_message",
		"ONLY a valid JSON object",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("analysis prompt missing %q", want)
		}
	}
}

func TestBuildChatPrompt(t *testing.T) {
	got := BuildChatPrompt("where is the contact page?", "https://example.com/missing", nil, BrandVoice{Tone: "friendly"})
	for _, want := range []string{
		"where is the contact page?",
		"https://example.com/missing",
		"markdown form",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("chat prompt missing %q", want)
		}
	}
}

func TestBuildIntroPrompt(t *testing.T) {
	got := BuildIntroPrompt([]suggest.Suggestion{
		{Title: "Pricing Plans"},
		{Title: "Contact Us"},
	}, BrandVoice{Tone: "humorous"})

	if !strings.Contains(got, "- Pricing Plans\n") || !strings.Contains(got, "- Contact Us\n") {
		t.Errorf("intro prompt missing suggestion titles: %q", got)
	}
	if !strings.Contains(got, "just the intro text") {
		t.Errorf("intro prompt missing scope instruction: %q", got)
	}
	if !strings.Contains(got, "gentle humor") {
		t.Errorf("intro prompt missing tone: %q", got)
	}
}
