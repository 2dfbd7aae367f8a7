package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rsheldon/wayfinder/internal/content"
	"github.com/rsheldon/wayfinder/internal/suggest"
)

// writingSampleLimit bounds how much of the brand's sample text is
// quoted verbatim into prompts.
const writingSampleLimit = 500

// BrandVoice is the configured tone/industry/style profile applied to
// everything the AI writes.
type BrandVoice struct {
	Tone          string
	Industry      string
	WritingSample string
	MessageLength string // brief, standard, detailed
	IncludeEmoji  bool
}

var toneInstructions = map[string]string{
	"professional": "Write in a professional, helpful tone suitable for business communication.",
	"friendly":     "Write in a warm, friendly, conversational tone.",
	"humorous":     "Write with gentle humor and personality, but keep it helpful.",
	"casual":       "Write in a relaxed, casual tone, like talking to a friend.",
	"technical":    "Write with technical references and developer-friendly language.",
	"quirky":       "Write with playful, offbeat personality and unexpected turns of phrase.",
}

var industryContext = map[string]string{
	"technology": "The site belongs to a technology company; readers are comfortable with software terminology.",
	"ecommerce":  "The site is an online store; readers are shoppers looking for products and deals.",
	"healthcare": "The site serves healthcare audiences; keep wording reassuring and avoid medical claims.",
	"finance":    "The site covers financial services; keep wording precise and trustworthy.",
	"education":  "The site serves students and educators; keep wording clear and encouraging.",
	"travel":     "The site covers travel; readers are planning trips and looking for destinations.",
	"food":       "The site covers food and dining; readers are looking for recipes, menus, or reviews.",
	"legal":      "The site serves legal audiences; keep wording careful and professional.",
	"creative":   "The site belongs to a creative studio; expressive wording is welcome.",
}

var lengthInstructions = map[string]string{
	"brief":    "Keep it very concise - 1-2 sentences maximum.",
	"standard": "Use 2-3 sentences.",
	"detailed": "Write 3-4 sentences with more context.",
}

// voiceContext renders the shared brand-voice block used by both
// prompt shapes. Unknown enum values fall back to neutral entries.
func voiceContext(v BrandVoice) string {
	var sb strings.Builder

	tone, ok := toneInstructions[v.Tone]
	if !ok {
		tone = toneInstructions["friendly"]
	}
	sb.WriteString(tone)
	sb.WriteString(" ")

	if industry, ok := industryContext[v.Industry]; ok {
		sb.WriteString(industry)
		sb.WriteString(" ")
	}

	length, ok := lengthInstructions[v.MessageLength]
	if !ok {
		length = lengthInstructions["standard"]
	}
	sb.WriteString(length)
	sb.WriteString(" ")

	if v.IncludeEmoji {
		sb.WriteString("Include relevant emoji to make it more engaging.")
	} else {
		sb.WriteString("Do not use emoji.")
	}

	if sample := strings.TrimSpace(v.WritingSample); sample != "" {
		if len(sample) > writingSampleLimit {
			sample = sample[:writingSampleLimit]
		}
		sb.WriteString("\n\nMatch the tone and style of this brand writing sample:\n\"")
		sb.WriteString(sample)
		sb.WriteString("\"")
	}

	return sb.String()
}

func contentSummaryJSON(items []content.Summary) string {
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// BuildAnalysisPrompt constructs the prompt that asks the AI to guess
// the visitor's intent behind a broken URL and return structured
// suggestions plus a stylized title and message.
func BuildAnalysisPrompt(brokenURL, referrer string, items []content.Summary, v BrandVoice) string {
	var sb strings.Builder

	sb.WriteString("You are the 404 assistant for a website. A visitor just hit a page that does not exist.\n\n")
	sb.WriteString(fmt.Sprintf("Broken URL: %s\n", brokenURL))
	if referrer != "" {
		sb.WriteString(fmt.Sprintf("They came from: %s\n", referrer))
	}

	sb.WriteString("\nPublished content on this site:\n")
	sb.WriteString(contentSummaryJSON(items))
	sb.WriteString("\n\n")

	sb.WriteString("Voice and style: ")
	sb.WriteString(voiceContext(v))
	sb.WriteString("\n\n")

	sb.WriteString(`Work out what the visitor was most likely looking for and pick up to 4 pages from the content list above that best match that intent. Only use URLs that appear in the list.

IMPORTANT: Return ONLY a valid JSON object with no additional text, markdown, or explanation.

Format:
{"suggestions": [{"title": "Page Title", "url": "/path", "reason": "one short sentence on why this matches"}], "fun_title": "a short stylized error page title", "fun_message": "a short stylized message for the visitor"}`)

	return sb.String()
}

// BuildChatPrompt constructs the prompt behind the 404 page's chat
// assistant. The AI answers conversationally and should point at real
// site URLs when relevant.
func BuildChatPrompt(question, currentURL string, items []content.Summary, v BrandVoice) string {
	var sb strings.Builder

	sb.WriteString("You are a helpful assistant embedded on a website's error page. ")
	sb.WriteString("A visitor could not find the page they wanted and is asking you for help.\n\n")
	sb.WriteString(fmt.Sprintf("Current page: %s\n", currentURL))
	sb.WriteString(fmt.Sprintf("Visitor's question: %s\n", question))

	sb.WriteString("\nPublished content on this site:\n")
	sb.WriteString(contentSummaryJSON(items))
	sb.WriteString("\n\n")

	sb.WriteString("Voice and style: ")
	sb.WriteString(voiceContext(v))
	sb.WriteString("\n\n")

	sb.WriteString("Answer conversationally. When a page from the content list answers the question, ")
	sb.WriteString("link to it using its exact URL in markdown form, like [Page Title](/path). ")
	sb.WriteString("If nothing on the site helps, say so honestly and suggest where to start.")

	return sb.String()
}

// BuildIntroPrompt constructs the prompt for the locally-scored
// suggestion path, where the AI only writes the intro message shown
// above a suggestion list it did not author.
func BuildIntroPrompt(suggestions []suggest.Suggestion, v BrandVoice) string {
	var sb strings.Builder

	sb.WriteString("You are writing a 404 error message for a website. ")
	sb.WriteString(voiceContext(v))
	sb.WriteString("\n\n")
	sb.WriteString("Write ONLY the introductory message that will appear before the content suggestions. ")
	sb.WriteString("Do not include the actual suggestions or links - just the intro text.\n\n")
	sb.WriteString("The suggestions found are:\n")
	for _, s := range suggestions {
		sb.WriteString("- ")
		sb.WriteString(s.Title)
		sb.WriteString("\n")
	}

	return sb.String()
}

// TestPrompt is the minimal prompt used to verify provider credentials.
const TestPrompt = "Write a brief, friendly 404 error message in one sentence."
