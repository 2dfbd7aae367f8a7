package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/rsheldon/wayfinder/internal/content"
	"github.com/rsheldon/wayfinder/internal/keywords"
	"github.com/rsheldon/wayfinder/internal/suggest"
)

// DefaultFallbackMessage is shown when the AI cannot be reached or is
// not configured. Site owners can override it in settings.
const DefaultFallbackMessage = "Oops! That page seems to have moved. Here are some alternatives that might help:"

const defaultTitle = "Page Not Found"

// promptCandidateLimit caps the content summary fed into prompts.
const promptCandidateLimit = 20

// ErrNotConfigured means no API key is stored for the selected
// provider. Callers must not attempt a network call in this state.
var ErrNotConfigured = errors.New("ai provider not configured")

// PageAnswer is what the 404 page renders: a suggestion list plus a
// stylized title and message. Fallback marks answers produced without
// (or despite) the AI.
type PageAnswer struct {
	Suggestions []suggest.Suggestion `json:"suggestions"`
	Title       string               `json:"title"`
	Message     string               `json:"message"`
	Fallback    bool                 `json:"fallback"`
}

// Client is the AI entry point. It routes requests to the configured
// provider, builds prompts, and normalizes responses.
type Client struct {
	openai    Provider
	anthropic Provider
	gemini    Provider
	settings  SettingsGetter
	index     content.Index
	local     suggest.Selector
}

// NewClient creates a client with all three providers.
func NewClient(sg SettingsGetter, index content.Index) *Client {
	return &Client{
		openai:    NewOpenAIProvider(sg),
		anthropic: NewAnthropicProvider(sg),
		gemini:    NewGeminiProvider(sg),
		settings:  sg,
		index:     index,
		local:     &suggest.Local{Index: index},
	}
}

// provider resolves the configured provider and verifies a key exists
// for it. Selection happens here once, not as scattered string
// comparisons at call sites.
func (c *Client) provider() (Provider, error) {
	name, _ := c.settings.GetSetting("ai_provider")

	var p Provider
	switch name {
	case "anthropic":
		p = c.anthropic
	case "gemini":
		p = c.gemini
	default:
		p = c.openai
	}

	key, err := c.settings.GetSetting(p.Name() + "_api_key")
	if err != nil || strings.TrimSpace(key) == "" {
		return nil, ErrNotConfigured
	}
	return p, nil
}

func (c *Client) voice() BrandVoice {
	tone, _ := c.settings.GetSetting("brand_tone")
	industry, _ := c.settings.GetSetting("brand_industry")
	sample, _ := c.settings.GetSetting("writing_sample")
	length, _ := c.settings.GetSetting("message_length")
	emoji, _ := c.settings.GetSetting("include_emoji")
	return BrandVoice{
		Tone:          tone,
		Industry:      industry,
		WritingSample: sample,
		MessageLength: length,
		IncludeEmoji:  emoji == "1" || emoji == "true",
	}
}

func (c *Client) fallbackMessage() string {
	msg, err := c.settings.GetSetting("fallback_message")
	if err != nil || strings.TrimSpace(msg) == "" {
		return DefaultFallbackMessage
	}
	return msg
}

func (c *Client) fallback() PageAnswer {
	return PageAnswer{
		Suggestions: []suggest.Suggestion{},
		Title:       defaultTitle,
		Message:     c.fallbackMessage(),
		Fallback:    true,
	}
}

func (c *Client) summaries(ctx context.Context) []content.Summary {
	candidates, err := c.index.Candidates(ctx, promptCandidateLimit)
	if err != nil {
		slog.Warn("content index unavailable", "error", err)
		return nil
	}
	return content.Summarize(candidates, promptCandidateLimit)
}

// AnalyzeBrokenURL produces the full 404 answer for a broken URL. It
// never returns an error: every failure mode degrades to the fallback
// answer so the hosting page always has something to show.
func (c *Client) AnalyzeBrokenURL(ctx context.Context, brokenURL, referrer string) PageAnswer {
	path := brokenURL
	if parsed, err := url.Parse(brokenURL); err == nil && parsed.Path != "" {
		path = parsed.Path
	}

	// No usable signal in the path means nothing to analyze; skip the
	// index and the provider entirely.
	if len(keywords.Extract(path)) == 0 {
		return c.fallback()
	}

	provider, err := c.provider()
	if err != nil {
		return c.fallback()
	}

	source, _ := c.settings.GetSetting("suggestion_source")
	if source == "local" {
		return c.analyzeWithLocalSuggestions(ctx, provider, brokenURL, path, referrer)
	}
	return c.analyzeWithAISuggestions(ctx, provider, brokenURL, referrer)
}

// analyzeWithAISuggestions asks the provider for suggestions, title,
// and message in one structured response.
func (c *Client) analyzeWithAISuggestions(ctx context.Context, provider Provider, brokenURL, referrer string) PageAnswer {
	prompt := BuildAnalysisPrompt(brokenURL, referrer, c.summaries(ctx), c.voice())

	text, err := provider.Complete(ctx, Request{Prompt: prompt, MaxTokens: 600, JSONMode: true})
	if err != nil {
		slog.Warn("analysis request failed", "provider", provider.Name(), "error", err)
		return c.fallback()
	}

	res := Parse(text)
	if res.Kind != KindParsed {
		// Prose is useless here: garbled JSON cannot be rendered as
		// structured suggestions.
		slog.Warn("analysis response not parseable", "provider", provider.Name())
		return c.fallback()
	}

	answer := PageAnswer{
		Suggestions: suggest.Truncate(res.Analysis.Suggestions, suggest.MaxSuggestions),
		Title:       res.Analysis.FunTitle,
		Message:     res.Analysis.FunMessage,
	}
	if answer.Suggestions == nil {
		answer.Suggestions = []suggest.Suggestion{}
	}
	if answer.Title == "" {
		answer.Title = defaultTitle
	}
	if answer.Message == "" {
		answer.Message = c.fallbackMessage()
	}
	return answer
}

// analyzeWithLocalSuggestions ranks suggestions locally and only asks
// the provider for the intro message above them.
func (c *Client) analyzeWithLocalSuggestions(ctx context.Context, provider Provider, brokenURL, path, referrer string) PageAnswer {
	suggestions, err := c.local.Suggest(ctx, suggest.Request{URL: brokenURL, Path: path, Referrer: referrer})
	if err != nil {
		slog.Warn("local suggestion ranking failed", "error", err)
	}
	if len(suggestions) == 0 {
		return c.fallback()
	}

	answer := PageAnswer{
		Suggestions: suggestions,
		Title:       defaultTitle,
		Message:     c.fallbackMessage(),
	}

	prompt := BuildIntroPrompt(suggestions, c.voice())
	text, err := provider.Complete(ctx, Request{Prompt: prompt, MaxTokens: 200})
	if err != nil {
		slog.Warn("intro message request failed", "provider", provider.Name(), "error", err)
		answer.Fallback = true
		return answer
	}
	answer.Message = text
	return answer
}

// Chat answers a free-form visitor question. Unlike the analysis path,
// prose responses are fine here, so format problems degrade to raw
// text instead of failing.
func (c *Client) Chat(ctx context.Context, message, currentURL string) (string, error) {
	provider, err := c.provider()
	if err != nil {
		return "", err
	}

	prompt := BuildChatPrompt(message, currentURL, c.summaries(ctx), c.voice())
	text, err := provider.Complete(ctx, Request{Prompt: prompt, MaxTokens: 600})
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}

	if res := Parse(text); res.Kind == KindParsed && res.Analysis.FunMessage != "" {
		return res.Analysis.FunMessage, nil
	}
	return text, nil
}

// TestProvider sends the minimal test prompt through the configured
// provider and returns its response, for credential checks.
func (c *Client) TestProvider(ctx context.Context) (string, error) {
	provider, err := c.provider()
	if err != nil {
		return "", err
	}
	text, err := provider.Complete(ctx, Request{Prompt: TestPrompt, MaxTokens: 50})
	if err != nil {
		return "", fmt.Errorf("%s test request: %w", provider.Name(), err)
	}
	return text, nil
}

// ProviderName reports which provider is currently selected, even when
// no key is configured for it.
func (c *Client) ProviderName() string {
	name, _ := c.settings.GetSetting("ai_provider")
	switch name {
	case "anthropic", "gemini":
		return name
	default:
		return "openai"
	}
}

// AISelector adapts the client's analysis path to the suggestion
// Selector interface, so AI-authored and locally-scored suggestion
// lists stay interchangeable.
type AISelector struct {
	Client *Client
}

func (s *AISelector) Suggest(ctx context.Context, req suggest.Request) ([]suggest.Suggestion, error) {
	answer := s.Client.AnalyzeBrokenURL(ctx, req.URL, req.Referrer)
	if answer.Fallback {
		return nil, errors.New("ai suggestions unavailable")
	}
	return answer.Suggestions, nil
}
