package ai

import (
	"context"
	"time"

	"github.com/rsheldon/wayfinder/internal/suggest"
)

// Every provider gets one attempt with a fixed budget. A 404 page is
// already an error state; retries only stack latency on top of it.
const requestTimeout = 30 * time.Second

// SettingsGetter is a minimal interface so the ai package does not
// import the database.
type SettingsGetter interface {
	GetSetting(key string) (string, error)
}

// Provider is the capability shared by all three wire-protocol
// variants. Complete sends one prompt and returns the provider's text
// or an error; it never retries.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string // "openai", "anthropic", or "gemini"
}

// Request is a provider-agnostic completion request.
type Request struct {
	Prompt    string
	MaxTokens int
	JSONMode  bool // ask for JSON output where the wire format supports it
}

// ResultKind discriminates the Result sum type.
type ResultKind int

const (
	// KindParsed means an embedded JSON payload was decoded.
	KindParsed ResultKind = iota
	// KindRawText means the provider answered in prose; the text is
	// already human-readable.
	KindRawText
	// KindFailure means transport, provider, or format failure.
	KindFailure
)

// Analysis is the structured payload the analysis prompt asks for.
// Partial payloads are tolerated; chat replies often carry only a
// message.
type Analysis struct {
	Suggestions []suggest.Suggestion `json:"suggestions"`
	FunTitle    string               `json:"fun_title"`
	FunMessage  string               `json:"fun_message"`
}

// Result is exactly one of: a decoded analysis, raw text, or a failure
// reason. Callers branch on Kind, never on which fields are set.
type Result struct {
	Kind     ResultKind
	Analysis *Analysis
	Raw      string
	Reason   string
}

// Parsed wraps a decoded analysis payload.
func Parsed(a *Analysis) Result { return Result{Kind: KindParsed, Analysis: a} }

// RawText wraps prose the provider returned instead of JSON.
func RawText(text string) Result { return Result{Kind: KindRawText, Raw: text} }

// Failure wraps a transport, provider, or format error reason.
func Failure(reason string) Result { return Result{Kind: KindFailure, Reason: reason} }
