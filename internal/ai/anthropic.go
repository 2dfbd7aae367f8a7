package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	anthropicDefaultURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion    = "2023-06-01"
)

// Anthropic messages API request/response types (unexported).

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// AnthropicProvider implements Provider for Anthropic's messages API.
// Auth rides in an x-api-key header plus a pinned anthropic-version.
type AnthropicProvider struct {
	httpClient *http.Client
	settings   SettingsGetter
	baseURL    string
}

// NewAnthropicProvider creates an Anthropic provider.
func NewAnthropicProvider(sg SettingsGetter) *AnthropicProvider {
	return &AnthropicProvider{
		httpClient: &http.Client{Timeout: requestTimeout},
		settings:   sg,
		baseURL:    anthropicDefaultURL,
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (string, error) {
	apiKey, err := p.settings.GetSetting("anthropic_api_key")
	if err != nil || strings.TrimSpace(apiKey) == "" {
		return "", errors.New("anthropic API key not configured")
	}

	model, err := p.settings.GetSetting("anthropic_model")
	if err != nil || strings.TrimSpace(model) == "" {
		model = "claude-3-haiku-20240307"
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024 // the messages API requires an explicit cap
	}

	body := anthropicRequest{
		Model:     strings.TrimSpace(model),
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", strings.TrimSpace(apiKey))
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("anthropic returned status %d: %s", resp.StatusCode, apiErrorMessage(respBody))
	}

	var msgResp anthropicResponse
	if err := json.Unmarshal(respBody, &msgResp); err != nil {
		return "", fmt.Errorf("parse anthropic response: %w", err)
	}
	if len(msgResp.Content) == 0 || msgResp.Content[0].Text == "" {
		return "", errors.New("unexpected response format")
	}

	return strings.TrimSpace(msgResp.Content[0].Text), nil
}
