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

const openaiDefaultURL = "https://api.openai.com/v1/chat/completions"

// OpenAI chat-completions request/response types (unexported).

type openaiRequest struct {
	Model          string          `json:"model"`
	Messages       []openaiMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *openaiRespFmt  `json:"response_format,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiRespFmt struct {
	Type string `json:"type"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}

type openaiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// OpenAIProvider implements Provider for the OpenAI chat-completions
// API and compatible endpoints.
type OpenAIProvider struct {
	httpClient *http.Client
	settings   SettingsGetter
	baseURL    string
}

// NewOpenAIProvider creates an OpenAI provider.
func NewOpenAIProvider(sg SettingsGetter) *OpenAIProvider {
	return &OpenAIProvider{
		httpClient: &http.Client{Timeout: requestTimeout},
		settings:   sg,
		baseURL:    openaiDefaultURL,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	apiKey, err := p.settings.GetSetting("openai_api_key")
	if err != nil || strings.TrimSpace(apiKey) == "" {
		return "", errors.New("openai API key not configured")
	}
	apiKey = strings.TrimSpace(apiKey)

	model, err := p.settings.GetSetting("openai_model")
	if err != nil || strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}

	body := openaiRequest{
		Model:       strings.TrimSpace(model),
		Messages:    []openaiMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: 0.7,
	}
	if req.JSONMode {
		body.ResponseFormat = &openaiRespFmt{Type: "json_object"}
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
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, apiErrorMessage(respBody))
	}

	var chatResp openaiResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("parse openai response: %w", err)
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", errors.New("unexpected response format")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// apiErrorMessage pulls the human-readable message out of an
// {"error":{"message":...}} body, falling back to the raw body. OpenAI,
// Anthropic, and Gemini all use this shape for errors.
func apiErrorMessage(body []byte) string {
	var e openaiError
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return string(body)
}
