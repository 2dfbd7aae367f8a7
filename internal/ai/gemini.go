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

const geminiDefaultURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini generateContent request/response types (unexported).

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

// GeminiProvider implements Provider for Google's Gemini API. The API
// key travels as a query parameter, not a header.
type GeminiProvider struct {
	httpClient *http.Client
	settings   SettingsGetter
	baseURL    string
}

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(sg SettingsGetter) *GeminiProvider {
	return &GeminiProvider{
		httpClient: &http.Client{Timeout: requestTimeout},
		settings:   sg,
		baseURL:    geminiDefaultURL,
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Complete(ctx context.Context, req Request) (string, error) {
	apiKey, err := p.settings.GetSetting("gemini_api_key")
	if err != nil || strings.TrimSpace(apiKey) == "" {
		return "", errors.New("gemini API key not configured")
	}

	model, err := p.settings.GetSetting("gemini_model")
	if err != nil || strings.TrimSpace(model) == "" {
		model = "gemini-1.5-flash"
	}

	body := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: req.Prompt}},
		}},
		GenerationConfig: &geminiGenConfig{
			Temperature:     0.7,
			TopK:            10,
			TopP:            0.8,
			MaxOutputTokens: req.MaxTokens,
		},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s",
		strings.TrimRight(p.baseURL, "/"), strings.TrimSpace(model), strings.TrimSpace(apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, apiErrorMessage(respBody))
	}

	var genResp geminiResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("parse gemini response: %w", err)
	}
	if len(genResp.Candidates) == 0 ||
		len(genResp.Candidates[0].Content.Parts) == 0 ||
		genResp.Candidates[0].Content.Parts[0].Text == "" {
		return "", errors.New("unexpected response format")
	}

	return strings.TrimSpace(genResp.Candidates[0].Content.Parts[0].Text), nil
}
