package llm

import (
	"context"
	"strings"
)

const (
	DefaultAnthropicModel   = "claude-3-5-haiku-20241022"
	DefaultAnthropicBaseURL = "https://api.anthropic.com/v1"

	anthropicVersion = "2023-06-01"
)

// Anthropic calls the Messages API.
type Anthropic struct {
	cfg Config
}

// NewAnthropic creates an Anthropic generator.
func NewAnthropic(cfg Config) *Anthropic {
	return &Anthropic{cfg: cfg.withDefaults(DefaultAnthropicModel, DefaultAnthropicBaseURL)}
}

// Name returns the provider name.
func (g *Anthropic) Name() string { return string(ProviderAnthropic) }

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate returns the concatenated text blocks of the answer.
func (g *Anthropic) Generate(ctx context.Context, userMessage, systemPrompt string) (string, error) {
	if g.cfg.APIKey == "" {
		return "", errMissingKey(ProviderAnthropic)
	}

	req := anthropicRequest{
		Model:     g.cfg.Model,
		MaxTokens: g.cfg.MaxTokens,
		System:    systemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: userMessage}},
	}
	headers := map[string]string{
		"x-api-key":         g.cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}

	var resp anthropicResponse
	if err := postJSON(ctx, g.cfg.HTTPClient, g.cfg.BaseURL+"/messages", headers, req, &resp); err != nil {
		return "", collaboratorError(ProviderAnthropic, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errEmptyAnswer(ProviderAnthropic)
	}
	return sb.String(), nil
}
