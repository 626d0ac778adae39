package llm

import (
	"context"
)

const (
	DefaultOpenAIModel   = "gpt-3.5-turbo"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
)

// OpenAI calls the chat completions API.
type OpenAI struct {
	cfg Config
}

// NewOpenAI creates an OpenAI generator.
func NewOpenAI(cfg Config) *OpenAI {
	return &OpenAI{cfg: cfg.withDefaults(DefaultOpenAIModel, DefaultOpenAIBaseURL)}
}

// Name returns the provider name.
func (g *OpenAI) Name() string { return string(ProviderOpenAI) }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends the system prompt and the user message as a two-message chat.
func (g *OpenAI) Generate(ctx context.Context, userMessage, systemPrompt string) (string, error) {
	if g.cfg.APIKey == "" {
		return "", errMissingKey(ProviderOpenAI)
	}

	req := openAIRequest{
		Model:     g.cfg.Model,
		MaxTokens: g.cfg.MaxTokens,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
	}
	headers := map[string]string{"Authorization": "Bearer " + g.cfg.APIKey}

	var resp openAIResponse
	if err := postJSON(ctx, g.cfg.HTTPClient, g.cfg.BaseURL+"/chat/completions", headers, req, &resp); err != nil {
		return "", collaboratorError(ProviderOpenAI, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errEmptyAnswer(ProviderOpenAI)
	}
	return resp.Choices[0].Message.Content, nil
}
