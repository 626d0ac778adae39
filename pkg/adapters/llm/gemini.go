package llm

import (
	"context"
	"net/url"
	"strings"
)

const (
	DefaultGeminiModel   = "gemini-2.0-flash-exp"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// Gemini calls the generateContent API.
type Gemini struct {
	cfg Config
}

// NewGemini creates a Gemini generator.
func NewGemini(cfg Config) *Gemini {
	return &Gemini{cfg: cfg.withDefaults(DefaultGeminiModel, DefaultGeminiBaseURL)}
}

// Name returns the provider name.
func (g *Gemini) Name() string { return string(ProviderGemini) }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate returns the text parts of the first candidate.
func (g *Gemini) Generate(ctx context.Context, userMessage, systemPrompt string) (string, error) {
	if g.cfg.APIKey == "" {
		return "", errMissingKey(ProviderGemini)
	}

	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: userMessage}}}},
	}
	if systemPrompt != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}}
	}
	req.GenerationConfig.MaxOutputTokens = g.cfg.MaxTokens

	endpoint := g.cfg.BaseURL + "/models/" + url.PathEscape(g.cfg.Model) + ":generateContent"
	headers := map[string]string{"x-goog-api-key": g.cfg.APIKey}

	var resp geminiResponse
	if err := postJSON(ctx, g.cfg.HTTPClient, endpoint, headers, req, &resp); err != nil {
		return "", collaboratorError(ProviderGemini, err)
	}
	if len(resp.Candidates) == 0 {
		return "", errEmptyAnswer(ProviderGemini)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", errEmptyAnswer(ProviderGemini)
	}
	return sb.String(), nil
}
