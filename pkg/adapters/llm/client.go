package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/plotline/pkg/domain"
	"github.com/aretw0/plotline/pkg/ports"
)

const (
	// DefaultMaxTokens bounds the answer length.
	DefaultMaxTokens = 1000

	// DefaultTimeout bounds a single generator call.
	DefaultTimeout = 60 * time.Second

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 512
)

// Provider names a generator backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	ProviderEcho      Provider = "echo"
)

// Config holds the settings shared by every provider.
// Zero values take the provider's defaults.
type Config struct {
	Model     string
	BaseURL   string
	APIKey    string
	MaxTokens int
	Timeout   time.Duration

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client

	// Response is the canned answer of the echo provider.
	Response string
}

func (c Config) withDefaults(model, baseURL string) Config {
	if c.Model == "" {
		c.Model = model
	}
	if c.BaseURL == "" {
		c.BaseURL = baseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	return c
}

// StatusError is a non-2xx answer from a provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// New returns the generator for provider.
func New(provider Provider, cfg Config) (ports.Generator, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case ProviderAnthropic:
		return NewAnthropic(cfg), nil
	case ProviderGemini:
		return NewGemini(cfg), nil
	case ProviderEcho:
		return NewEcho(cfg.Response), nil
	default:
		return nil, fmt.Errorf("unsupported generator provider: %q", provider)
	}
}

// postJSON sends body as JSON and decodes a 2xx answer into out.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func collaboratorError(provider Provider, err error) error {
	return &domain.CollaboratorError{Provider: string(provider), Err: err}
}

func errMissingKey(provider Provider) error {
	return collaboratorError(provider, errors.New("api key is not set"))
}

func errEmptyAnswer(provider Provider) error {
	return collaboratorError(provider, errors.New("response has no text"))
}
