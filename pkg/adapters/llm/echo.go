package llm

import (
	"context"
	"errors"
)

// Echo answers every call with a fixed response. It is meant for offline
// runs and tests; with no response configured every call fails, so the
// pipeline always produces the fallback flow.
type Echo struct {
	Response string
}

// NewEcho creates an Echo generator.
func NewEcho(response string) *Echo {
	return &Echo{Response: response}
}

// Name returns the provider name.
func (g *Echo) Name() string { return string(ProviderEcho) }

// Generate returns the configured response.
func (g *Echo) Generate(ctx context.Context, _, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", collaboratorError(ProviderEcho, err)
	}
	if g.Response == "" {
		return "", collaboratorError(ProviderEcho, errors.New("no response configured"))
	}
	return g.Response, nil
}
