package ports

import "context"

// Generator is the text-generation collaborator.
// Given a user message and a system instruction it returns free text.
// Implementations report transport or provider failures as errors;
// the synthesis pipeline treats those exactly like malformed output.
type Generator interface {
	Generate(ctx context.Context, userMessage, systemPrompt string) (string, error)
}

// GeneratorFunc adapts an ordinary function to the Generator interface.
type GeneratorFunc func(ctx context.Context, userMessage, systemPrompt string) (string, error)

// Generate calls f(ctx, userMessage, systemPrompt).
func (f GeneratorFunc) Generate(ctx context.Context, userMessage, systemPrompt string) (string, error) {
	return f(ctx, userMessage, systemPrompt)
}
