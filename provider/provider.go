package provider

import "context"

// Backend is a text generation backend. Implementations wrap a concrete model
// API and return the raw completion text. Output must be treated as untrusted:
// callers own all parsing and fallback behaviour.
type Backend interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Func adapts a plain function to the Backend interface.
type Func func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

// Generate implements Backend.
func (f Func) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}
