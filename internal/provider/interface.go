package provider

import "context"

// Provider is the text-generation capability consumed by the pipeline.
// Implementations are stateless and safe for concurrent use.
type Provider interface {
	// Generate sends a single user prompt.
	Generate(ctx context.Context, prompt string) (*Response, error)

	// GenerateWithContext sends an ordered conversation.
	GenerateWithContext(ctx context.Context, messages []Message) (*Response, error)
}

// Transport performs exactly one outbound generation call with no retries.
type Transport interface {
	// Name returns the backend name used in logs, metrics and errors.
	Name() string

	// Send performs one attempt.
	Send(ctx context.Context, messages []Message) (*Response, error)
}

// UserPrompt wraps prompt as a single user message.
func UserPrompt(prompt string) []Message {
	return []Message{{Role: RoleUser, Content: prompt}}
}
