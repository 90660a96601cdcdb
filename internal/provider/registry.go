package provider

import (
	"strings"

	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
)

// NewTransport builds the transport named by cfg.Name. An empty name
// selects Gemini.
func NewTransport(cfg Config) (Transport, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Name))
	switch name {
	case "", NameGemini:
		t, err := NewGeminiTransport(cfg)
		if err != nil {
			return nil, errors.NewBackendConfigError(NameGemini, err.Error())
		}
		return t, nil
	case NameOpenAI:
		t, err := NewOpenAITransport(cfg)
		if err != nil {
			return nil, errors.NewBackendConfigError(NameOpenAI, err.Error())
		}
		return t, nil
	default:
		return nil, errors.NewBackendConfigError(cfg.Name, "unknown provider")
	}
}

// New builds a retrying provider from cfg and policy.
func New(cfg Config, policy RetryPolicy, opts ...Option) (*ResilientCaller, error) {
	t, err := NewTransport(cfg)
	if err != nil {
		return nil, err
	}
	return NewResilientCaller(t, policy, opts...), nil
}
