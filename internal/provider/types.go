package provider

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn sent to a text-generation backend.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Response is the text produced by one successful generation.
type Response struct {
	// Content is the generated text
	Content string `json:"content"`

	// Model that produced the response
	Model string `json:"model"`

	// Provider name (gemini, openai)
	Provider string `json:"provider"`

	// FinishReason as reported by the backend
	FinishReason string `json:"finish_reason,omitempty"`

	// Token accounting, when reported
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`

	// Latency of the successful attempt
	Latency time.Duration `json:"latency"`

	// Attempts made, including the successful one
	Attempts int `json:"attempts"`
}

// Config selects and configures a text-generation backend.
type Config struct {
	Name        string        `yaml:"name" json:"name"`
	Model       string        `yaml:"model" json:"model"`
	APIKey      string        `yaml:"api_key" json:"-"`
	BaseURL     string        `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Temperature float64       `yaml:"temperature" json:"temperature"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

const (
	NameGemini = "gemini"
	NameOpenAI = "openai"

	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash-exp"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultTimeout       = 120 * time.Second
)
