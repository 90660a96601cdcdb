package ux

import (
	"fmt"
	"strings"

	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a suggestion to errors from outside the MiowError
// taxonomy. MiowErrors already carry their own suggestions.
func EnhanceError(err error) error {
	if err == nil || errors.CodeOf(err) != "" {
		return err
	}

	errMsg := err.Error()

	if strings.Contains(errMsg, "no such file or directory") {
		switch {
		case strings.Contains(errMsg, "config.yaml"):
			return NewErrorWithSuggestion(err, "Write a default config with 'miow config init'")
		case strings.Contains(errMsg, "workers.yaml"):
			return NewErrorWithSuggestion(err, "Dump the built-in catalog with 'miow workers --format yaml > .miow/workers.yaml'")
		case strings.Contains(errMsg, "symbols") && strings.Contains(errMsg, ".json"):
			return NewErrorWithSuggestion(err, "Export symbols from your parser as a JSON array of {name, kind, file_path, content}")
		}
	}

	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check file permissions and ensure you have access to the .miow directory")
	}

	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no route to host") {
		return NewErrorWithSuggestion(err,
			"Check your network connection and the provider.base_url setting")
	}

	if strings.Contains(errMsg, "API key") || strings.Contains(errMsg, "api key") {
		return NewErrorWithSuggestion(err,
			"Set MIOW_API_KEY, or GEMINI_API_KEY / OPENAI_API_KEY for the selected provider")
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
