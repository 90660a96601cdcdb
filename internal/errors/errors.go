package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeUnknownWorker ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid ErrorCode = "CONFIG-002"

	// Text-generation backend errors (BACKEND-001 to BACKEND-099)
	ErrCodeBackendExhausted ErrorCode = "BACKEND-001"
	ErrCodeBackendConfig    ErrorCode = "BACKEND-002"

	// Model reply decoding errors (DECODE-001 to DECODE-099)
	ErrCodeDecode ErrorCode = "DECODE-001"

	// Retrieval backend errors (SEARCH-001 to SEARCH-099)
	ErrCodeSearchBackend ErrorCode = "SEARCH-001"
	ErrCodeSearchStore   ErrorCode = "SEARCH-002"
)

// MiowError represents an enhanced error with code, suggestions, and documentation
type MiowError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *MiowError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *MiowError) Unwrap() error {
	return e.Cause
}

// New creates a new MiowError
func New(code ErrorCode, message string) *MiowError {
	return &MiowError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new MiowError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *MiowError {
	return &MiowError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *MiowError) WithSuggestion(suggestion string) *MiowError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *MiowError) WithSuggestions(suggestions ...string) *MiowError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *MiowError) WithDocs(url string) *MiowError {
	e.DocsURL = url
	return e
}

// CodeOf returns the code of the first MiowError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var me *MiowError
	if stderrors.As(err, &me) {
		return me.Code
	}
	return ""
}

// HasCode reports whether any MiowError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var me *MiowError
		if !stderrors.As(err, &me) {
			return false
		}
		if me.Code == code {
			return true
		}
		err = me.Cause
	}
	return false
}

// NewUnknownWorkerError creates the error returned for a worker key missing from the registry
func NewUnknownWorkerError(key string) *MiowError {
	return New(ErrCodeUnknownWorker, fmt.Sprintf("unknown worker key: %s", key)).
		WithSuggestion("Run 'miow workers' to list the registered workers").
		WithSuggestion("Check the worker catalog file if a custom catalog is configured")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(path string, cause error) *MiowError {
	return Wrap(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", path), cause).
		WithSuggestion("Run 'miow config show' to inspect the effective configuration")
}

// NewBackendExhaustedError creates the error surfaced after every retry attempt failed
func NewBackendExhaustedError(provider string, attempts int, cause error) *MiowError {
	return Wrap(ErrCodeBackendExhausted, fmt.Sprintf("text generation failed for provider %s after %d attempts", provider, attempts), cause).
		WithSuggestion("Check network connectivity and the provider status page").
		WithSuggestion(fmt.Sprintf("Verify the %s_API_KEY environment variable", strings.ToUpper(provider)))
}

// NewBackendConfigError creates a provider misconfiguration error
func NewBackendConfigError(provider string, details string) *MiowError {
	return New(ErrCodeBackendConfig, fmt.Sprintf("provider %s is misconfigured: %s", provider, details)).
		WithSuggestion("Set provider.name to one of: gemini, openai")
}

// NewDecodeError creates an error for a model reply that could not be decoded
func NewDecodeError(what string, raw string, cause error) *MiowError {
	preview := raw
	if len(preview) > 120 {
		preview = preview[:120] + "..."
	}
	return Wrap(ErrCodeDecode, fmt.Sprintf("malformed %s reply: %q", what, preview), cause)
}

// NewSearchBackendError creates an error for an unreachable retrieval backend
func NewSearchBackendError(backend string, cause error) *MiowError {
	return Wrap(ErrCodeSearchBackend, fmt.Sprintf("search backend %s failed", backend), cause)
}

// NewSearchStoreError creates an error for a symbol store that could not be opened
func NewSearchStoreError(path string, cause error) *MiowError {
	return Wrap(ErrCodeSearchStore, fmt.Sprintf("failed to open symbol store: %s", path), cause).
		WithSuggestion("Run 'miow index --symbols <file>' to build the store").
		WithSuggestion("Check that the directory is writable")
}
