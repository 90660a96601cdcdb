package exitcode

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid usage or configuration (bad flags, unknown worker, invalid config file)
	UsageError = 2

	// DecodeError indicates a model reply that could not be decoded where no fallback exists
	DecodeError = 3

	// SearchError indicates the symbol store could not be opened or queried
	SearchError = 4

	// AuthError indicates a missing or rejected API key
	AuthError = 5

	// BackendError indicates the text-generation backend was unreachable after all retries
	BackendError = 6

	// Interrupted indicates the run was cancelled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps err to an exit code, preferring the MiowError code
// and falling back to message inspection for errors from libraries.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if stderrors.Is(err, context.Canceled) {
		return Interrupted
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodeUnknownWorker, errors.ErrCodeConfigInvalid:
		return UsageError
	case errors.ErrCodeBackendConfig:
		return AuthError
	case errors.ErrCodeBackendExhausted:
		return BackendError
	case errors.ErrCodeDecode:
		return DecodeError
	case errors.ErrCodeSearchBackend, errors.ErrCodeSearchStore:
		return SearchError
	}

	errMsg := strings.ToLower(err.Error())

	// Usage errors
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "missing argument") {
		return UsageError
	}
	if strings.Contains(errMsg, "accepts") && strings.Contains(errMsg, "arg(s)") {
		return UsageError
	}

	// Authentication errors
	if strings.Contains(errMsg, "unauthorized") || strings.Contains(errMsg, "api key") {
		return AuthError
	}

	// Network errors
	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "timeout") {
		return BackendError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage or configuration error"
	case DecodeError:
		return "Malformed model reply"
	case SearchError:
		return "Symbol store error"
	case AuthError:
		return "Authentication error"
	case BackendError:
		return "Text-generation backend unavailable"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
