// Package ai provides the shared error taxonomy for speech and language
// provider implementations (STT, LLM, TTS, oracle).
package ai

import "errors"

var (
	// ErrRecoverable indicates a temporary provider failure that may succeed
	// if retried. Examples: network timeout, rate limiting, temporary
	// service unavailability.
	ErrRecoverable = errors.New("recoverable provider error")

	// ErrFatal indicates a permanent provider failure that will not succeed
	// if retried. Examples: invalid API key, unsupported audio format,
	// malformed request.
	ErrFatal = errors.New("fatal provider error")
)

// IsRecoverable reports whether err is classified as recoverable.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrRecoverable)
}

// IsFatal reports whether err is classified as fatal.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}

// ProviderError wraps an underlying error with a retry classification.
type ProviderError struct {
	Underlying error
	Retryable  bool
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Underlying.Error()
}

func (e *ProviderError) Unwrap() error {
	if e.Retryable {
		return ErrRecoverable
	}
	return ErrFatal
}

// NewRecoverableError classifies err as retryable.
func NewRecoverableError(underlying error, message string) error {
	return &ProviderError{Underlying: underlying, Retryable: true, Message: message}
}

// NewFatalError classifies err as permanent.
func NewFatalError(underlying error, message string) error {
	return &ProviderError{Underlying: underlying, Retryable: false, Message: message}
}
