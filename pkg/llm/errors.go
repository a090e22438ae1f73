package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies upstream LLM failures.
type ErrorType string

const (
	ErrTypeAuth      ErrorType = "auth"
	ErrTypeRateLimit ErrorType = "rate_limit"
	ErrTypeTimeout   ErrorType = "timeout"
	ErrTypeServer    ErrorType = "server"
	ErrTypeNetwork   ErrorType = "network"
	ErrTypeUnknown   ErrorType = "unknown"
)

// Error is a structured LLM error with classification.
type Error struct {
	Type      ErrorType
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable implements the retry.RetryableError interface so the retry
// package can check retryability without importing llm.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// ClassifyError categorizes an upstream error into a structured Error.
// Auth failures are permanent; rate limits, timeouts, and 5xx are retryable.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "401") || strings.Contains(lower, "403") ||
		strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key"):
		return &Error{Type: ErrTypeAuth, Message: "authentication failed", Retryable: false, Cause: err}
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit"):
		return &Error{Type: ErrTypeRateLimit, Message: "rate limited", Retryable: true, Cause: err}
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded"):
		return &Error{Type: ErrTypeTimeout, Message: "request timed out", Retryable: true, Cause: err}
	case strings.Contains(lower, "500") || strings.Contains(lower, "502") ||
		strings.Contains(lower, "503") || strings.Contains(lower, "overloaded"):
		return &Error{Type: ErrTypeServer, Message: "upstream server error", Retryable: true, Cause: err}
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host"):
		return &Error{Type: ErrTypeNetwork, Message: "network error", Retryable: true, Cause: err}
	default:
		return &Error{Type: ErrTypeUnknown, Message: "llm request failed", Retryable: false, Cause: err}
	}
}
