package types

import "fmt"

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants. All packages use these constants instead of
// hardcoded strings so failures can be counted and filtered in logs.
const (
	// Configuration (startup, before any I/O)
	ErrCodeConfigMissing ErrorCode = "config_missing_required_value"
	ErrCodeConfigInvalid ErrorCode = "config_invalid_value"

	// Database
	ErrCodeInternalDB ErrorCode = "internal_database_error"

	// Internal
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"

	// Email transport
	ErrCodeUpstreamEmailProvider ErrorCode = "upstream_email_provider_unavailable"
	ErrCodeUpstreamUnavailable   ErrorCode = "upstream_unavailable"
	ErrCodeUpstreamRateLimited   ErrorCode = "upstream_rate_limited"
	ErrCodeEmailBlocked          ErrorCode = "email_blocked"
)

// AppError is the standard application error type. All domain errors are
// expressed as AppError to enable consistent formatting, error chain
// support, and code-based handling at the dispatch layer.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy of the error with the provided details merged
// in, leaving the original error unchanged.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
