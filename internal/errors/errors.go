package errors

import (
	stderrors "errors"
	"fmt"
)

// RetrievalError is the structured error type for goldenretriever.
// It carries enough context for logging, CLI presentation and programmatic checks.
type RetrievalError struct {
	// Code is the unique error code (e.g., "ERR_103_UNKNOWN_STRATEGY").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Resource, Input, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *RetrievalError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *RetrievalError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
func (e *RetrievalError) Is(target error) bool {
	if t, ok := target.(*RetrievalError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *RetrievalError) WithDetail(key, value string) *RetrievalError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *RetrievalError) WithSuggestion(suggestion string) *RetrievalError {
	e.Suggestion = suggestion
	return e
}

// New creates a new RetrievalError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *RetrievalError {
	return &RetrievalError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Newf is New with a formatted message and no cause.
func Newf(code string, format string, args ...any) *RetrievalError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Wrap creates a RetrievalError from an existing error.
// The error's message becomes the RetrievalError message.
func Wrap(code string, err error) *RetrievalError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration error.
func ConfigError(message string, cause error) *RetrievalError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ResourceError creates an error for a model that could not be loaded.
func ResourceError(message string, cause error) *RetrievalError {
	return New(ErrCodeModelLoadFailed, message, cause)
}

// InputError creates an error for an invalid call argument.
func InputError(message string, cause error) *RetrievalError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *RetrievalError {
	return New(ErrCodeInternal, message, cause)
}

// As finds the first RetrievalError in err's chain.
func As(err error) (*RetrievalError, bool) {
	var re *RetrievalError
	if stderrors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsFatal reports whether err aborts construction.
func IsFatal(err error) bool {
	if re, ok := As(err); ok {
		return re.Severity == SeverityFatal
	}
	return false
}

// HasCode reports whether any RetrievalError in err's chain has the given code.
func HasCode(err error, code string) bool {
	return stderrors.Is(err, &RetrievalError{Code: code})
}

// GetCode extracts the error code from a RetrievalError.
// Returns empty string if err carries none.
func GetCode(err error) string {
	if re, ok := As(err); ok {
		return re.Code
	}
	return ""
}

// GetCategory extracts the category from a RetrievalError.
// Returns empty string if err carries none.
func GetCategory(err error) Category {
	if re, ok := As(err); ok {
		return re.Category
	}
	return ""
}
