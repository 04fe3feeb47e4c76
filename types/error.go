package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across tokenbench.
type ErrorCode string

// Experiment error codes
const (
	ErrNoTokenizers    ErrorCode = "NO_TOKENIZERS"
	ErrTokenizerInit   ErrorCode = "TOKENIZER_INIT"
	ErrTokenizerEncode ErrorCode = "TOKENIZER_ENCODE"
	ErrInvalidConfig   ErrorCode = "INVALID_CONFIG"
)

// Corpus error codes
const (
	ErrCorpusNotFound    ErrorCode = "CORPUS_NOT_FOUND"
	ErrCorpusInvalid     ErrorCode = "CORPUS_INVALID"
	ErrFetchFailed       ErrorCode = "FETCH_FAILED"
	ErrTranslationFailed ErrorCode = "TRANSLATION_FAILED"
)

// Storage error codes
const (
	ErrStoreFailed ErrorCode = "STORE_FAILED"
)

// Error represents a structured error with code, message, and cause.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Tokenizer string    `json:"tokenizer,omitempty"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithTokenizer sets the tokenizer name the error relates to.
func (e *Error) WithTokenizer(name string) *Error {
	e.Tokenizer = name
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error chain.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsErrorCode reports whether err carries the given code anywhere in its chain.
func IsErrorCode(err error, code ErrorCode) bool {
	return err != nil && GetErrorCode(err) == code
}
