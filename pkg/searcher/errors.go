package searcher

import (
	"errors"
	"fmt"
)

// ErrorClass classifies a SearchError for the driving loop.
type ErrorClass string

const (
	// ErrorClassExhausted signals that the frontier ran empty. It ends an
	// exploration run normally.
	ErrorClassExhausted ErrorClass = "exhausted"

	// ErrorClassInternal signals a broken scheduler invariant, such as a
	// removed state that was never tracked. It is not recoverable.
	ErrorClassInternal ErrorClass = "internal"

	// ErrorClassInvalid signals malformed input, such as a bad distance
	// record under strict parsing.
	ErrorClassInvalid ErrorClass = "invalid"
)

// Error codes.
const (
	ErrCodeEmptyFrontier     = "EMPTY_FRONTIER"
	ErrCodeInvalidHandle     = "INVALID_HANDLE"
	ErrCodeDuplicateState    = "DUPLICATE_STATE"
	ErrCodeMalformedDistance = "MALFORMED_DISTANCE"
)

// Sentinels for errors.Is. Matching compares class and code only.
var (
	ErrEmptyFrontier = &SearchError{Class: ErrorClassExhausted, Code: ErrCodeEmptyFrontier, Message: "frontier is empty"}
	ErrInvalidHandle = &SearchError{Class: ErrorClassInternal, Code: ErrCodeInvalidHandle, Message: "invalid handle"}
)

// SearchError is a classified scheduler error with context.
type SearchError struct {
	// Class is the error classification.
	Class ErrorClass `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Code is an optional error code for programmatic handling.
	Code string `json:"code,omitempty"`

	// State is the identity of the state involved, if any.
	State string `json:"state,omitempty"`

	// Operation is the scheduler operation that failed.
	Operation string `json:"operation,omitempty"`

	// Err is the underlying error.
	Err error `json:"-"`

	// Details contains additional context-specific information.
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *SearchError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Class, e.Message)
	if e.State != "" && e.Operation != "" {
		msg = fmt.Sprintf("%s (state=%s, operation=%s)", msg, e.State, e.Operation)
	} else if e.State != "" {
		msg = fmt.Sprintf("%s (state=%s)", msg, e.State)
	} else if e.Operation != "" {
		msg = fmt.Sprintf("%s (operation=%s)", msg, e.Operation)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *SearchError) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *SearchError) Is(target error) bool {
	t, ok := target.(*SearchError)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

// NewExhaustedError creates a new exhausted error.
func NewExhaustedError(message string, err error) *SearchError {
	return &SearchError{
		Class:   ErrorClassExhausted,
		Message: message,
		Err:     err,
	}
}

// NewInternalError creates a new internal invariant error.
func NewInternalError(message string, err error) *SearchError {
	return &SearchError{
		Class:   ErrorClassInternal,
		Message: message,
		Err:     err,
	}
}

// NewInvalidError creates a new invalid input error.
func NewInvalidError(message string, err error) *SearchError {
	return &SearchError{
		Class:   ErrorClassInvalid,
		Message: message,
		Err:     err,
	}
}

// WithState adds state context to an error.
func (e *SearchError) WithState(id StateID) *SearchError {
	e.State = id.String()
	return e
}

// WithOperation adds operation context to an error.
func (e *SearchError) WithOperation(operation string) *SearchError {
	e.Operation = operation
	return e
}

// WithCode adds an error code to an error.
func (e *SearchError) WithCode(code string) *SearchError {
	e.Code = code
	return e
}

// WithDetail adds a detail field to the error context.
func (e *SearchError) WithDetail(key string, value interface{}) *SearchError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsExhausted returns true if the error reports an empty frontier.
func IsExhausted(err error) bool {
	return hasClass(err, ErrorClassExhausted)
}

// IsInternal returns true if the error reports a broken invariant.
func IsInternal(err error) bool {
	return hasClass(err, ErrorClassInternal)
}

// IsInvalid returns true if the error reports malformed input.
func IsInvalid(err error) bool {
	return hasClass(err, ErrorClassInvalid)
}

func hasClass(err error, class ErrorClass) bool {
	var e *SearchError
	if errors.As(err, &e) {
		return e.Class == class
	}
	return false
}
