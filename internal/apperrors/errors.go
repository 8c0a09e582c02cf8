package apperrors

import "fmt"

// Error is the structured error type returned at every package boundary in
// this module. It carries enough context for callers and logs without
// forcing string parsing.
type Error struct {
	Code      Code
	Message   string
	Category  Category
	Details   map[string]string
	Cause     error
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Code so errors.Is(err, apperrors.New(CodeIO, "")) works
// regardless of message or details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates an Error with category and default retryability derived from
// the code.
func New(code Code, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Category:  categoryFor(code),
		Retryable: retryableByDefault(code),
	}
}

// Wrap creates an Error that preserves an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	e := New(code, message)
	e.Cause = cause
	return e
}

// WithDetail attaches a key/value pair of structured context and returns the
// receiver for chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// DimensionMismatch reports that a vector's length disagrees with the
// configured dimensionality.
func DimensionMismatch(expected, got int) *Error {
	return New(CodeDimensionMismatch, fmt.Sprintf("dimension mismatch: expected %d, got %d", expected, got)).
		WithDetail("expected", fmt.Sprint(expected)).
		WithDetail("got", fmt.Sprint(got))
}

// DuplicateID reports that a document id was already present.
func DuplicateID(id string) *Error {
	return New(CodeDuplicateID, fmt.Sprintf("document id already exists: %s", id)).
		WithDetail("id", id)
}

// Cancelled reports cooperative cancellation of a long-running operation.
func Cancelled() *Error {
	return New(CodeCancelled, "operation cancelled")
}
