// Package erralph defines the error taxonomy shared by every engine
// component: a small set of sentinel errors plus an annotated wrapper that
// carries the context a caller needs to route or log a failure.
package erralph

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match against these with errors.Is, never string
// comparison.
var (
	ErrInvalidKey               = errors.New("invalid key")
	ErrInvalidModel             = errors.New("invalid model")
	ErrInvalidRecord            = errors.New("invalid record")
	ErrConnectionNotOpen        = errors.New("connection not open")
	ErrConnectionOpeningTimeout = errors.New("connection opening timeout")
	ErrConnectionReadingTimeout = errors.New("connection reading timeout")
	ErrConnectionWritingTimeout = errors.New("connection writing timeout")
	ErrInvalidDate              = errors.New("invalid date")
)

// Error wraps an underlying error with the annotations the engine attaches
// before handing it to an on_error callback: which connection raised it,
// which key was involved, and whatever extra data/args are relevant.
type Error struct {
	Err      error
	ClientID string
	Key      string
	Data     any
	Args     map[string]any
}

// New wraps err with the given client/key context. Data and Args default to
// nil/empty and can be set on the returned *Error before it escapes.
func New(err error, clientID, key string) *Error {
	return &Error{Err: err, ClientID: clientID, Key: key}
}

// WithArgs returns e with Args set, for chaining at the call site.
func (e *Error) WithArgs(args map[string]any) *Error {
	e.Args = args
	return e
}

// WithData returns e with Data set, for chaining at the call site.
func (e *Error) WithData(data any) *Error {
	e.Data = data
	return e
}

// Title is a short, stable label for the failure kind, suitable for metrics
// or log-field grouping. It does not include the dynamic message.
func (e *Error) Title() string {
	switch {
	case errors.Is(e.Err, ErrInvalidKey):
		return "InvalidKey"
	case errors.Is(e.Err, ErrInvalidModel):
		return "InvalidModel"
	case errors.Is(e.Err, ErrInvalidRecord):
		return "InvalidRecord"
	case errors.Is(e.Err, ErrConnectionNotOpen):
		return "ConnectionNotOpen"
	case errors.Is(e.Err, ErrConnectionOpeningTimeout):
		return "ConnectionOpeningTimeout"
	case errors.Is(e.Err, ErrConnectionReadingTimeout):
		return "ConnectionReadingTimeout"
	case errors.Is(e.Err, ErrConnectionWritingTimeout):
		return "ConnectionWritingTimeout"
	case errors.Is(e.Err, ErrInvalidDate):
		return "InvalidDate"
	default:
		return "Error"
	}
}

// Message is the full human-readable description, including client/key
// context, suitable for direct logging.
func (e *Error) Message() string {
	return fmt.Sprintf("%s: client=%q key=%q: %s", e.Title(), e.ClientID, e.Key, e.Err)
}

func (e *Error) Error() string { return e.Message() }

func (e *Error) Unwrap() error { return e.Err }
