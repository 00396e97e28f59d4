package x3270protocol

import (
	"errors"
	"fmt"
)

// Sentinel errors for the scripting protocol.
var (
	// ErrInvalidArgument indicates malformed input detected before any I/O.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState indicates an operation attempted on a session that
	// cannot perform it, such as one with no attached stream.
	ErrInvalidState = errors.New("invalid state")

	// ErrActionFailed indicates the emulator rejected an action.
	ErrActionFailed = errors.New("action failed")

	// ErrDisconnected indicates the stream closed or failed mid-exchange.
	ErrDisconnected = errors.New("emulator disconnected")
)

// ArgumentError describes a value rejected by validation.
type ArgumentError struct {
	Field   string // What was being set, e.g. "host name" or "port"
	Value   string // The rejected value
	Message string // Why it was rejected
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Value, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidArgument.
func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

func newArgumentError(field, value, message string) error {
	return &ArgumentError{Field: field, Value: value, Message: message}
}

// ActionError is returned when the emulator answers with the error prompt.
// Detail holds the reply data with data prefixes removed, which is normally
// the emulator's explanation of the failure.
type ActionError struct {
	Detail string
	Reply  *Reply
}

// Error implements the error interface.
func (e *ActionError) Error() string {
	if e.Detail == "" {
		return ErrActionFailed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrActionFailed, e.Detail)
}

// Unwrap lets errors.Is match ErrActionFailed.
func (e *ActionError) Unwrap() error {
	return ErrActionFailed
}

// Trace returns the debug trace of the failed exchange.
func (e *ActionError) Trace() []string {
	if e.Reply == nil {
		return nil
	}
	return e.Reply.Trace
}

// DisconnectError is returned when the stream closes or an I/O error
// occurs during an exchange. The session is unusable afterwards.
type DisconnectError struct {
	Message string
	Cause   error
	trace   []string
}

// Error implements the error interface.
func (e *DisconnectError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrDisconnected, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrDisconnected, e.Message)
}

// Unwrap returns ErrDisconnected and, when present, the underlying cause.
func (e *DisconnectError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrDisconnected}
	}
	return []error{ErrDisconnected, e.Cause}
}

// Trace returns the debug trace of the failed exchange.
func (e *DisconnectError) Trace() []string {
	return e.trace
}

// ConnectionError represents a failure to establish a session.
type ConnectionError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("connection failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("connection failed: %s", e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// NewConnectionError creates a new connection error.
func NewConnectionError(message string, cause error) error {
	return &ConnectionError{Message: message, Cause: cause}
}
