package models

import (
	"errors"
	"fmt"
)

// ErrEmptyMenu means the vision model found no dishes in the image. Not a
// bug; surfaced to the user as a friendly message.
var ErrEmptyMenu = errors.New("no dishes detected in the image")

// ValidationError is a caller mistake (bad upload, missing field). Maps to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// UpstreamError wraps a network, timeout or 5xx failure from an external API.
// Transient; the core does not retry it.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream error: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means an upstream returned data we cannot parse.
// Payload is truncated for logging, never echoed to the user.
type MalformedResponseError struct {
	Service string
	Payload string
	Err     error
}

const maxPayloadSnippet = 512

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s returned malformed response: %v", e.Service, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// Snippet returns the offending payload truncated for diagnostics.
func (e *MalformedResponseError) Snippet() string {
	if len(e.Payload) > maxPayloadSnippet {
		return e.Payload[:maxPayloadSnippet] + "..."
	}
	return e.Payload
}
