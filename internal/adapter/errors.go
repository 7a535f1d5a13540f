// Package adapter provides the client side of an OpenAI-compatible chat completion service.
package adapter

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx reply from the completion service.
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string

	// Err is the client library's own error, when there is one.
	Err error
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("openai API error [%d] %s: %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("openai API error [%d]: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports a reply that does not match the chat
// completion schema: an undecodable body or a response without choices.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed completion response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed completion response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsAPIError checks if an error is or wraps an APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsMalformedResponseError checks if an error is or wraps a MalformedResponseError.
func IsMalformedResponseError(err error) bool {
	var malformed *MalformedResponseError
	return errors.As(err, &malformed)
}
