// Package adapter provides the client side of an OpenAI-compatible chat
// completion service. Translators depend on the Completer interface, never on a
// concrete transport.
package adapter

import (
	"context"
)

// Completer issues a single chat completion request.
// Implementations must not retry: one call to Complete is one request upstream.
type Completer interface {
	// Complete sends req and returns the decoded response. Upstream failures
	// are returned as-is so callers can inspect them with errors.As.
	Complete(ctx context.Context, req OpenAIRequest) (OpenAIResponse, error)

	// Name returns the transport identifier string.
	Name() string
}
