// Package adapter provides the client side of an OpenAI-compatible chat completion service.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultOpenAIBaseURL is the endpoint used when no override is configured.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 60 * time.Second

	chatCompletionsPath = "/chat/completions"
)

// OpenAIAdapter implements Completer over plain HTTP.
type OpenAIAdapter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// OpenAIAdapterOption is a functional option for configuring OpenAIAdapter.
type OpenAIAdapterOption func(*OpenAIAdapter)

// WithBaseURL points the adapter at an alternate endpoint. An empty url keeps
// the default.
func WithBaseURL(url string) OpenAIAdapterOption {
	return func(a *OpenAIAdapter) {
		if url != "" {
			a.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client. The adapter works on a copy, so
// later options such as WithTimeout do not change the caller's client.
func WithHTTPClient(client *http.Client) OpenAIAdapterOption {
	return func(a *OpenAIAdapter) {
		if client != nil {
			c := *client
			a.httpClient = &c
		}
	}
}

// WithTimeout sets the HTTP client timeout. Zero disables the timeout.
func WithTimeout(timeout time.Duration) OpenAIAdapterOption {
	return func(a *OpenAIAdapter) {
		a.httpClient.Timeout = timeout
	}
}

// NewOpenAIAdapter creates an OpenAIAdapter authenticated with apiKey.
func NewOpenAIAdapter(apiKey string, opts ...OpenAIAdapterOption) *OpenAIAdapter {
	a := &OpenAIAdapter{
		apiKey:  apiKey,
		baseURL: DefaultOpenAIBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Name returns the transport identifier.
func (a *OpenAIAdapter) Name() string {
	return "http"
}

// BaseURL returns the endpoint requests are sent to.
func (a *OpenAIAdapter) BaseURL() string {
	return a.baseURL
}

// Complete posts req to {baseURL}/chat/completions and decodes the reply.
// Transport errors from the HTTP client are returned as is.
func (a *OpenAIAdapter) Complete(ctx context.Context, req OpenAIRequest) (OpenAIResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return OpenAIResponse{}, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		return OpenAIResponse{}, fmt.Errorf("failed to create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return OpenAIResponse{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return OpenAIResponse{}, fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return OpenAIResponse{}, newAPIError(resp.StatusCode, respBody)
	}

	var out OpenAIResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return OpenAIResponse{}, &MalformedResponseError{Reason: "invalid JSON body", Err: err}
	}

	return out, nil
}

// newAPIError builds an APIError from an error reply, falling back to the raw
// body when it is not an OpenAI error envelope.
func newAPIError(status int, body []byte) *APIError {
	var envelope OpenAIError
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &APIError{
			StatusCode: status,
			Type:       envelope.Error.Type,
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}
