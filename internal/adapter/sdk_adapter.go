// Package adapter provides the client side of an OpenAI-compatible chat completion service.
package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// SDKAdapter implements Completer on top of the official openai-go client.
// The SDK's built-in retries are disabled so one Complete is one request.
type SDKAdapter struct {
	client  openai.Client
	baseURL string
}

// SDKAdapterOption configures an SDKAdapter.
type SDKAdapterOption func(*sdkSettings)

type sdkSettings struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// WithSDKBaseURL points the SDK at an alternate endpoint. An empty url keeps
// the SDK default.
func WithSDKBaseURL(url string) SDKAdapterOption {
	return func(s *sdkSettings) {
		s.baseURL = url
	}
}

// WithSDKHTTPClient sets the HTTP client used by the SDK.
func WithSDKHTTPClient(client *http.Client) SDKAdapterOption {
	return func(s *sdkSettings) {
		s.httpClient = client
	}
}

// WithSDKTimeout sets the HTTP timeout. Zero disables it.
func WithSDKTimeout(timeout time.Duration) SDKAdapterOption {
	return func(s *sdkSettings) {
		s.timeout = timeout
	}
}

// NewSDKAdapter creates an SDKAdapter authenticated with apiKey.
func NewSDKAdapter(apiKey string, opts ...SDKAdapterOption) *SDKAdapter {
	settings := &sdkSettings{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(settings)
	}

	// copy so an injected client is left as the caller configured it
	httpClient := &http.Client{}
	if settings.httpClient != nil {
		c := *settings.httpClient
		httpClient = &c
	}
	httpClient.Timeout = settings.timeout

	baseURL := DefaultOpenAIBaseURL
	if settings.baseURL != "" {
		baseURL = strings.TrimSuffix(settings.baseURL, "/")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		// the SDK joins paths relative to the base, so it needs the trailing slash
		option.WithBaseURL(baseURL+"/"),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	return &SDKAdapter{client: client, baseURL: baseURL}
}

// Name returns the transport identifier.
func (a *SDKAdapter) Name() string {
	return "sdk"
}

// BaseURL returns the endpoint requests are sent to.
func (a *SDKAdapter) BaseURL() string {
	return a.baseURL
}

// Complete sends req through the SDK. Error replies and undecodable bodies are
// reported as *APIError and *MalformedResponseError, like OpenAIAdapter does.
func (a *SDKAdapter) Complete(ctx context.Context, req OpenAIRequest) (OpenAIResponse, error) {
	completion, err := a.client.Chat.Completions.New(ctx, toSDKParams(req))
	if err != nil {
		return OpenAIResponse{}, fromSDKError(err)
	}

	return fromSDKCompletion(completion), nil
}

// fromSDKError maps SDK failures onto the adapter's error types. The
// *openai.Error stays reachable through errors.As.
func fromSDKError(err error) error {
	var sdkErr *openai.Error
	if errors.As(err, &sdkErr) {
		msg := sdkErr.Message
		if msg == "" {
			msg = http.StatusText(sdkErr.StatusCode)
		}
		return &APIError{
			StatusCode: sdkErr.StatusCode,
			Type:       sdkErr.Type,
			Code:       sdkErr.Code,
			Message:    msg,
			Err:        sdkErr,
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &MalformedResponseError{Reason: "invalid JSON body", Err: err}
	}

	return err
}

// toSDKParams converts the wire request to SDK params.
func toSDKParams(req OpenAIRequest) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*req.MaxTokens))
	}
	if req.User != "" {
		params.User = openai.String(req.User)
	}

	return params
}

// fromSDKCompletion converts an SDK completion to the wire response.
func fromSDKCompletion(c *openai.ChatCompletion) OpenAIResponse {
	resp := OpenAIResponse{
		ID:      c.ID,
		Object:  "chat.completion",
		Created: c.Created,
		Model:   c.Model,
		Choices: make([]OpenAIChoice, 0, len(c.Choices)),
		Usage: OpenAIUsage{
			PromptTokens:     int(c.Usage.PromptTokens),
			CompletionTokens: int(c.Usage.CompletionTokens),
			TotalTokens:      int(c.Usage.TotalTokens),
		},
	}

	for _, choice := range c.Choices {
		resp.Choices = append(resp.Choices, OpenAIChoice{
			Index: int(choice.Index),
			Message: OpenAIMessage{
				Role:    RoleAssistant,
				Content: choice.Message.Content,
			},
			FinishReason: string(choice.FinishReason),
		})
	}

	return resp
}
