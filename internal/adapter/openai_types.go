// Package adapter provides the client side of an OpenAI-compatible chat completion service.
package adapter

// Chat completion wire schema, as spoken by api.openai.com and compatible
// endpoints.

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// OpenAIRequest represents a chat completion request.
type OpenAIRequest struct {
	// Model specifies which model to use (e.g., "gpt-3.5-turbo").
	Model string `json:"model"`

	// Messages contains the conversation. Translators send exactly one user message.
	Messages []OpenAIMessage `json:"messages"`

	// Temperature controls randomness (0.0-2.0). Optional.
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens limits the response length. Optional.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// User is a unique identifier for the end-user. Optional.
	User string `json:"user,omitempty"`
}

// OpenAIMessage represents a single message in the conversation.
type OpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIResponse represents a chat completion response.
type OpenAIResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []OpenAIChoice `json:"choices"`
	Usage   OpenAIUsage    `json:"usage"`
}

// OpenAIChoice represents a single completion choice.
type OpenAIChoice struct {
	Index   int           `json:"index"`
	Message OpenAIMessage `json:"message"`

	// FinishReason indicates why the model stopped generating
	// ("stop", "length", "content_filter").
	FinishReason string `json:"finish_reason"`
}

// OpenAIUsage contains token usage statistics.
type OpenAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// OpenAIError represents an error body returned by OpenAI-compatible APIs.
type OpenAIError struct {
	Error OpenAIErrorDetail `json:"error"`
}

// OpenAIErrorDetail contains the error details.
type OpenAIErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
	Code    string `json:"code,omitempty"`
}

// FirstContent returns the text of the first choice, untouched.
// A response without choices yields a MalformedResponseError.
func (r OpenAIResponse) FirstContent() (string, error) {
	if len(r.Choices) == 0 {
		return "", &MalformedResponseError{Reason: "response contains no choices"}
	}
	return r.Choices[0].Message.Content, nil
}
