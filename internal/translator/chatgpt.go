// Package translator turns a chat completion service into a text translator.
package translator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hpn/gpt-translator/internal/adapter"
	"github.com/hpn/gpt-translator/internal/security"
)

// Well-known configuration store keys.
const (
	KeyAPIKey  = "OPENAI_API_KEY"
	KeyBaseURL = "OPENAI_BASE_URL"
	KeyModel   = "OPENAI_MODEL"
)

const (
	// DefaultSource is the source tag used when none is given.
	DefaultSource = "auto"

	// DefaultTarget is the target language used when none is given.
	DefaultTarget = "english"

	// DefaultModel is used when neither an option nor the store names a model.
	DefaultModel = "gpt-3.5-turbo"

	// TransportHTTP and TransportSDK select the completion client built when
	// none is injected.
	TransportHTTP = "http"
	TransportSDK  = "sdk"

	promptTemplate = "Translate below into %s, only return translated result:\n%s"
)

// Store is a read-only key-value source of defaults.
type Store interface {
	Lookup(key string) (string, bool)
}

// MapStore is a Store backed by a plain map.
type MapStore map[string]string

// Lookup implements Store.
func (m MapStore) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// ChatGPTTranslator translates text by asking a chat completion model to do it.
// It is immutable after construction and safe for concurrent use if its
// Completer is.
type ChatGPTTranslator struct {
	source  string
	target  string
	model   string
	baseURL string
	client  adapter.Completer
	logger  *slog.Logger
}

type settings struct {
	apiKey    string
	baseURL   string
	model     string
	store     Store
	client    adapter.Completer
	transport string
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures a ChatGPTTranslator.
type Option func(*settings)

// WithAPIKey sets the credential explicitly. An empty key falls back to the store.
func WithAPIKey(key string) Option {
	return func(s *settings) {
		s.apiKey = key
	}
}

// WithBaseURL overrides the completion endpoint.
func WithBaseURL(url string) Option {
	return func(s *settings) {
		s.baseURL = url
	}
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(s *settings) {
		s.model = model
	}
}

// WithStore sets the configuration store consulted for values not given
// explicitly.
func WithStore(store Store) Option {
	return func(s *settings) {
		s.store = store
	}
}

// WithCompleter injects the completion client. Without it the translator
// builds one for the configured transport.
func WithCompleter(c adapter.Completer) Option {
	return func(s *settings) {
		s.client = c
	}
}

// WithTransport selects TransportHTTP (default) or TransportSDK.
func WithTransport(name string) Option {
	return func(s *settings) {
		s.transport = name
	}
}

// WithTimeout sets the HTTP timeout of the built completion client.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = d
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewChatGPTTranslator resolves the credential, endpoint and model (explicit
// option, then store, then DefaultModel for the model) and returns a
// MissingCredentialError if no credential is found.
func NewChatGPTTranslator(source, target string, opts ...Option) (*ChatGPTTranslator, error) {
	s := &settings{
		transport: TransportHTTP,
		timeout:   adapter.DefaultTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if source == "" {
		source = DefaultSource
	}
	if target == "" {
		target = DefaultTarget
	}

	apiKey := resolve(s.apiKey, s.store, KeyAPIKey)
	if apiKey == "" {
		return nil, &MissingCredentialError{Key: KeyAPIKey}
	}
	baseURL := resolve(s.baseURL, s.store, KeyBaseURL)
	model := resolve(s.model, s.store, KeyModel)
	if model == "" {
		model = DefaultModel
	}

	client := s.client
	if client == nil {
		var err error
		client, err = newCompleter(s.transport, apiKey, baseURL, s.timeout)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Debug("translator ready",
		slog.String("client", client.Name()),
		slog.String("model", model),
		slog.String("key_hint", security.MaskKey(apiKey)),
	)

	return &ChatGPTTranslator{
		source:  source,
		target:  target,
		model:   model,
		baseURL: baseURL,
		client:  client,
		logger:  s.logger,
	}, nil
}

// resolve returns explicit if set, else the store's value for key.
func resolve(explicit string, store Store, key string) string {
	if explicit != "" {
		return explicit
	}
	if store == nil {
		return ""
	}
	v, _ := store.Lookup(key)
	return v
}

func newCompleter(transport, apiKey, baseURL string, timeout time.Duration) (adapter.Completer, error) {
	switch transport {
	case TransportHTTP, "":
		return adapter.NewOpenAIAdapter(apiKey,
			adapter.WithBaseURL(baseURL),
			adapter.WithTimeout(timeout),
		), nil
	case TransportSDK:
		return adapter.NewSDKAdapter(apiKey,
			adapter.WithSDKBaseURL(baseURL),
			adapter.WithSDKTimeout(timeout),
		), nil
	default:
		return nil, fmt.Errorf("unknown transport %q, must be one of: %s, %s", transport, TransportHTTP, TransportSDK)
	}
}

// Source returns the source language tag. It plays no part in the prompt.
func (t *ChatGPTTranslator) Source() string { return t.source }

// Target returns the target language name.
func (t *ChatGPTTranslator) Target() string { return t.target }

// Model returns the resolved model identifier.
func (t *ChatGPTTranslator) Model() string { return t.model }

// BaseURL returns the endpoint override, or "" for the client default.
func (t *ChatGPTTranslator) BaseURL() string { return t.baseURL }

// Translate sends text to the model in a single request and returns the first
// choice's content as is. Upstream errors are returned unchanged.
func (t *ChatGPTTranslator) Translate(ctx context.Context, text string) (string, error) {
	req := adapter.OpenAIRequest{
		Model: t.model,
		Messages: []adapter.OpenAIMessage{
			{Role: adapter.RoleUser, Content: BuildPrompt(t.target, text)},
		},
	}

	t.logger.Debug("requesting translation",
		slog.String("model", t.model),
		slog.String("target", t.target),
		slog.String("transport", t.client.Name()),
		slog.Int("text_bytes", len(text)),
	)

	resp, err := t.client.Complete(ctx, req)
	if err != nil {
		return "", err
	}

	return resp.FirstContent()
}

// TranslateFile translates the content of the file at path.
func (t *ChatGPTTranslator) TranslateFile(ctx context.Context, path string) (string, error) {
	return TranslateFile(ctx, t, path)
}

// TranslateBatch translates each item of batch in order.
func (t *ChatGPTTranslator) TranslateBatch(ctx context.Context, batch []string) ([]string, error) {
	return TranslateBatch(ctx, t, batch)
}

// BuildPrompt returns the instruction sent to the model.
func BuildPrompt(target, text string) string {
	return fmt.Sprintf(promptTemplate, target, text)
}
