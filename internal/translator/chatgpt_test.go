package translator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hpn/gpt-translator/internal/adapter"
)

// stubCompleter records requests and replies with a fixed response.
type stubCompleter struct {
	resp     adapter.OpenAIResponse
	err      error
	requests []adapter.OpenAIRequest
}

func (s *stubCompleter) Complete(_ context.Context, req adapter.OpenAIRequest) (adapter.OpenAIResponse, error) {
	s.requests = append(s.requests, req)
	return s.resp, s.err
}

func (s *stubCompleter) Name() string { return "stub" }

func replying(content string) *stubCompleter {
	return &stubCompleter{resp: adapter.OpenAIResponse{
		Choices: []adapter.OpenAIChoice{{Message: adapter.OpenAIMessage{Role: adapter.RoleAssistant, Content: content}}},
	}}
}

func TestNewChatGPTTranslator_MissingCredential(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "no key, no store"},
		{name: "empty explicit key, no store", opts: []Option{WithAPIKey("")}},
		{name: "no key, store without entry", opts: []Option{WithStore(MapStore{KeyModel: "gpt-4o"})}},
		{name: "no key, store with empty entry", opts: []Option{WithStore(MapStore{KeyAPIKey: ""})}},
		{name: "empty key, store with empty entry", opts: []Option{WithAPIKey(""), WithStore(MapStore{KeyAPIKey: ""})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewChatGPTTranslator("auto", "french", tt.opts...)
			if tr != nil {
				t.Errorf("NewChatGPTTranslator() = %v, want nil", tr)
			}
			if !IsMissingCredentialError(err) {
				t.Fatalf("NewChatGPTTranslator() error = %v, want MissingCredentialError", err)
			}
			var missing *MissingCredentialError
			errors.As(err, &missing)
			if missing.Key != KeyAPIKey {
				t.Errorf("Key = %s, want %s", missing.Key, KeyAPIKey)
			}
		})
	}
}

func TestNewChatGPTTranslator_ExplicitKeyWins(t *testing.T) {
	pairs := []struct{ explicit, stored string }{
		{"sk-explicit", "sk-stored"},
		{"a", "b"},
		{"same", "same"},
	}

	for _, p := range pairs {
		t.Run(p.explicit+"/"+p.stored, func(t *testing.T) {
			var gotAuth string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`))
			}))
			defer srv.Close()

			tr, err := NewChatGPTTranslator("auto", "french",
				WithAPIKey(p.explicit),
				WithStore(MapStore{KeyAPIKey: p.stored, KeyBaseURL: srv.URL}),
			)
			if err != nil {
				t.Fatalf("NewChatGPTTranslator() error = %v", err)
			}
			if _, err := tr.Translate(context.Background(), "x"); err != nil {
				t.Fatalf("Translate() error = %v", err)
			}
			if gotAuth != "Bearer "+p.explicit {
				t.Errorf("Authorization = %q, want Bearer %s", gotAuth, p.explicit)
			}
		})
	}
}

func TestNewChatGPTTranslator_StoreKeyFallback(t *testing.T) {
	tr, err := NewChatGPTTranslator("", "", WithStore(MapStore{KeyAPIKey: "sk-stored"}), WithCompleter(replying("")))
	if err != nil {
		t.Fatalf("NewChatGPTTranslator() error = %v", err)
	}
	if tr.Source() != DefaultSource {
		t.Errorf("Source() = %s, want %s", tr.Source(), DefaultSource)
	}
	if tr.Target() != DefaultTarget {
		t.Errorf("Target() = %s, want %s", tr.Target(), DefaultTarget)
	}
	if tr.BaseURL() != "" {
		t.Errorf("BaseURL() = %s, want empty", tr.BaseURL())
	}
}

func TestTranslate_Prompt(t *testing.T) {
	stub := replying("Bonjour")
	tr, err := NewChatGPTTranslator("auto", "french", WithAPIKey("k"), WithCompleter(stub))
	if err != nil {
		t.Fatalf("NewChatGPTTranslator() error = %v", err)
	}

	if _, err := tr.Translate(context.Background(), "Hello"); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	if len(stub.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(stub.requests))
	}
	msgs := stub.requests[0].Messages
	if len(msgs) != 1 {
		t.Fatalf("len(Messages) = %d, want 1", len(msgs))
	}
	if msgs[0].Role != adapter.RoleUser {
		t.Errorf("Role = %s, want user", msgs[0].Role)
	}
	want := "Translate below into french, only return translated result:\nHello"
	if msgs[0].Content != want {
		t.Errorf("Content = %q, want %q", msgs[0].Content, want)
	}
}

func TestTranslate_ReturnsFirstChoice(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"plain", "Bonjour"},
		{"untrimmed", "  Bonjour\n"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewChatGPTTranslator("auto", "french", WithAPIKey("k"), WithCompleter(replying(tt.content)))
			if err != nil {
				t.Fatalf("NewChatGPTTranslator() error = %v", err)
			}
			got, err := tr.Translate(context.Background(), "Hello")
			if err != nil {
				t.Fatalf("Translate() error = %v", err)
			}
			if got != tt.content {
				t.Errorf("Translate() = %q, want %q", got, tt.content)
			}
		})
	}
}

func TestTranslate_ZeroChoices(t *testing.T) {
	stub := &stubCompleter{}
	tr, err := NewChatGPTTranslator("auto", "french", WithAPIKey("k"), WithCompleter(stub))
	if err != nil {
		t.Fatalf("NewChatGPTTranslator() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := tr.Translate(context.Background(), "Hello")
		if !adapter.IsMalformedResponseError(err) {
			t.Fatalf("call %d: Translate() error = %v, want MalformedResponseError", i, err)
		}
		if got != "" {
			t.Errorf("call %d: Translate() = %q, want empty", i, got)
		}
	}
	if len(stub.requests) != 3 {
		t.Errorf("requests = %d, want 3", len(stub.requests))
	}
}

func TestTranslate_UpstreamErrorUnchanged(t *testing.T) {
	upstream := &adapter.APIError{StatusCode: 401, Message: "bad key"}
	tr, err := NewChatGPTTranslator("auto", "french", WithAPIKey("k"), WithCompleter(&stubCompleter{err: upstream}))
	if err != nil {
		t.Fatalf("NewChatGPTTranslator() error = %v", err)
	}

	_, err = tr.Translate(context.Background(), "Hello")
	if err != upstream {
		t.Errorf("Translate() error = %v, want the upstream error itself", err)
	}
}

func TestTranslate_EmptyTextForwarded(t *testing.T) {
	stub := replying("")
	tr, err := NewChatGPTTranslator("auto", "german", WithAPIKey("k"), WithCompleter(stub))
	if err != nil {
		t.Fatalf("NewChatGPTTranslator() error = %v", err)
	}
	if _, err := tr.Translate(context.Background(), ""); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	want := "Translate below into german, only return translated result:\n"
	if got := stub.requests[0].Messages[0].Content; got != want {
		t.Errorf("Content = %q, want %q", got, want)
	}
}

func TestModelDefaulting(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		store    MapStore
		want     string
	}{
		{name: "default", store: MapStore{}, want: DefaultModel},
		{name: "empty store entry", store: MapStore{KeyModel: ""}, want: DefaultModel},
		{name: "store", store: MapStore{KeyModel: "gpt-4o"}, want: "gpt-4o"},
		{name: "explicit", explicit: "gpt-4o-mini", store: MapStore{}, want: "gpt-4o-mini"},
		{name: "explicit over store", explicit: "gpt-4o-mini", store: MapStore{KeyModel: "gpt-4o"}, want: "gpt-4o-mini"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := replying("ok")
			tr, err := NewChatGPTTranslator("auto", "french",
				WithAPIKey("k"),
				WithModel(tt.explicit),
				WithStore(tt.store),
				WithCompleter(stub),
			)
			if err != nil {
				t.Fatalf("NewChatGPTTranslator() error = %v", err)
			}
			if tr.Model() != tt.want {
				t.Errorf("Model() = %s, want %s", tr.Model(), tt.want)
			}
			if _, err := tr.Translate(context.Background(), "Hello"); err != nil {
				t.Fatalf("Translate() error = %v", err)
			}
			if got := stub.requests[0].Model; got != tt.want {
				t.Errorf("request Model = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewChatGPTTranslator_Transport(t *testing.T) {
	tests := []struct {
		transport string
		wantName  string
		wantErr   bool
	}{
		{transport: TransportHTTP, wantName: "http"},
		{transport: TransportSDK, wantName: "sdk"},
		{transport: "grpc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.transport, func(t *testing.T) {
			tr, err := NewChatGPTTranslator("auto", "french", WithAPIKey("k"), WithTransport(tt.transport))
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewChatGPTTranslator() error = nil, want unknown transport")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewChatGPTTranslator() error = %v", err)
			}
			if tr.client.Name() != tt.wantName {
				t.Errorf("client.Name() = %s, want %s", tr.client.Name(), tt.wantName)
			}
		})
	}
}
