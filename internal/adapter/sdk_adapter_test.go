package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openai/openai-go"
)

func TestSDKAdapter_Complete(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(okBody))
	}))
	defer srv.Close()

	a := NewSDKAdapter("sk-sdk", WithSDKBaseURL(srv.URL+"/v1"))

	resp, err := a.Complete(context.Background(), OpenAIRequest{
		Model:    "gpt-4o-mini",
		Messages: []OpenAIMessage{{Role: RoleUser, Content: "Translate me"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if gotPath != "/v1/chat/completions" {
		t.Errorf("path = %s, want /v1/chat/completions", gotPath)
	}
	if gotAuth != "Bearer sk-sdk" {
		t.Errorf("Authorization = %q, want Bearer sk-sdk", gotAuth)
	}
	if gotBody["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v, want gpt-4o-mini", gotBody["model"])
	}
	messages, _ := gotBody["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("len(messages) = %d, want 1", len(messages))
	}
	first, _ := messages[0].(map[string]any)
	if first["role"] != "user" || first["content"] != "Translate me" {
		t.Errorf("messages[0] = %v, want user 'Translate me'", first)
	}

	content, err := resp.FirstContent()
	if err != nil {
		t.Fatalf("FirstContent() error = %v", err)
	}
	if content != "Bonjour" {
		t.Errorf("FirstContent() = %q, want Bonjour", content)
	}
	if resp.Usage.PromptTokens != 12 {
		t.Errorf("Usage.PromptTokens = %d, want 12", resp.Usage.PromptTokens)
	}
	if resp.Choices[0].FinishReason != "stop" {
		t.Errorf("FinishReason = %s, want stop", resp.Choices[0].FinishReason)
	}
}

func TestSDKAdapter_Complete_NoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	a := NewSDKAdapter("sk-sdk", WithSDKBaseURL(srv.URL))

	_, err := a.Complete(context.Background(), OpenAIRequest{
		Model:    "m",
		Messages: []OpenAIMessage{{Role: RoleUser, Content: "x"}},
	})

	if !IsAPIError(err) {
		t.Fatalf("Complete() error = %v, want APIError", err)
	}
	var sdkErr *openai.Error
	if !errors.As(err, &sdkErr) {
		t.Fatalf("Complete() error = %v, want it to wrap *openai.Error", err)
	}
	if sdkErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", sdkErr.StatusCode)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("upstream calls = %d, want exactly 1", n)
	}
}

func TestToSDKParams_Roles(t *testing.T) {
	params := toSDKParams(OpenAIRequest{
		Model: "gpt-3.5-turbo",
		Messages: []OpenAIMessage{
			{Role: RoleSystem, Content: "sys"},
			{Role: RoleUser, Content: "usr"},
			{Role: RoleAssistant, Content: "asst"},
		},
	})

	if len(params.Messages) != 3 {
		t.Fatalf("len(Messages) = %d, want 3", len(params.Messages))
	}

	raw, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	for _, want := range []string{`"role":"system"`, `"role":"user"`, `"role":"assistant"`, `"model":"gpt-3.5-turbo"`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("params JSON %s missing %s", raw, want)
		}
	}
}

func TestSDKAdapter_Complete_Errors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantStatus    int
		wantType      string
		wantMessage   string
		wantMalformed bool
	}{
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			body:        `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`,
			wantStatus:  http.StatusUnauthorized,
			wantType:    "invalid_request_error",
			wantMessage: "Incorrect API key provided",
		},
		{
			name:        "rate limited",
			status:      http.StatusTooManyRequests,
			body:        `{"error":{"message":"Rate limit reached","type":"requests"}}`,
			wantStatus:  http.StatusTooManyRequests,
			wantType:    "requests",
			wantMessage: "Rate limit reached",
		},
		{
			name:          "invalid JSON on success",
			status:        http.StatusOK,
			body:          `not json`,
			wantMalformed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			a := NewSDKAdapter("sk-sdk", WithSDKBaseURL(srv.URL))
			_, err := a.Complete(context.Background(), OpenAIRequest{
				Model:    "m",
				Messages: []OpenAIMessage{{Role: RoleUser, Content: "x"}},
			})

			if tt.wantMalformed {
				if !IsMalformedResponseError(err) {
					t.Fatalf("Complete() error = %v, want MalformedResponseError", err)
				}
				return
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Complete() error = %v, want APIError", err)
			}
			if apiErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.wantStatus)
			}
			if apiErr.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", apiErr.Type, tt.wantType)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("Message = %s, want %s", apiErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestNewSDKAdapter_LeavesCallerClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: 0}

	NewSDKAdapter("sk-sdk", WithSDKHTTPClient(shared), WithSDKTimeout(5*time.Second))

	if shared.Timeout != 0 {
		t.Errorf("shared Timeout = %v, want 0", shared.Timeout)
	}
}
