package completion

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/saeedalam/projectassistant/internal/config"
	"github.com/saeedalam/projectassistant/internal/storage"
)

type countingService struct {
	calls int
	reply string
	err   error
}

func (s *countingService) Complete(ctx context.Context, req Request) (string, error) {
	s.calls++
	return s.reply, s.err
}

func testRequest() Request {
	return Request{System: "sys", User: "user", Model: "gpt-4", MaxTokens: 100, Temperature: 0.5}
}

func TestOpenAIComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Unexpected auth header %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"role":"system"`) || !strings.Contains(string(body), `"content":"user"`) {
			t.Errorf("Unexpected request body %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","model":"gpt-4",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Sure.\n`+"```ts\\nx\\n```"+`"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	text, err := NewOpenAI("sk-test", srv.URL+"/v1").Complete(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if !strings.HasPrefix(text, "Sure.") {
		t.Errorf("Unexpected reply %q", text)
	}
}

func TestOpenAIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	_, err := NewOpenAI("bad", srv.URL+"/v1").Complete(context.Background(), testRequest())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Message, "Incorrect API key") {
		t.Errorf("Expected provider message, got %q", apiErr.Message)
	}
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[]}`)
	}))
	defer srv.Close()

	_, err := NewOpenAI("k", srv.URL+"/v1").Complete(context.Background(), testRequest())
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("Expected ErrNoContent, got %v", err)
	}
}

func TestAnthropicComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "ak-test" {
			t.Errorf("Unexpected api key header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude",
			"content":[{"type":"text","text":"Here you go."}],
			"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":2}}`)
	}))
	defer srv.Close()

	text, err := NewAnthropic("ak-test", srv.URL).Complete(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != "Here you go." {
		t.Errorf("Unexpected reply %q", text)
	}
}

func TestAnthropicErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`)
	}))
	defer srv.Close()

	_, err := NewAnthropic("k", srv.URL).Complete(context.Background(), testRequest())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", apiErr.StatusCode)
	}
}

func TestCachedService(t *testing.T) {
	cache, err := storage.OpenCompletionCache(filepath.Join(t.TempDir(), "completions.db"))
	if err != nil {
		t.Fatalf("Open cache failed: %v", err)
	}
	defer cache.Close()

	inner := &countingService{reply: "answer"}
	svc := NewCached(inner, cache, config.ProviderOpenAI, zerolog.Nop())

	for i := 0; i < 2; i++ {
		got, err := svc.Complete(context.Background(), testRequest())
		if err != nil || got != "answer" {
			t.Fatalf("Complete %d: got %q, %v", i, got, err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("Expected the second call to hit the cache, got %d calls", inner.calls)
	}

	other := testRequest()
	other.Temperature = 0.9
	svc.Complete(context.Background(), other)
	if inner.calls != 2 {
		t.Errorf("Expected a different temperature to miss the cache, got %d calls", inner.calls)
	}
}

func TestCachedServiceDoesNotStoreErrors(t *testing.T) {
	cache, err := storage.OpenCompletionCache(filepath.Join(t.TempDir(), "completions.db"))
	if err != nil {
		t.Fatalf("Open cache failed: %v", err)
	}
	defer cache.Close()

	inner := &countingService{err: &APIError{StatusCode: 500, Message: "boom"}}
	svc := NewCached(inner, cache, config.ProviderOpenAI, zerolog.Nop())

	svc.Complete(context.Background(), testRequest())
	svc.Complete(context.Background(), testRequest())
	if inner.calls != 2 {
		t.Errorf("Expected failures to be retried on the next call, got %d calls", inner.calls)
	}
	if n, _ := cache.Count(); n != 0 {
		t.Errorf("Expected empty cache, got %d", n)
	}
}

func TestCacheKeyStable(t *testing.T) {
	a := CacheKey("openai", testRequest())
	b := CacheKey("openai", testRequest())
	if a != b {
		t.Error("Expected identical keys for identical requests")
	}
	if CacheKey("anthropic", testRequest()) == a {
		t.Error("Expected provider to change the key")
	}
}

func TestNew(t *testing.T) {
	cfg := config.DefaultConfig()

	if _, err := New(cfg, Options{}); err == nil {
		t.Error("Expected error without API key")
	}

	svc, err := New(cfg, Options{APIKey: "k"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := svc.(*OpenAI); !ok {
		t.Errorf("Expected OpenAI provider, got %T", svc)
	}

	cfg.Provider = config.ProviderAnthropic
	svc, _ = New(cfg, Options{APIKey: "k"})
	if _, ok := svc.(*Anthropic); !ok {
		t.Errorf("Expected Anthropic provider, got %T", svc)
	}

	cfg.Provider = "other"
	if _, err := New(cfg, Options{APIKey: "k"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}
