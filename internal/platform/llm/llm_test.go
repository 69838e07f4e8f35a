package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

func TestNewWithoutKeyIsDisabled(t *testing.T) {
	gen := New(logger.Nop(), Config{Provider: "anthropic"})
	if _, err := gen.Generate(context.Background(), Request{Prompt: "hi"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	gen = New(logger.Nop(), Config{Provider: "mystery", APIKey: "k"})
	if _, ok := gen.(Disabled); !ok {
		t.Fatalf("unknown provider should be disabled, got %T", gen)
	}
}

func TestAnthropicGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "secret" {
			t.Errorf("missing api key header")
		}
		var body anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.MaxTokens != 150 || body.Temperature == nil || *body.Temperature != 0.7 {
			t.Errorf("unexpected request %+v", body)
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"  You got this.  "}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	gen := New(logger.Nop(), Config{Provider: "anthropic", APIKey: "secret", BaseURL: srv.URL})
	got, err := gen.Generate(context.Background(), Request{System: "s", Prompt: "p", MaxTokens: 150, Temperature: Float(0.7)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "You got this." {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestOpenAIRetriesRetryableStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	gen := NewOpenAI(logger.Nop(), Config{APIKey: "k", BaseURL: srv.URL, MaxRetries: 2, Timeout: 5 * time.Second})
	got, err := gen.Generate(context.Background(), Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "ok" || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("got %q after %d calls", got, calls)
	}
}

func TestOpenAIDoesNotRetryClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	gen := NewOpenAI(logger.Nop(), Config{APIKey: "k", BaseURL: srv.URL, MaxRetries: 3})
	_, err := gen.Generate(context.Background(), Request{Prompt: "p"})
	var he *httpError
	if !errors.As(err, &he) || he.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 httpError, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
