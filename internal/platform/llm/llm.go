package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SyedHasanCronosPMC/StudySync/internal/observability"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/httpx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

// ErrNotConfigured is returned when no API key is set. Callers fall back to static text.
var ErrNotConfigured = errors.New("llm: provider not configured")

type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature *float64
}

// TextGenerator produces one completion for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type Config struct {
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// New picks a provider by name. Unknown names and missing keys yield a
// generator that always returns ErrNotConfigured.
func New(log *logger.Logger, cfg Config) TextGenerator {
	if log == nil {
		log = logger.Nop()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		log.Warn("llm provider has no api key; using static fallbacks", "provider", cfg.Provider)
		return Disabled{}
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		return NewOpenAI(log, cfg)
	case "", "anthropic":
		return NewAnthropic(log, cfg)
	default:
		log.Warn("unknown llm provider; using static fallbacks", "provider", cfg.Provider)
		return Disabled{}
	}
}

// Disabled never calls out.
type Disabled struct{}

func (Disabled) Generate(context.Context, Request) (string, error) { return "", ErrNotConfigured }

func Float(v float64) *float64 { return &v }

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("llm http %d: %s", e.StatusCode, e.Body)
}

func (e *httpError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// transport is the retry loop shared by both providers.
type transport struct {
	log        *logger.Logger
	provider   string
	httpClient *http.Client
	maxRetries int
}

func newTransport(log *logger.Logger, provider string, cfg Config) transport {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return transport{
		log:        log.With("client", provider),
		provider:   provider,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: retries,
	}
}

func (t transport) doOnce(ctx context.Context, url string, headers map[string]string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &httpError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (t transport) post(ctx context.Context, url, model string, headers map[string]string, body any, out any) error {
	backoff := 1 * time.Second
	start := time.Now()

	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := t.doOnce(ctx, url, headers, body)
		if err == nil {
			observability.Current().ObserveLLMRequest(t.provider, model, statusOf(resp, nil), time.Since(start))
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("%s decode error: %w", t.provider, uErr)
			}
			return nil
		}

		if !httpx.IsRetryableError(err) || attempt == t.maxRetries {
			observability.Current().ObserveLLMRequest(t.provider, model, statusOf(resp, err), time.Since(start))
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)
		t.log.Warn("llm request retrying",
			"attempt", attempt+1,
			"max_retries", t.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return err
		}
		backoff *= 2
	}
	return fmt.Errorf("unreachable retry loop")
}

func statusOf(resp *http.Response, err error) string {
	if resp != nil {
		return fmt.Sprintf("%d", resp.StatusCode)
	}
	if err != nil {
		return "error"
	}
	return "0"
}
