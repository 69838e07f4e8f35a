package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicDefaultModel   = "claude-3-5-sonnet-20241022"
	anthropicVersion        = "2023-06-01"
)

type Anthropic struct {
	transport
	apiKey  string
	model   string
	baseURL string
}

func NewAnthropic(log *logger.Logger, cfg Config) *Anthropic {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = anthropicDefaultModel
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = anthropicDefaultBaseURL
	}
	return &Anthropic{
		transport: newTransport(log, "anthropic", cfg),
		apiKey:    cfg.APIKey,
		model:     model,
		baseURL:   base,
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (a *Anthropic) Generate(ctx context.Context, req Request) (string, error) {
	if a == nil || a.apiKey == "" {
		return "", ErrNotConfigured
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}
	wire := anthropicRequest{
		Model:       a.model,
		MaxTokens:   maxTokens,
		System:      req.System,
		Temperature: req.Temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}
	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var out anthropicResponse
	if err := a.post(ctx, a.baseURL+"/v1/messages", a.model, headers, wire, &out); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("anthropic: empty completion (stop_reason=%s)", out.StopReason)
	}
	return text, nil
}
