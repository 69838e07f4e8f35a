package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

const (
	openAIDefaultBaseURL = "https://api.openai.com/v1"
	openAIDefaultModel   = "gpt-4o-mini"
)

type OpenAI struct {
	transport
	apiKey  string
	model   string
	baseURL string
}

func NewOpenAI(log *logger.Logger, cfg Config) *OpenAI {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openAIDefaultModel
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = openAIDefaultBaseURL
	}
	return &OpenAI{
		transport: newTransport(log, "openai", cfg),
		apiKey:    cfg.APIKey,
		model:     model,
		baseURL:   base,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	if o == nil || o.apiKey == "" {
		return "", ErrNotConfigured
	}
	msgs := make([]chatMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: req.System})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: req.Prompt})
	wire := chatRequest{
		Model:       o.model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}

	var out chatResponse
	if err := o.post(ctx, o.baseURL+"/chat/completions", o.model, headers, wire, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai: empty completion (finish_reason=%s)", out.Choices[0].FinishReason)
	}
	return text, nil
}
