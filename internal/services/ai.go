package services

import (
	"context"
	"errors"
	"strings"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/llm"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

// generateOrFallback returns the generator's text, or fallback when the
// provider is missing, fails or answers with nothing. The bool reports
// whether generated text was used.
func generateOrFallback(ctx context.Context, gen llm.TextGenerator, log *logger.Logger, req llm.Request, fallback string) (string, bool) {
	if gen == nil {
		return fallback, false
	}
	text, err := gen.Generate(ctx, req)
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			log.Warn("text generation failed; using fallback", "error", err)
		}
		return fallback, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback, false
	}
	return text, true
}

// stripCodeFences removes markdown fences models like to wrap JSON in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
