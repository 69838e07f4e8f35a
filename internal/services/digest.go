package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/llm"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ratelimit"
)

const (
	digestScope       = "digest"
	digestRateMessage = "Too many digest requests. Please try again in a minute."
)

type DigestService interface {
	Generate(ctx context.Context, days int) (*Digest, error)
}

type Digest struct {
	Recap     string        `json:"recap"`
	Generated bool          `json:"generated"`
	Summary   *HabitSummary `json:"summary"`
}

type digestService struct {
	log     *logger.Logger
	habits  HabitService
	gen     llm.TextGenerator
	limiter ratelimit.Limiter
	policy  ratelimit.Policy
}

func NewDigestService(log *logger.Logger, habits HabitService, gen llm.TextGenerator, limiter ratelimit.Limiter, policy ratelimit.Policy) DigestService {
	return &digestService{
		log:     log.With("service", "DigestService"),
		habits:  habits,
		gen:     gen,
		limiter: limiter,
		policy:  policy,
	}
}

func (ds *digestService) Generate(ctx context.Context, days int) (*Digest, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := ratelimit.Enforce(ctx, ds.limiter, ds.log, digestScope, rd.UserID.String(), ds.policy, digestRateMessage); err != nil {
		return nil, err
	}
	summary, err := ds.habits.Summary(ctx, days)
	if err != nil {
		return nil, err
	}
	recap, generated := generateOrFallback(ctx, ds.gen, ds.log, digestPrompt(summary), FallbackRecap(summary))
	ds.log.Info("digest.generated", "user_id", rd.UserID.String(), "window", summary.Window, "generated", generated)
	return &Digest{Recap: recap, Generated: generated, Summary: summary}, nil
}

func digestPrompt(s *HabitSummary) llm.Request {
	body, _ := json.Marshal(map[string]any{
		"window_days": s.Window,
		"totals":      s.Totals,
		"daily":       s.Daily,
	})
	return llm.Request{
		System: "You are a warm study coach for a neurodivergent student. Write a short recap (3-4 sentences) of their study week " +
			"from the JSON they share. Celebrate effort and consistency, name one concrete pattern you notice, " +
			"and suggest one gentle, specific goal for the coming days. No lists, no markdown.",
		Prompt:      string(body),
		MaxTokens:   220,
		Temperature: llm.Float(0.7),
	}
}

// FallbackRecap describes the window from its totals alone.
func FallbackRecap(s *HabitSummary) string {
	if s == nil {
		return ""
	}
	active := 0
	for _, d := range s.Daily {
		if d.StudyMinutes > 0 || d.TasksCompleted > 0 {
			active++
		}
	}
	if active == 0 {
		return fmt.Sprintf("No study sessions logged in the last %s yet. A single short session is a great way to start.", dayWord(s.Window))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Over the last %s you studied %d minutes on %d active %s and completed %d %s.",
		dayWord(s.Window), s.Totals.Minutes, active, plural(active, "day", "days"), s.Totals.Tasks, plural(s.Totals.Tasks, "task", "tasks"))
	fmt.Fprintf(&b, " Consistency was %d%%.", s.Totals.ConsistencyRate)
	if s.Totals.BestDay != nil {
		fmt.Fprintf(&b, " Your strongest day was %s.", *s.Totals.BestDay)
	}
	if s.Totals.Focus != nil {
		fmt.Fprintf(&b, " Average focus: %d/10.", *s.Totals.Focus)
	}
	return b.String()
}

func dayWord(n int) string {
	if n == 1 {
		return "day"
	}
	return fmt.Sprintf("%d days", n)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
