package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos"
	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/habit"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/llm"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ratelimit"
)

const (
	CheckInMorning = "morning"
	CheckInEvening = "evening"

	checkInScope       = "check-in"
	checkInRateMessage = "Too many requests. Please wait a moment before trying again."
)

type CheckInService interface {
	Submit(ctx context.Context, in CheckInInput) (*CheckInResult, error)
}

type CheckInInput struct {
	Type      string
	Responses map[string]any
}

type CheckInResult struct {
	Message      string               `json:"message"`
	CheckIn      *types.DailyCheckIn  `json:"checkIn"`
	Achievements []*types.Achievement `json:"achievements"`
}

type checkInService struct {
	db           *gorm.DB
	log          *logger.Logger
	profileRepo  repos.ProfileRepo
	checkInRepo  repos.CheckInRepo
	achievements AchievementService
	gen          llm.TextGenerator
	limiter      ratelimit.Limiter
	policy       ratelimit.Policy
	cal          Calendar
}

func NewCheckInService(
	db *gorm.DB,
	log *logger.Logger,
	profileRepo repos.ProfileRepo,
	checkInRepo repos.CheckInRepo,
	achievements AchievementService,
	gen llm.TextGenerator,
	limiter ratelimit.Limiter,
	policy ratelimit.Policy,
	cal Calendar,
) CheckInService {
	return &checkInService{
		db:           db,
		log:          log.With("service", "CheckInService"),
		profileRepo:  profileRepo,
		checkInRepo:  checkInRepo,
		achievements: achievements,
		gen:          gen,
		limiter:      limiter,
		policy:       policy,
		cal:          cal,
	}
}

func (cs *checkInService) Submit(ctx context.Context, in CheckInInput) (*CheckInResult, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := ratelimit.Enforce(ctx, cs.limiter, cs.log, checkInScope, rd.UserID.String(), cs.policy, checkInRateMessage); err != nil {
		return nil, err
	}
	kind := strings.TrimSpace(in.Type)
	if kind == "" || in.Responses == nil {
		return nil, apierr.InvalidArgument("Missing required fields")
	}
	if kind != CheckInMorning && kind != CheckInEvening {
		return nil, apierr.InvalidArgument("type must be morning or evening")
	}
	energy, err := optionalEnergy(in.Responses["energy"])
	if err != nil {
		return nil, err
	}

	message, _ := generateOrFallback(ctx, cs.gen, cs.log, checkInPrompt(kind, in.Responses), checkInFallback(kind))

	dbc := dbctx.Of(ctx)
	if _, err := ensureProfile(dbc, cs.profileRepo, cs.log, rd); err != nil {
		return nil, err
	}

	now := cs.cal.Now()
	today := cs.cal.DayOf(now)
	completedAt := now.UTC()
	row := &types.DailyCheckIn{UserID: rd.UserID, CheckInDate: today}
	var columns []string
	if kind == CheckInMorning {
		row.MorningEnergy = energy
		row.MorningMood = optionalText(in.Responses["mood"])
		row.MorningIntention = optionalText(in.Responses["intention"])
		row.MorningAIResponse = &message
		row.MorningCompletedAt = &completedAt
		columns = []string{"morning_energy", "morning_mood", "morning_intention", "morning_ai_response", "morning_completed_at"}
	} else {
		row.EveningEnergy = energy
		row.EveningWins = optionalText(in.Responses["wins"])
		row.EveningChallenges = optionalText(in.Responses["challenges"])
		row.EveningAIResponse = &message
		row.EveningCompletedAt = &completedAt
		columns = []string{"evening_energy", "evening_wins", "evening_challenges", "evening_ai_response", "evening_completed_at"}
	}

	out := &CheckInResult{Message: message, Achievements: []*types.Achievement{}}
	var profile *types.Profile
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		saved, err := cs.checkInRepo.UpsertFields(txc, row, columns)
		if err != nil {
			return fmt.Errorf("save check-in: %w", err)
		}
		out.CheckIn = saved
		if kind != CheckInMorning {
			return nil
		}

		p, err := cs.profileRepo.GetByID(txc, rd.UserID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if p == nil {
			return apierr.NotFound("Profile not found")
		}
		current, longest := NextStreak(p.CurrentStreak, p.LongestStreak, p.LastCheckInDate, today, cs.cal.ShiftDate(today, -1))
		if err := cs.profileRepo.UpdateStreak(txc, rd.UserID, current, longest, today); err != nil {
			return fmt.Errorf("update streak: %w", err)
		}
		p.CurrentStreak, p.LongestStreak, p.LastCheckInDate = current, longest, &today
		profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	cs.log.Info("check-in.completed",
		"user_id", rd.UserID.String(),
		"type", kind,
		"has_morning", out.CheckIn != nil && out.CheckIn.MorningCompletedAt != nil,
		"has_evening", out.CheckIn != nil && out.CheckIn.EveningCompletedAt != nil,
	)

	if profile != nil {
		unlocked, err := cs.achievements.Unlock(dbc, profile)
		if err != nil {
			cs.log.Warn("achievement evaluation failed after check-in", "user_id", rd.UserID.String(), "error", err)
		}
		if len(unlocked) > 0 {
			out.Achievements = unlocked
		}
	}
	return out, nil
}

// NextStreak applies a morning check-in on today to the streak counters.
func NextStreak(current, longest int, last *string, today, yesterday string) (int, int) {
	next := current
	switch {
	case last == nil || *last == "" || *last == yesterday:
		next = current + 1
	case *last == today:
	default:
		next = 1
	}
	if next > longest {
		longest = next
	}
	return next, longest
}

func optionalEnergy(raw any) (*int, error) {
	if raw == nil {
		return nil, nil
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := cast.ToIntE(raw)
	if err != nil {
		return nil, apierr.InvalidArgument("energy must be a number between 1 and 10")
	}
	v = habit.ClampFocus(v)
	return &v, nil
}

func optionalText(raw any) *string {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(cast.ToString(raw))
	if s == "" {
		return nil
	}
	return &s
}

func checkInPrompt(kind string, responses map[string]any) llm.Request {
	var system string
	if kind == CheckInMorning {
		system = fmt.Sprintf("You are a supportive AI companion for a neurodivergent student. "+
			"Based on their energy level (%s/10) and mood (%s), provide a brief, encouraging message (2-3 sentences) to start their day. "+
			"Be warm, understanding, and gently motivating. If energy is low, acknowledge it's okay to have low-energy days and suggest starting with small, manageable tasks. "+
			"If energy is high, encourage them to make the most of it. Never be pushy or demanding; focus on self-compassion and realistic progress.",
			cast.ToString(responses["energy"]), cast.ToString(responses["mood"]))
	} else {
		wins := cast.ToString(responses["wins"])
		if wins == "" {
			wins = "some accomplishments"
		}
		challenges := cast.ToString(responses["challenges"])
		if challenges == "" {
			challenges = "some difficulties"
		}
		system = fmt.Sprintf("You are reflecting with a neurodivergent student on their day. They shared: Wins: %q, Challenges: %q. "+
			"Provide a brief, validating response (2-3 sentences) that celebrates their effort (not just outcomes) and encourages self-compassion. "+
			"Remind them that showing up is what matters, and every day is a fresh start.", wins, challenges)
	}
	body, _ := json.Marshal(responses)
	return llm.Request{
		System:      system,
		Prompt:      string(body),
		MaxTokens:   150,
		Temperature: llm.Float(0.7),
	}
}

func checkInFallback(kind string) string {
	if kind == CheckInMorning {
		return "Thanks for checking in. Whatever your energy looks like today, one small step is enough to get started."
	}
	return "Thanks for reflecting on your day. Showing up is what matters, and tomorrow is a fresh start."
}
