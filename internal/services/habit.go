package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos"
	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/habit"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/tasks"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

const (
	DefaultSummaryDays = 7
	MaxSummaryDays     = 30
)

type HabitService interface {
	LogSession(ctx context.Context, in LogSessionInput) (*SessionResult, error)
	Summary(ctx context.Context, days int) (*HabitSummary, error)
}

// LogSessionInput is one finished focus session. Nil pointers mean "not sent".
type LogSessionInput struct {
	DurationMinutes int
	TasksCompleted  int
	FocusScore      *int
	TaskID          *uuid.UUID
	TaskStatus      string
	RoomID          *uuid.UUID
	Timestamp       *time.Time
}

type SessionResult struct {
	Daily        *types.DailyCheckIn  `json:"daily"`
	Profile      *types.Profile       `json:"profile"`
	XPGain       int                  `json:"xpGain"`
	Task         *types.Task          `json:"task"`
	Achievements []*types.Achievement `json:"achievements"`
	// Warnings lists follow-up steps that failed after the session itself was recorded.
	Warnings []string `json:"warnings,omitempty"`
}

type SummaryProfile struct {
	CurrentStreak       int            `json:"current_streak"`
	LongestStreak       int            `json:"longest_streak"`
	TotalStudyMinutes   int            `json:"total_study_minutes"`
	TotalTasksCompleted int            `json:"total_tasks_completed"`
	ExperiencePoints    int            `json:"experience_points"`
	Level               int            `json:"level"`
	BestStudyTimes      datatypes.JSON `json:"best_study_times"`
	DailyGoalMinutes    int            `json:"daily_goal_minutes"`
	DisplayName         string         `json:"display_name"`
}

type SummaryTotals struct {
	Minutes         int     `json:"minutes"`
	Tasks           int     `json:"tasks"`
	Focus           *int    `json:"focus"`
	ConsistencyRate int     `json:"consistencyRate"`
	BestDay         *string `json:"bestDay"`
}

type SummaryDay struct {
	CheckInDate    string `json:"check_in_date"`
	StudyMinutes   int    `json:"study_minutes"`
	TasksCompleted int    `json:"tasks_completed"`
	FocusScore     *int   `json:"focus_score"`
}

type HabitSummary struct {
	Profile *SummaryProfile `json:"profile"`
	Window  int             `json:"window"`
	Totals  SummaryTotals   `json:"totals"`
	Daily   []SummaryDay    `json:"daily"`
}

type habitService struct {
	db               *gorm.DB
	log              *logger.Logger
	profileRepo      repos.ProfileRepo
	checkInRepo      repos.CheckInRepo
	taskRepo         repos.TaskRepo
	focusSessionRepo repos.FocusSessionRepo
	participantRepo  repos.ParticipantRepo
	achievements     AchievementService
	cal              Calendar
}

func NewHabitService(
	db *gorm.DB,
	log *logger.Logger,
	profileRepo repos.ProfileRepo,
	checkInRepo repos.CheckInRepo,
	taskRepo repos.TaskRepo,
	focusSessionRepo repos.FocusSessionRepo,
	participantRepo repos.ParticipantRepo,
	achievements AchievementService,
	cal Calendar,
) HabitService {
	return &habitService{
		db:               db,
		log:              log.With("service", "HabitService"),
		profileRepo:      profileRepo,
		checkInRepo:      checkInRepo,
		taskRepo:         taskRepo,
		focusSessionRepo: focusSessionRepo,
		participantRepo:  participantRepo,
		achievements:     achievements,
		cal:              cal,
	}
}

func (hs *habitService) LogSession(ctx context.Context, in LogSessionInput) (*SessionResult, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if in.DurationMinutes <= 0 {
		return nil, apierr.InvalidArgument("duration_minutes must be a positive number")
	}
	if in.DurationMinutes > habit.MaxSessionMinutes {
		return nil, apierr.InvalidArgument("duration_minutes must be at most %d", habit.MaxSessionMinutes)
	}
	if in.TasksCompleted < 0 {
		return nil, apierr.InvalidArgument("tasks_completed must not be negative")
	}
	if in.TasksCompleted > habit.MaxSessionTasks {
		return nil, apierr.InvalidArgument("tasks_completed must be at most %d", habit.MaxSessionTasks)
	}
	if in.TaskStatus != "" && !tasks.ValidStatus(in.TaskStatus) {
		return nil, apierr.InvalidArgument("task_status must be one of pending, in_progress, completed, skipped")
	}
	var focus *int
	if in.FocusScore != nil {
		v := habit.ClampFocus(*in.FocusScore)
		focus = &v
	}
	at := hs.cal.Now()
	if in.Timestamp != nil {
		at = *in.Timestamp
	}
	date := hs.cal.DayOf(at)
	xp := habit.SessionXP(in.DurationMinutes, in.TasksCompleted)

	if _, err := ensureProfile(dbctx.Of(ctx), hs.profileRepo, hs.log, rd); err != nil {
		return nil, err
	}

	out := &SessionResult{XPGain: xp, Achievements: []*types.Achievement{}}
	err = hs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		daily, err := hs.checkInRepo.AddSession(dbc, rd.UserID, date, in.DurationMinutes, in.TasksCompleted, focus)
		if err != nil {
			return fmt.Errorf("update daily ledger: %w", err)
		}
		out.Daily = daily

		if in.TaskID != nil {
			task, err := hs.taskRepo.GetForUser(dbc, rd.UserID, *in.TaskID)
			if err != nil {
				return fmt.Errorf("load task: %w", err)
			}
			if task == nil {
				return apierr.NotFound("Task not found")
			}
			status := tasks.StatusAfterSession(task.Status, in.TaskStatus, in.TasksCompleted)
			if err := hs.taskRepo.ApplySession(dbc, rd.UserID, task.ID, in.DurationMinutes, status, hs.cal.Now()); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apierr.NotFound("Task not found")
				}
				return fmt.Errorf("update task: %w", err)
			}
			if out.Task, err = hs.taskRepo.GetForUser(dbc, rd.UserID, task.ID); err != nil {
				return fmt.Errorf("reload task: %w", err)
			}
		}

		if err := hs.focusSessionRepo.Create(dbc, &types.FocusSession{
			UserID:          rd.UserID,
			RoomID:          in.RoomID,
			TaskID:          in.TaskID,
			DurationMinutes: in.DurationMinutes,
			TasksCompleted:  in.TasksCompleted,
			FocusScore:      focus,
			LoggedAt:        at.UTC(),
			CreatedAt:       hs.cal.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("record focus session: %w", err)
		}
		if in.RoomID != nil {
			// not being in the room anymore is fine; the session still counts
			if _, err := hs.participantRepo.AddStudyMinutes(dbc, *in.RoomID, rd.UserID, in.DurationMinutes); err != nil {
				return fmt.Errorf("update room participant: %w", err)
			}
		}

		if err := hs.profileRepo.ApplySession(dbc, rd.UserID, in.DurationMinutes, in.TasksCompleted, xp); err != nil {
			return fmt.Errorf("update profile totals: %w", err)
		}
		if out.Profile, err = hs.profileRepo.GetByID(dbc, rd.UserID); err != nil {
			return fmt.Errorf("reload profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	taskID := ""
	if in.TaskID != nil {
		taskID = in.TaskID.String()
	}
	hs.log.Info("habit.session_logged",
		"user_id", rd.UserID.String(),
		"date", date,
		"minutes", in.DurationMinutes,
		"tasks", in.TasksCompleted,
		"focus_score", focus,
		"task_id", taskID,
	)

	unlocked, err := hs.achievements.Unlock(dbctx.Of(ctx), out.Profile)
	if err != nil {
		hs.log.Warn("achievement evaluation failed after session", "user_id", rd.UserID.String(), "error", err)
		out.Warnings = append(out.Warnings, "achievements could not be evaluated")
	}
	if len(unlocked) > 0 {
		out.Achievements = unlocked
	}
	return out, nil
}

// ClampSummaryDays bounds a requested window into [1,30].
func ClampSummaryDays(days int) int {
	if days < 1 {
		return 1
	}
	if days > MaxSummaryDays {
		return MaxSummaryDays
	}
	return days
}

func (hs *habitService) Summary(ctx context.Context, days int) (*HabitSummary, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	window := ClampSummaryDays(days)
	today := hs.cal.Today()
	from := hs.cal.ShiftDate(today, -(window - 1))

	var (
		profile *types.Profile
		rows    []*types.DailyCheckIn
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := ensureProfile(dbctx.Of(gctx), hs.profileRepo, hs.log, rd)
		profile = p
		return err
	})
	g.Go(func() error {
		r, err := hs.checkInRepo.ListSince(dbctx.Of(gctx), rd.UserID, from)
		if err != nil {
			return fmt.Errorf("load check-ins: %w", err)
		}
		rows = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := BuildSummary(window, from, rows)
	out.Profile = summaryProfileOf(profile)
	return out, nil
}

// BuildSummary folds ledger rows (ascending by date, all >= from) into window totals.
func BuildSummary(window int, from string, rows []*types.DailyCheckIn) *HabitSummary {
	out := &HabitSummary{Window: window, Daily: make([]SummaryDay, 0, window)}

	byDate := make(map[string]*types.DailyCheckIn, len(rows))
	focusSum, focusN, active := 0, 0, 0
	bestMinutes := -1
	for _, r := range rows {
		byDate[r.CheckInDate] = r
		out.Totals.Minutes += r.StudyMinutes
		out.Totals.Tasks += r.TasksCompleted
		if r.FocusScore != nil {
			focusSum += *r.FocusScore
			focusN++
		}
		if r.StudyMinutes > 0 || r.TasksCompleted > 0 {
			active++
		}
		if r.StudyMinutes > bestMinutes {
			bestMinutes = r.StudyMinutes
			d := r.CheckInDate
			out.Totals.BestDay = &d
		}
	}
	if focusN > 0 {
		v := int(math.Round(float64(focusSum) / float64(focusN)))
		out.Totals.Focus = &v
	}
	if window > 0 {
		out.Totals.ConsistencyRate = int(math.Round(float64(active) / float64(window) * 100))
	}

	cal := Calendar{}
	for i := 0; i < window; i++ {
		date := cal.ShiftDate(from, i)
		day := SummaryDay{CheckInDate: date}
		if r, ok := byDate[date]; ok {
			day.StudyMinutes = r.StudyMinutes
			day.TasksCompleted = r.TasksCompleted
			day.FocusScore = r.FocusScore
		}
		out.Daily = append(out.Daily, day)
	}
	return out
}

func summaryProfileOf(p *types.Profile) *SummaryProfile {
	if p == nil {
		return nil
	}
	return &SummaryProfile{
		CurrentStreak:       p.CurrentStreak,
		LongestStreak:       p.LongestStreak,
		TotalStudyMinutes:   p.TotalStudyMinutes,
		TotalTasksCompleted: p.TotalTasksCompleted,
		ExperiencePoints:    p.ExperiencePoints,
		Level:               p.Level,
		BestStudyTimes:      p.BestStudyTimes,
		DailyGoalMinutes:    p.DailyGoalMinutes,
		DisplayName:         p.DisplayName,
	}
}
