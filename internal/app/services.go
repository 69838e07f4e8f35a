package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
	"github.com/SyedHasanCronosPMC/StudySync/internal/realtime"
	"github.com/SyedHasanCronosPMC/StudySync/internal/services"
)

type Services struct {
	Identity     services.IdentityService
	Profile      services.ProfileService
	Achievements services.AchievementService
	Habit        services.HabitService
	Rooms        services.RoomService
	Buddy        services.BuddyService
	Tasks        services.TaskService
	CheckIn      services.CheckInService
	Decompose    services.DecomposeService
	Digest       services.DigestService
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	r Repos,
	c Clients,
	hub *realtime.SSEHub,
	cal services.Calendar,
) (Services, error) {
	log.Info("Wiring services...")

	rules, err := services.LoadAchievementRules()
	if err != nil {
		return Services{}, fmt.Errorf("load achievement rules: %w", err)
	}

	// with a bus every replica's forwarder feeds its own hub, so publishing
	// locally as well would deliver twice
	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if c.Bus != nil {
		emitter = &services.RedisEmitter{Bus: c.Bus, Log: log}
	}

	achievements := services.NewAchievementService(db, log, r.Achievement, rules, cal)
	habits := services.NewHabitService(db, log, r.Profile, r.CheckIn, r.Task, r.FocusSession, r.Participant, achievements, cal)

	return Services{
		Identity:     services.NewIdentityService(log, services.IdentityConfig{JWTSecret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}),
		Profile:      services.NewProfileService(db, log, r.Profile, r.CheckIn, cal),
		Achievements: achievements,
		Habit:        habits,
		Rooms:        services.NewRoomService(db, log, r.Room, r.Participant, r.FocusSession, r.Profile, emitter, hub, cal),
		Buddy:        services.NewBuddyService(db, log, r.Match, r.Profile, cal),
		Tasks:        services.NewTaskService(db, log, r.Task, cal),
		CheckIn:      services.NewCheckInService(db, log, r.Profile, r.CheckIn, achievements, c.LLM, c.Limiter, cfg.CheckInLimit, cal),
		Decompose:    services.NewDecomposeService(db, log, r.Task, c.LLM, c.Limiter, cfg.DecomposeLimit),
		Digest:       services.NewDigestService(log, habits, c.LLM, c.Limiter, cfg.DigestLimit),
	}, nil
}
