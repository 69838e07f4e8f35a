package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos"
	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/observability"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type AchievementService interface {
	List(ctx context.Context) ([]*types.Achievement, error)
	// Unlock persists every newly qualifying badge for the profile and returns them.
	Unlock(dbc dbctx.Context, p *types.Profile) ([]*types.Achievement, error)
}

type achievementService struct {
	db              *gorm.DB
	log             *logger.Logger
	achievementRepo repos.AchievementRepo
	rules           []AchievementRule
	cal             Calendar
}

func NewAchievementService(db *gorm.DB, log *logger.Logger, achievementRepo repos.AchievementRepo, rules []AchievementRule, cal Calendar) AchievementService {
	return &achievementService{
		db:              db,
		log:             log.With("service", "AchievementService"),
		achievementRepo: achievementRepo,
		rules:           rules,
		cal:             cal,
	}
}

func (as *achievementService) List(ctx context.Context) ([]*types.Achievement, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := as.achievementRepo.ListByUser(dbctx.Of(ctx), rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	if rows == nil {
		rows = []*types.Achievement{}
	}
	return rows, nil
}

func (as *achievementService) Unlock(dbc dbctx.Context, p *types.Profile) ([]*types.Achievement, error) {
	if p == nil || p.ID == uuid.Nil {
		return []*types.Achievement{}, nil
	}
	existing, err := as.achievementRepo.ListByUser(dbc, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load earned achievements: %w", err)
	}
	earned := make(map[types.BadgeKey]bool, len(existing))
	for _, a := range existing {
		earned[a.Key()] = true
	}

	unlocked := []*types.Achievement{}
	for _, rule := range EvaluateAchievements(SnapshotOf(p), as.rules, earned) {
		row := &types.Achievement{
			UserID:           p.ID,
			BadgeType:        rule.BadgeType,
			MilestoneValue:   rule.Milestone,
			BadgeName:        rule.Name,
			BadgeDescription: rule.Description,
			BadgeIcon:        rule.Icon,
			EarnedAt:         as.cal.Now().UTC(),
		}
		// the insert decides; a concurrent unlock of the same badge reports false
		inserted, err := as.achievementRepo.Insert(dbc, row)
		if err != nil {
			return unlocked, fmt.Errorf("insert achievement %s/%d: %w", rule.BadgeType, rule.Milestone, err)
		}
		if !inserted {
			continue
		}
		observability.Current().IncAchievement(rule.BadgeType)
		as.log.Info("achievement.unlocked", "user_id", p.ID.String(), "badge_type", rule.BadgeType, "milestone", rule.Milestone)
		unlocked = append(unlocked, row)
	}
	return unlocked, nil
}
