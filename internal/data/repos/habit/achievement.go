package habit

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/db"
	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type AchievementRepo interface {
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Achievement, error)
	// Insert writes a badge once. A duplicate (user, badge_type, milestone_value)
	// reports false with no error.
	Insert(dbc dbctx.Context, a *types.Achievement) (bool, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(gdb *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return &achievementRepo{db: gdb, log: baseLog.With("repo", "AchievementRepo")}
}

func (r *achievementRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Achievement, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Achievement
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *achievementRepo) Insert(dbc dbctx.Context, a *types.Achievement) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_type"}, {Name: "milestone_value"}},
			DoNothing: true,
		}).
		Create(a)
	if res.Error != nil {
		if db.IsUniqueViolation(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
