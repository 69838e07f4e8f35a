package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/user"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type ProfileRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Profile, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error)
	// Create inserts p unless a profile with the same id exists; reports whether it inserted.
	Create(dbc dbctx.Context, p *types.Profile) (bool, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	// ApplySession atomically adds one session's totals and recomputes level.
	ApplySession(dbc dbctx.Context, id uuid.UUID, minutes, tasks, xp int) error
	UpdateStreak(dbc dbctx.Context, id uuid.UUID, current, longest int, lastDate string) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Profile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Profile
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *profileRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var results []*types.Profile
	if len(ids) == 0 {
		return results, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *profileRepo) Create(dbc dbctx.Context, p *types.Profile) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *profileRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&types.Profile{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// levelAfterSQL mirrors user.LevelForXP for experience_points + ?.
const levelAfterSQL = "CASE WHEN experience_points + ? < 0 THEN 1 ELSE (experience_points + ?) / ? + 1 END"

func (r *profileRepo) ApplySession(dbc dbctx.Context, id uuid.UUID, minutes, tasks, xp int) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Profile{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"total_study_minutes":   gorm.Expr("total_study_minutes + ?", minutes),
			"total_tasks_completed": gorm.Expr("total_tasks_completed + ?", tasks),
			"experience_points":     gorm.Expr("experience_points + ?", xp),
			"level":                 gorm.Expr(levelAfterSQL, xp, xp, user.XPPerLevel),
			"updated_at":            time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *profileRepo) UpdateStreak(dbc dbctx.Context, id uuid.UUID, current, longest int, lastDate string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Profile{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"current_streak":     current,
			"longest_streak":     longest,
			"last_check_in_date": lastDate,
			"updated_at":         time.Now().UTC(),
		}).Error
}
