package habit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type CheckInRepo interface {
	// AddSession upserts the (user, date) ledger row in one statement: counters
	// add, focus takes the new score or the rounded mean of old and new.
	AddSession(dbc dbctx.Context, userID uuid.UUID, date string, minutes, tasks int, focus *int) (*types.DailyCheckIn, error)
	// UpsertFields writes the given columns on the (user, date) row, creating it if needed.
	UpsertFields(dbc dbctx.Context, row *types.DailyCheckIn, columns []string) (*types.DailyCheckIn, error)
	GetByDate(dbc dbctx.Context, userID uuid.UUID, date string) (*types.DailyCheckIn, error)
	ListSince(dbc dbctx.Context, userID uuid.UUID, fromDate string) ([]*types.DailyCheckIn, error)
	ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.DailyCheckIn, error)
}

type checkInRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCheckInRepo(db *gorm.DB, baseLog *logger.Logger) CheckInRepo {
	return &checkInRepo{db: db, log: baseLog.With("repo", "CheckInRepo")}
}

var ledgerConflict = []clause.Column{{Name: "user_id"}, {Name: "check_in_date"}}

const focusMergeSQL = `CASE
	WHEN excluded.focus_score IS NULL THEN daily_check_ins.focus_score
	WHEN daily_check_ins.focus_score IS NULL THEN excluded.focus_score
	ELSE CAST(ROUND((daily_check_ins.focus_score + excluded.focus_score) / 2.0) AS INTEGER)
END`

func (r *checkInRepo) AddSession(dbc dbctx.Context, userID uuid.UUID, date string, minutes, tasks int, focus *int) (*types.DailyCheckIn, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	row := &types.DailyCheckIn{
		UserID:         userID,
		CheckInDate:    date,
		StudyMinutes:   minutes,
		TasksCompleted: tasks,
		FocusScore:     focus,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: ledgerConflict,
			DoUpdates: clause.Set{
				{Column: clause.Column{Name: "study_minutes"}, Value: gorm.Expr("daily_check_ins.study_minutes + excluded.study_minutes")},
				{Column: clause.Column{Name: "tasks_completed"}, Value: gorm.Expr("daily_check_ins.tasks_completed + excluded.tasks_completed")},
				{Column: clause.Column{Name: "focus_score"}, Value: gorm.Expr(focusMergeSQL)},
				{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
			},
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.GetByDate(dbctx.Context{Ctx: dbc.Ctx, Tx: t}, userID, date)
}

func (r *checkInRepo) UpsertFields(dbc dbctx.Context, row *types.DailyCheckIn, columns []string) (*types.DailyCheckIn, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now
	cols := append(append([]string{}, columns...), "updated_at")
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   ledgerConflict,
			DoUpdates: clause.AssignmentColumns(cols),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.GetByDate(dbctx.Context{Ctx: dbc.Ctx, Tx: t}, row.UserID, row.CheckInDate)
}

func (r *checkInRepo) GetByDate(dbc dbctx.Context, userID uuid.UUID, date string) (*types.DailyCheckIn, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.DailyCheckIn
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND check_in_date = ?", userID, date).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *checkInRepo) ListSince(dbc dbctx.Context, userID uuid.UUID, fromDate string) ([]*types.DailyCheckIn, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.DailyCheckIn
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND check_in_date >= ?", userID, fromDate).
		Order("check_in_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *checkInRepo) ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.DailyCheckIn, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 30
	}
	var rows []*types.DailyCheckIn
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("check_in_date DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
