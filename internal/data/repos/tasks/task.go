package tasks

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	domaintasks "github.com/SyedHasanCronosPMC/StudySync/internal/domain/tasks"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type TaskRepo interface {
	Create(dbc dbctx.Context, rows []*types.Task) ([]*types.Task, error)
	// GetForUser returns nil when the task is missing or owned by someone else.
	GetForUser(dbc dbctx.Context, userID, taskID uuid.UUID) (*types.Task, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Task, error)
	CountOwned(dbc dbctx.Context, userID uuid.UUID, taskIDs []uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, userID, taskID uuid.UUID, updates map[string]any) (int64, error)
	// ApplySession adds minutes to actual_minutes and sets status in one statement.
	// ApplySession adds minutes and sets status; completing stamps completed_at with at.
	ApplySession(dbc dbctx.Context, userID, taskID uuid.UUID, minutes int, status string, at time.Time) error
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return &taskRepo{db: db, log: baseLog.With("repo", "TaskRepo")}
}

func (r *taskRepo) Create(dbc dbctx.Context, rows []*types.Task) ([]*types.Task, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Task{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		row.UpdatedAt = now
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *taskRepo) GetForUser(dbc dbctx.Context, userID, taskID uuid.UUID) (*types.Task, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Task
	if err := t.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *taskRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Task, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.Task
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("status ASC").
		Order("position ASC").
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *taskRepo) CountOwned(dbc dbctx.Context, userID uuid.UUID, taskIDs []uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if len(taskIDs) == 0 {
		return 0, nil
	}
	err := t.WithContext(dbc.Ctx).
		Model(&types.Task{}).
		Where("user_id = ? AND id IN ?", userID, taskIDs).
		Count(&count).Error
	return count, err
}

func (r *taskRepo) UpdateFields(dbc dbctx.Context, userID, taskID uuid.UUID, updates map[string]any) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return 0, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		UpdateColumns(updates)
	return res.RowsAffected, res.Error
}

func (r *taskRepo) ApplySession(dbc dbctx.Context, userID, taskID uuid.UUID, minutes int, status string, at time.Time) error {
	at = at.UTC()
	updates := map[string]any{
		"actual_minutes": gorm.Expr("actual_minutes + ?", minutes),
		"status":         status,
		"updated_at":     at,
	}
	if status == domaintasks.StatusCompleted {
		updates["completed_at"] = at
	}
	n, err := r.UpdateFields(dbc, userID, taskID, updates)
	if err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
