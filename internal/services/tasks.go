package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos"
	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/tasks"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type TaskService interface {
	List(ctx context.Context) ([]*types.Task, error)
	Create(ctx context.Context, in CreateTaskInput) (*types.Task, error)
	UpdateStatus(ctx context.Context, taskID uuid.UUID, status string) (*types.Task, error)
	Reorder(ctx context.Context, updates []TaskPosition) (int, error)
}

type CreateTaskInput struct {
	Title            string
	Description      *string
	EstimatedMinutes *int
}

// TaskPosition moves one task; an empty Status keeps the current column.
type TaskPosition struct {
	TaskID   uuid.UUID
	Position int
	Status   string
}

type taskService struct {
	db       *gorm.DB
	log      *logger.Logger
	taskRepo repos.TaskRepo
	cal      Calendar
}

func NewTaskService(db *gorm.DB, log *logger.Logger, taskRepo repos.TaskRepo, cal Calendar) TaskService {
	return &taskService{
		db:       db,
		log:      log.With("service", "TaskService"),
		taskRepo: taskRepo,
		cal:      cal,
	}
}

func (ts *taskService) List(ctx context.Context) ([]*types.Task, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ts.taskRepo.ListByUser(dbctx.Of(ctx), rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if rows == nil {
		rows = []*types.Task{}
	}
	return rows, nil
}

func (ts *taskService) Create(ctx context.Context, in CreateTaskInput) (*types.Task, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.InvalidArgument("Task title is required")
	}
	if in.EstimatedMinutes != nil && *in.EstimatedMinutes < 1 {
		return nil, apierr.InvalidArgument("estimated_minutes must be at least 1")
	}
	row := &types.Task{
		UserID:           rd.UserID,
		Title:            title,
		Description:      trimmedOrNil(in.Description),
		EstimatedMinutes: in.EstimatedMinutes,
		Status:           tasks.StatusPending,
	}
	created, err := ts.taskRepo.Create(dbctx.Of(ctx), []*types.Task{row})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	ts.log.Info("task.created", "user_id", rd.UserID.String(), "task_id", row.ID.String())
	return created[0], nil
}

func (ts *taskService) UpdateStatus(ctx context.Context, taskID uuid.UUID, status string) (*types.Task, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if !tasks.ValidStatus(status) {
		return nil, apierr.InvalidArgument("status must be one of pending, in_progress, completed, skipped")
	}
	updates := map[string]any{"status": status}
	if status == tasks.StatusCompleted {
		updates["completed_at"] = ts.cal.Now().UTC()
	} else {
		updates["completed_at"] = nil
	}
	dbc := dbctx.Of(ctx)
	n, err := ts.taskRepo.UpdateFields(dbc, rd.UserID, taskID, updates)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if n == 0 {
		return nil, apierr.NotFound("Task not found")
	}
	return ts.taskRepo.GetForUser(dbc, rd.UserID, taskID)
}

func (ts *taskService) Reorder(ctx context.Context, updates []TaskPosition) (int, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return 0, err
	}
	if len(updates) == 0 {
		return 0, apierr.InvalidArgument("updates must not be empty")
	}
	seen := make(map[uuid.UUID]bool, len(updates))
	ids := make([]uuid.UUID, 0, len(updates))
	for _, u := range updates {
		if u.Status != "" && !tasks.ValidStatus(u.Status) {
			return 0, apierr.InvalidArgument("status must be one of pending, in_progress, completed, skipped")
		}
		if !seen[u.TaskID] {
			seen[u.TaskID] = true
			ids = append(ids, u.TaskID)
		}
	}

	updated := 0
	err = ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		owned, err := ts.taskRepo.CountOwned(dbc, rd.UserID, ids)
		if err != nil {
			return fmt.Errorf("check task ownership: %w", err)
		}
		if owned != int64(len(ids)) {
			return apierr.NotFound("One or more tasks were not found")
		}
		for _, u := range updates {
			fields := map[string]any{"position": u.Position}
			if u.Status != "" {
				fields["status"] = u.Status
				if u.Status == tasks.StatusCompleted {
					fields["completed_at"] = ts.cal.Now().UTC()
				}
			}
			n, err := ts.taskRepo.UpdateFields(dbc, rd.UserID, u.TaskID, fields)
			if err != nil {
				return fmt.Errorf("reorder task %s: %w", u.TaskID, err)
			}
			updated += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}
