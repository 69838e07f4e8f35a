package tasks

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusSkipped    = "skipped"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusSkipped:
		return true
	default:
		return false
	}
}

type Task struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ParentTaskID *uuid.UUID `gorm:"type:uuid;index" json:"parent_task_id"`

	Title            string  `gorm:"column:title;not null" json:"title"`
	Description      *string `gorm:"column:description" json:"description"`
	EstimatedMinutes *int    `gorm:"column:estimated_minutes" json:"estimated_minutes"`
	ActualMinutes    int     `gorm:"column:actual_minutes;not null" json:"actual_minutes"`
	Status           string  `gorm:"column:status;not null;index" json:"status"`
	Position         int     `gorm:"column:position;not null" json:"position"`

	IsDecomposed          bool           `gorm:"column:is_decomposed;not null" json:"is_decomposed"`
	OriginalInput         *string        `gorm:"column:original_input" json:"original_input"`
	DecompositionPrompt   *string        `gorm:"column:decomposition_prompt" json:"decomposition_prompt"`
	DecompositionResponse datatypes.JSON `gorm:"column:decomposition_response" json:"decomposition_response"`

	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	return nil
}

// StatusAfterSession picks the task status after a logged session:
// an explicit override wins, then completion, then pending becomes in progress.
func StatusAfterSession(current, override string, tasksCompleted int) string {
	if override != "" {
		return override
	}
	if tasksCompleted > 0 {
		return StatusCompleted
	}
	if current == StatusPending {
		return StatusInProgress
	}
	return current
}
