package habit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FocusSession records one logged session; it feeds room focus averages.
type FocusSession struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	RoomID          *uuid.UUID `gorm:"type:uuid;index:idx_focus_sessions_room_logged,priority:1" json:"room_id"`
	TaskID          *uuid.UUID `gorm:"type:uuid" json:"task_id"`
	DurationMinutes int        `gorm:"column:duration_minutes;not null" json:"duration_minutes"`
	TasksCompleted  int        `gorm:"column:tasks_completed;not null" json:"tasks_completed"`
	FocusScore      *int       `gorm:"column:focus_score" json:"focus_score"`
	LoggedAt        time.Time  `gorm:"column:logged_at;not null;index:idx_focus_sessions_room_logged,priority:2" json:"logged_at"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
}

func (FocusSession) TableName() string { return "focus_sessions" }

func (f *FocusSession) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
