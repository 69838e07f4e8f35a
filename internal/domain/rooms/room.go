package rooms

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeFocus        = "focus"
	TypeCasual       = "casual"
	TypeExamPrep     = "exam_prep"
	TypeGroupProject = "group_project"

	DefaultMaxParticipants = 10
	DefaultSessionMinutes  = 25
	DefaultBreakMinutes    = 5
)

func ValidRoomType(s string) bool {
	switch s {
	case TypeFocus, TypeCasual, TypeExamPrep, TypeGroupProject:
		return true
	default:
		return false
	}
}

// StudyRoom is a shared room. Participant counts and focus averages are
// derived per query, never stored.
type StudyRoom struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string     `gorm:"column:name;not null;index" json:"name"`
	Description     *string    `gorm:"column:description" json:"description"`
	Subject         *string    `gorm:"column:subject" json:"subject"`
	RoomType        string     `gorm:"column:room_type;not null" json:"room_type"`
	MaxParticipants int        `gorm:"column:max_participants;not null" json:"max_participants"`
	SessionDuration int        `gorm:"column:session_duration;not null" json:"session_duration"`
	BreakDuration   int        `gorm:"column:break_duration;not null" json:"break_duration"`
	AutoStartBreak  bool       `gorm:"column:auto_start_break;not null" json:"auto_start_break"`
	IsActive        bool       `gorm:"column:is_active;not null;index" json:"is_active"`
	CreatedBy       *uuid.UUID `gorm:"type:uuid;column:created_by" json:"created_by"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`
}

func (StudyRoom) TableName() string { return "study_rooms" }

func (r *StudyRoom) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
