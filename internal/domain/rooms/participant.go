package rooms

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ParticipantStudying = "studying"
	ParticipantBreak    = "break"
	ParticipantAway     = "away"
	ParticipantComplete = "complete"
)

func ValidParticipantStatus(s string) bool {
	switch s {
	case ParticipantStudying, ParticipantBreak, ParticipantAway, ParticipantComplete:
		return true
	default:
		return false
	}
}

// RoomParticipant is one join event. Active while LeftAt is nil; at most one
// active row per (room, user) is enforced by a partial unique index.
type RoomParticipant struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"room_id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	JoinedAt     time.Time  `gorm:"column:joined_at;not null" json:"joined_at"`
	LeftAt       *time.Time `gorm:"column:left_at" json:"left_at"`
	Status       string     `gorm:"column:status;not null" json:"status"`
	CurrentTask  *string    `gorm:"column:current_task" json:"current_task"`
	StudyMinutes int        `gorm:"column:study_minutes;not null" json:"study_minutes"`
	MessagesSent int        `gorm:"column:messages_sent;not null" json:"messages_sent"`
}

func (RoomParticipant) TableName() string { return "room_participants" }

func (p *RoomParticipant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
