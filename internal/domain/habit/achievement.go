package habit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Achievement is an earned badge. Rows are immutable once written.
type Achievement struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_achievements_user_badge,priority:1" json:"user_id"`
	BadgeType        string    `gorm:"column:badge_type;not null;uniqueIndex:idx_achievements_user_badge,priority:2" json:"badge_type"`
	MilestoneValue   int       `gorm:"column:milestone_value;not null;uniqueIndex:idx_achievements_user_badge,priority:3" json:"milestone_value"`
	BadgeName        string    `gorm:"column:badge_name;not null" json:"badge_name"`
	BadgeDescription string    `gorm:"column:badge_description" json:"badge_description"`
	BadgeIcon        string    `gorm:"column:badge_icon" json:"badge_icon"`
	EarnedAt         time.Time `gorm:"column:earned_at;not null;index" json:"earned_at"`
}

func (Achievement) TableName() string { return "achievements" }

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// BadgeKey identifies a badge independent of who earned it.
type BadgeKey struct {
	BadgeType string
	Milestone int
}

func (a *Achievement) Key() BadgeKey {
	return BadgeKey{BadgeType: a.BadgeType, Milestone: a.MilestoneValue}
}
