package habit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyCheckIn is the daily ledger row: one per (user, calendar date).
// Session logging adds to the counters; check-ins fill the morning/evening fields.
type DailyCheckIn struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_daily_check_ins_user_date,priority:1" json:"user_id"`
	CheckInDate string    `gorm:"column:check_in_date;type:varchar(10);not null;uniqueIndex:idx_daily_check_ins_user_date,priority:2" json:"check_in_date"`

	MorningEnergy      *int       `gorm:"column:morning_energy" json:"morning_energy"`
	MorningMood        *string    `gorm:"column:morning_mood" json:"morning_mood"`
	MorningIntention   *string    `gorm:"column:morning_intention" json:"morning_intention"`
	MorningAIResponse  *string    `gorm:"column:morning_ai_response" json:"morning_ai_response"`
	MorningCompletedAt *time.Time `gorm:"column:morning_completed_at" json:"morning_completed_at"`

	EveningEnergy      *int       `gorm:"column:evening_energy" json:"evening_energy"`
	EveningWins        *string    `gorm:"column:evening_wins" json:"evening_wins"`
	EveningChallenges  *string    `gorm:"column:evening_challenges" json:"evening_challenges"`
	EveningAIResponse  *string    `gorm:"column:evening_ai_response" json:"evening_ai_response"`
	EveningCompletedAt *time.Time `gorm:"column:evening_completed_at" json:"evening_completed_at"`

	StudyMinutes   int  `gorm:"column:study_minutes;not null" json:"study_minutes"`
	TasksCompleted int  `gorm:"column:tasks_completed;not null" json:"tasks_completed"`
	FocusScore     *int `gorm:"column:focus_score" json:"focus_score"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (DailyCheckIn) TableName() string { return "daily_check_ins" }

func (d *DailyCheckIn) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

const (
	MinFocusScore = 1
	MaxFocusScore = 10

	// one session never spans more than a day
	MaxSessionMinutes = 1440
	MaxSessionTasks   = 100
)

// ClampFocus bounds a focus score into [1,10].
func ClampFocus(v int) int {
	if v < MinFocusScore {
		return MinFocusScore
	}
	if v > MaxFocusScore {
		return MaxFocusScore
	}
	return v
}

// SessionXP is the experience awarded for one logged session.
func SessionXP(minutes, tasks int) int {
	return minutes*2 + tasks*5
}
