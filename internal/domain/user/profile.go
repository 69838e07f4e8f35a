package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// XPPerLevel is the experience needed to advance one level.
const XPPerLevel = 120

// Profile is the per-user habit record. ID equals the identity provider's user id.
type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DisplayName string    `gorm:"column:display_name;not null" json:"display_name"`
	AvatarURL   *string   `gorm:"column:avatar_url" json:"avatar_url"`

	HasADHD     bool `gorm:"column:has_adhd;not null" json:"has_adhd"`
	HasDyslexia bool `gorm:"column:has_dyslexia;not null" json:"has_dyslexia"`
	HasAnxiety  bool `gorm:"column:has_anxiety;not null" json:"has_anxiety"`
	HasAutism   bool `gorm:"column:has_autism;not null" json:"has_autism"`

	PreferredStudyDuration int            `gorm:"column:preferred_study_duration;not null" json:"preferred_study_duration"`
	BreakDuration          int            `gorm:"column:break_duration;not null" json:"break_duration"`
	DailyGoalMinutes       int            `gorm:"column:daily_goal_minutes;not null" json:"daily_goal_minutes"`
	BestStudyTimes         datatypes.JSON `gorm:"column:best_study_times" json:"best_study_times"`

	DarkMode          bool `gorm:"column:dark_mode;not null" json:"dark_mode"`
	ReduceAnimations  bool `gorm:"column:reduce_animations;not null" json:"reduce_animations"`
	LargerText        bool `gorm:"column:larger_text;not null" json:"larger_text"`
	HighContrast      bool `gorm:"column:high_contrast;not null" json:"high_contrast"`
	AudioInstructions bool `gorm:"column:audio_instructions;not null" json:"audio_instructions"`

	CurrentStreak       int     `gorm:"column:current_streak;not null" json:"current_streak"`
	LongestStreak       int     `gorm:"column:longest_streak;not null" json:"longest_streak"`
	LastCheckInDate     *string `gorm:"column:last_check_in_date;type:varchar(10)" json:"last_check_in_date"`
	TotalStudyMinutes   int     `gorm:"column:total_study_minutes;not null" json:"total_study_minutes"`
	TotalTasksCompleted int     `gorm:"column:total_tasks_completed;not null" json:"total_tasks_completed"`
	ExperiencePoints    int     `gorm:"column:experience_points;not null" json:"experience_points"`
	Level               int     `gorm:"column:level;not null" json:"level"`

	OnboardingCompleted bool `gorm:"column:onboarding_completed;not null" json:"onboarding_completed"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "user_profiles" }

// NewProfile returns a fresh profile with product defaults.
func NewProfile(id uuid.UUID, displayName string) *Profile {
	return &Profile{
		ID:                     id,
		DisplayName:            displayName,
		PreferredStudyDuration: 25,
		BreakDuration:          5,
		DailyGoalMinutes:       120,
		BestStudyTimes:         datatypes.JSON([]byte("[]")),
		Level:                  1,
	}
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Level < 1 {
		p.Level = LevelForXP(p.ExperiencePoints)
	}
	return nil
}

// LevelForXP is floor(xp/120)+1, never below 1.
func LevelForXP(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/XPPerLevel + 1
}

// PublicProfile is the subset of a profile shown to other users.
type PublicProfile struct {
	ID            uuid.UUID `json:"id"`
	DisplayName   string    `json:"display_name"`
	AvatarURL     *string   `json:"avatar_url"`
	CurrentStreak int       `json:"current_streak"`
}

func (p *Profile) Public() *PublicProfile {
	if p == nil {
		return nil
	}
	return &PublicProfile{
		ID:            p.ID,
		DisplayName:   p.DisplayName,
		AvatarURL:     p.AvatarURL,
		CurrentStreak: p.CurrentStreak,
	}
}
