package buddy

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusPending = "pending"
	StatusActive  = "active"
	StatusEnded   = "ended"
	StatusPaused  = "paused"
)

// Match is a pairing attempt. A pending row has no BuddyID; matching another
// user's request fills BuddyID and flips it to active.
type Match struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	BuddyID            *uuid.UUID     `gorm:"type:uuid;index" json:"buddy_id"`
	Status             string         `gorm:"column:status;not null;index" json:"status"`
	MatchedAt          time.Time      `gorm:"column:matched_at;not null" json:"matched_at"`
	CompatibilityScore *int           `gorm:"column:compatibility_score" json:"compatibility_score"`
	MatchReasons       datatypes.JSON `gorm:"column:match_reasons" json:"match_reasons"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
}

func (Match) TableName() string { return "buddy_matches" }

func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Counterpart returns the other side of the match from viewer's perspective.
func (m *Match) Counterpart(viewer uuid.UUID) *uuid.UUID {
	if m == nil {
		return nil
	}
	if m.UserID == viewer {
		return m.BuddyID
	}
	id := m.UserID
	return &id
}

// IsOpen reports whether the row still counts toward the one-open-match rule.
func (m *Match) IsOpen() bool {
	return m != nil && (m.Status == StatusPending || m.Status == StatusActive)
}
