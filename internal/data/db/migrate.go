package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
)

// indexes gorm tags cannot express. Both statements run on Postgres and SQLite.
var extraIndexes = []string{
	// at most one active participation per (room, user)
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_room_participants_active
		ON room_participants (room_id, user_id) WHERE left_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_buddy_matches_open
		ON buddy_matches (status, matched_at) WHERE buddy_id IS NULL`,
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// =========================
		// Profile + daily ledger
		// =========================
		&types.Profile{},
		&types.DailyCheckIn{},
		&types.FocusSession{},

		// =========================
		// Achievements
		// =========================
		&types.Achievement{},

		// =========================
		// Tasks
		// =========================
		&types.Task{},

		// =========================
		// Study rooms + presence
		// =========================
		&types.StudyRoom{},
		&types.RoomParticipant{},

		// =========================
		// Accountability buddies
		// =========================
		&types.BuddyMatch{},
	); err != nil {
		return err
	}
	for _, stmt := range extraIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
