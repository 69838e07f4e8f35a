package repos

import (
	"gorm.io/gorm"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos/buddy"
	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos/habit"
	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos/rooms"
	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos/tasks"
	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos/user"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type ProfileRepo = user.ProfileRepo

type CheckInRepo = habit.CheckInRepo
type AchievementRepo = habit.AchievementRepo
type FocusSessionRepo = habit.FocusSessionRepo

type TaskRepo = tasks.TaskRepo

type RoomRepo = rooms.RoomRepo
type ParticipantRepo = rooms.ParticipantRepo

type MatchRepo = buddy.MatchRepo

func NewProfileRepo(db *gorm.DB, log *logger.Logger) ProfileRepo {
	return user.NewProfileRepo(db, log)
}

func NewCheckInRepo(db *gorm.DB, log *logger.Logger) CheckInRepo {
	return habit.NewCheckInRepo(db, log)
}

func NewAchievementRepo(db *gorm.DB, log *logger.Logger) AchievementRepo {
	return habit.NewAchievementRepo(db, log)
}

func NewFocusSessionRepo(db *gorm.DB, log *logger.Logger) FocusSessionRepo {
	return habit.NewFocusSessionRepo(db, log)
}

func NewTaskRepo(db *gorm.DB, log *logger.Logger) TaskRepo {
	return tasks.NewTaskRepo(db, log)
}

func NewRoomRepo(db *gorm.DB, log *logger.Logger) RoomRepo {
	return rooms.NewRoomRepo(db, log)
}

func NewParticipantRepo(db *gorm.DB, log *logger.Logger) ParticipantRepo {
	return rooms.NewParticipantRepo(db, log)
}

func NewMatchRepo(db *gorm.DB, log *logger.Logger) MatchRepo {
	return buddy.NewMatchRepo(db, log)
}
