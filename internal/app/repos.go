package app

import (
	"gorm.io/gorm"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type Repos struct {
	Profile      repos.ProfileRepo
	CheckIn      repos.CheckInRepo
	Achievement  repos.AchievementRepo
	FocusSession repos.FocusSessionRepo
	Task         repos.TaskRepo
	Room         repos.RoomRepo
	Participant  repos.ParticipantRepo
	Match        repos.MatchRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Profile:      repos.NewProfileRepo(db, log),
		CheckIn:      repos.NewCheckInRepo(db, log),
		Achievement:  repos.NewAchievementRepo(db, log),
		FocusSession: repos.NewFocusSessionRepo(db, log),
		Task:         repos.NewTaskRepo(db, log),
		Room:         repos.NewRoomRepo(db, log),
		Participant:  repos.NewParticipantRepo(db, log),
		Match:        repos.NewMatchRepo(db, log),
	}
}
