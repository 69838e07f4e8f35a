package domain

import (
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/buddy"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/habit"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/rooms"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/tasks"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/user"
)

type Profile = user.Profile
type PublicProfile = user.PublicProfile

type DailyCheckIn = habit.DailyCheckIn
type Achievement = habit.Achievement
type BadgeKey = habit.BadgeKey
type FocusSession = habit.FocusSession

type Task = tasks.Task

type StudyRoom = rooms.StudyRoom
type RoomParticipant = rooms.RoomParticipant

type BuddyMatch = buddy.Match

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&Profile{},
		&DailyCheckIn{},
		&Achievement{},
		&FocusSession{},
		&Task{},
		&StudyRoom{},
		&RoomParticipant{},
		&BuddyMatch{},
	}
}
