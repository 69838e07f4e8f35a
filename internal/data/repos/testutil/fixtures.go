package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/rooms"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/tasks"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/user"
)

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Profile {
	tb.Helper()
	p := user.NewProfile(uuid.New(), name)
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedRoom(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, maxParticipants int) *types.StudyRoom {
	tb.Helper()
	now := time.Now().UTC()
	r := &types.StudyRoom{
		Name:            name,
		RoomType:        rooms.TypeFocus,
		MaxParticipants: maxParticipants,
		SessionDuration: rooms.DefaultSessionMinutes,
		BreakDuration:   rooms.DefaultBreakMinutes,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed room: %v", err)
	}
	return r
}

func SeedTask(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, title string) *types.Task {
	tb.Helper()
	now := time.Now().UTC()
	t := &types.Task{
		UserID:    userID,
		Title:     title,
		Status:    tasks.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed task: %v", err)
	}
	return t
}
