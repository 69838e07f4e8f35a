package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos/testutil"
	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	domaintasks "github.com/SyedHasanCronosPMC/StudySync/internal/domain/tasks"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
)

func TestTaskRepoOwnershipAndSession(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewTaskRepo(db, testutil.Logger(t))
	dbc := dbctx.Of(ctx)

	owner := testutil.SeedProfile(t, ctx, db, "Owner")
	stranger := testutil.SeedProfile(t, ctx, db, "Stranger")
	task := testutil.SeedTask(t, ctx, db, owner.ID, "Read chapter 3")

	got, err := repo.GetForUser(dbc, stranger.ID, task.ID)
	if err != nil {
		t.Fatalf("GetForUser stranger: %v", err)
	}
	if got != nil {
		t.Fatalf("stranger must not see the task")
	}

	doneAt := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	if err := repo.ApplySession(dbc, owner.ID, task.ID, 25, domaintasks.StatusInProgress, doneAt.Add(-time.Hour)); err != nil {
		t.Fatalf("ApplySession: %v", err)
	}
	if err := repo.ApplySession(dbc, owner.ID, task.ID, 10, domaintasks.StatusCompleted, doneAt); err != nil {
		t.Fatalf("ApplySession #2: %v", err)
	}
	got, err = repo.GetForUser(dbc, owner.ID, task.ID)
	if err != nil || got == nil {
		t.Fatalf("GetForUser owner: %v", err)
	}
	if got.ActualMinutes != 35 || got.Status != domaintasks.StatusCompleted || got.CompletedAt == nil {
		t.Fatalf("unexpected task after sessions: %+v", got)
	}
	if !got.CompletedAt.Equal(doneAt) {
		t.Fatalf("completed_at: want %s got %s", doneAt, got.CompletedAt)
	}

	err = repo.ApplySession(dbc, stranger.ID, task.ID, 5, domaintasks.StatusInProgress, doneAt)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("ApplySession by stranger: want ErrRecordNotFound, got %v", err)
	}
}

func TestTaskRepoCreateListAndCount(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewTaskRepo(db, testutil.Logger(t))
	dbc := dbctx.Of(ctx)
	owner := testutil.SeedProfile(t, ctx, db, "Lister")

	rows, err := repo.Create(dbc, []*types.Task{
		{UserID: owner.ID, Title: "second", Position: 1},
		{UserID: owner.ID, Title: "first", Position: 0},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rows[0].ID == uuid.Nil || rows[0].Status != domaintasks.StatusPending {
		t.Fatalf("Create should assign id and default status: %+v", rows[0])
	}

	list, err := repo.ListByUser(dbc, owner.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 || list[0].Title != "first" {
		t.Fatalf("ListByUser order: %+v", list)
	}

	n, err := repo.CountOwned(dbc, owner.ID, []uuid.UUID{rows[0].ID, rows[1].ID, uuid.New()})
	if err != nil {
		t.Fatalf("CountOwned: %v", err)
	}
	if n != 2 {
		t.Fatalf("CountOwned: want 2 got %d", n)
	}
}
