package habit

import (
	"context"
	"testing"
	"time"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos/testutil"
	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
)

func TestAchievementRepoInsertIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewAchievementRepo(db, testutil.Logger(t))
	p := testutil.SeedProfile(t, ctx, db, "Badger")
	dbc := dbctx.Of(ctx)

	badge := func() *types.Achievement {
		return &types.Achievement{
			UserID:         p.ID,
			BadgeType:      "streak",
			MilestoneValue: 1,
			BadgeName:      "Day One Starter",
			EarnedAt:       time.Now().UTC(),
		}
	}
	created, err := repo.Insert(dbc, badge())
	if err != nil || !created {
		t.Fatalf("Insert #1: created=%v err=%v", created, err)
	}
	created, err = repo.Insert(dbc, badge())
	if err != nil {
		t.Fatalf("Insert #2 should not error: %v", err)
	}
	if created {
		t.Fatalf("Insert #2 should be a no-op")
	}
	rows, err := repo.ListByUser(dbc, p.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("want exactly one badge row, got %d", len(rows))
	}
}
