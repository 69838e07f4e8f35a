package buddy

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos/testutil"
	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/buddy"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
)

func TestMatchRepoCandidatesAreFIFOAndExcludeSelf(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	repo := NewMatchRepo(gdb, testutil.Logger(t))
	dbc := dbctx.Of(ctx)

	older := testutil.SeedProfile(t, ctx, gdb, "Older")
	newer := testutil.SeedProfile(t, ctx, gdb, "Newer")
	me := testutil.SeedProfile(t, ctx, gdb, "Me")
	base := time.Now().UTC().Add(-time.Hour)

	for i, uid := range []uuid.UUID{newer.ID, older.ID, me.ID} {
		at := base.Add(time.Duration(3-i) * time.Minute)
		if uid == older.ID {
			at = base
		}
		if err := repo.Create(dbc, &types.BuddyMatch{UserID: uid, Status: buddy.StatusPending, MatchedAt: at}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	cands, err := repo.Candidates(dbc, me.ID, 5)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("want 2 candidates, got %d", len(cands))
	}
	if cands[0].UserID != older.ID {
		t.Fatalf("oldest request must come first, got %s", cands[0].UserID)
	}
	for _, c := range cands {
		if c.UserID == me.ID {
			t.Fatalf("own request must never be a candidate")
		}
	}
}

func TestMatchRepoClaimIsConditional(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	repo := NewMatchRepo(gdb, testutil.Logger(t))
	dbc := dbctx.Of(ctx)

	a := testutil.SeedProfile(t, ctx, gdb, "A")
	b := testutil.SeedProfile(t, ctx, gdb, "B")
	c := testutil.SeedProfile(t, ctx, gdb, "C")
	m := &types.BuddyMatch{UserID: a.ID, Status: buddy.StatusPending, MatchedAt: time.Now().UTC()}
	if err := repo.Create(dbc, m); err != nil {
		t.Fatalf("Create: %v", err)
	}

	reasons := datatypes.JSON([]byte(`["Similar session length"]`))
	ok, err := repo.Claim(dbc, m.ID, b.ID, 70, reasons, time.Now())
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	ok, err = repo.Claim(dbc, m.ID, c.ID, 50, reasons, time.Now())
	if err != nil || ok {
		t.Fatalf("second claim must lose: ok=%v err=%v", ok, err)
	}

	forB, err := repo.ListOpenForUser(dbc, b.ID)
	if err != nil || len(forB) != 1 || forB[0].Status != buddy.StatusActive {
		t.Fatalf("ListOpenForUser(b): %+v %v", forB, err)
	}
	if forB[0].BuddyID == nil || *forB[0].BuddyID != b.ID {
		t.Fatalf("buddy id not set")
	}

	if err := repo.SetStatus(dbc, []uuid.UUID{m.ID}, buddy.StatusEnded); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	open, _ := repo.ListOpenForUser(dbc, a.ID)
	if len(open) != 0 {
		t.Fatalf("ended match must not be open")
	}
	all, _ := repo.ListForUser(dbc, a.ID)
	if len(all) != 1 {
		t.Fatalf("history should keep the ended row")
	}

	if err := repo.Delete(dbc, m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	all, _ = repo.ListForUser(dbc, b.ID)
	if len(all) != 0 {
		t.Fatalf("row should be deleted")
	}
}
