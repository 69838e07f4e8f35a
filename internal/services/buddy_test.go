package services

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/buddy"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/user"
)

func TestBuddyRequestQueuesThenMatches(t *testing.T) {
	h := newHarness(t)
	aCtx, aID := h.as(t, "ana@example.com")
	bCtx, bID := h.as(t, "ben@example.com")

	ov, err := h.buddies.Request(aCtx)
	if err != nil {
		t.Fatalf("A request: %v", err)
	}
	if ov.Pending == nil || ov.Active != nil || ov.Pending.BuddyID != nil {
		t.Fatalf("A should be queued: %+v", ov)
	}

	ov, err = h.buddies.Request(bCtx)
	if err != nil {
		t.Fatalf("B request: %v", err)
	}
	if ov.Active == nil || ov.Pending != nil {
		t.Fatalf("B should be matched: %+v", ov)
	}
	if ov.Active.BuddyID == nil || *ov.Active.BuddyID != aID {
		t.Fatalf("B's buddy should be A: %+v", ov.Active)
	}
	if ov.Active.BuddyProfile == nil || ov.Active.BuddyProfile.DisplayName != "ana" {
		t.Fatalf("buddy profile: %+v", ov.Active.BuddyProfile)
	}
	if ov.Active.CompatibilityScore == nil || *ov.Active.CompatibilityScore != 75 {
		t.Fatalf("score: %v", ov.Active.CompatibilityScore)
	}
	if len(ov.Active.MatchReasons) != 2 {
		t.Fatalf("reasons: %v", ov.Active.MatchReasons)
	}

	mine, err := h.buddies.Overview(aCtx)
	if err != nil {
		t.Fatalf("A overview: %v", err)
	}
	if mine.Active == nil || mine.Active.BuddyID == nil || *mine.Active.BuddyID != bID || mine.Pending != nil {
		t.Fatalf("A should see B as active buddy: %+v", mine)
	}

	again, err := h.buddies.Request(bCtx)
	if err != nil {
		t.Fatalf("repeat request: %v", err)
	}
	if again.Active == nil || again.Active.ID != ov.Active.ID {
		t.Fatalf("repeat request must return the existing match: %+v", again)
	}
}

func TestBuddyCancel(t *testing.T) {
	h := newHarness(t)
	aCtx, _ := h.as(t, "a@example.com")
	bCtx, _ := h.as(t, "b@example.com")
	cCtx, _ := h.as(t, "c@example.com")

	if _, err := h.buddies.Request(aCtx); err != nil {
		t.Fatalf("A request: %v", err)
	}
	if _, err := h.buddies.Request(bCtx); err != nil {
		t.Fatalf("B request: %v", err)
	}
	if _, err := h.buddies.Request(cCtx); err != nil {
		t.Fatalf("C request: %v", err)
	}

	ov, err := h.buddies.Cancel(cCtx)
	if err != nil {
		t.Fatalf("C cancel: %v", err)
	}
	if ov.Pending != nil || ov.Active != nil || len(ov.History) != 0 {
		t.Fatalf("a cancelled queue entry leaves nothing behind: %+v", ov)
	}
	var rows int64
	if err := h.db.Model(&types.BuddyMatch{}).Count(&rows).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Fatalf("want only the A/B match left, got %d rows", rows)
	}

	ov, err = h.buddies.Cancel(bCtx)
	if err != nil {
		t.Fatalf("B cancel: %v", err)
	}
	if ov.Active != nil || len(ov.History) != 1 || ov.History[0].Status != buddy.StatusEnded {
		t.Fatalf("B history: %+v", ov)
	}
	theirs, err := h.buddies.Overview(aCtx)
	if err != nil {
		t.Fatalf("A overview: %v", err)
	}
	if theirs.Active != nil || len(theirs.History) != 1 {
		t.Fatalf("A should see the ended match too: %+v", theirs)
	}
}

func TestCompatibility(t *testing.T) {
	a := user.NewProfile(uuid.New(), "a")
	b := user.NewProfile(uuid.New(), "b")
	a.HasADHD, b.HasADHD = true, true
	a.HasAnxiety, b.HasAnxiety = true, true
	a.BestStudyTimes = datatypes.JSON(`["Morning","evening"]`)
	b.BestStudyTimes = datatypes.JSON(`["morning"]`)
	a.CurrentStreak, b.CurrentStreak = 4, 3

	score, reasons := Compatibility(a, b)
	if score != 100 {
		t.Fatalf("score capped at 100, got %d", score)
	}
	if reasons[0] != "Shared learning needs: ADHD, anxiety" {
		t.Fatalf("first reason: %q", reasons[0])
	}
	if reasons[3] != "Both study best: morning" {
		t.Fatalf("overlap reason: %q", reasons[3])
	}

	b.PreferredStudyDuration = 60
	b.DailyGoalMinutes = 300
	b.HasADHD, b.HasAnxiety = false, false
	b.BestStudyTimes = nil
	b.CurrentStreak = 0
	score, reasons = Compatibility(a, b)
	if score != 50 || len(reasons) != 1 || reasons[0] != "Ready to study together" {
		t.Fatalf("baseline: %d %v", score, reasons)
	}
}
