package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos"
	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos/testutil"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ratelimit"
)

func TestNextStreak(t *testing.T) {
	day := func(s string) *string { return &s }
	cases := []struct {
		name             string
		current, longest int
		last             *string
		wantCur, wantMax int
	}{
		{"first ever", 0, 0, nil, 1, 1},
		{"consecutive", 2, 2, day("2025-03-09"), 3, 3},
		{"same day", 3, 5, day("2025-03-10"), 3, 5},
		{"gap", 4, 4, day("2025-03-07"), 1, 4},
	}
	for _, tc := range cases {
		cur, longest := NextStreak(tc.current, tc.longest, tc.last, "2025-03-10", "2025-03-09")
		if cur != tc.wantCur || longest != tc.wantMax {
			t.Fatalf("%s: got (%d,%d) want (%d,%d)", tc.name, cur, longest, tc.wantCur, tc.wantMax)
		}
	}
}

func TestMorningCheckInStreak(t *testing.T) {
	h := newHarness(t)
	ctx, _ := h.as(t, "streak@example.com")
	morning := CheckInInput{Type: CheckInMorning, Responses: map[string]any{"energy": "7", "mood": "calm"}}

	res, err := h.checkIns.Submit(ctx, morning)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Message != checkInFallback(CheckInMorning) {
		t.Fatalf("fallback message expected, got %q", res.Message)
	}
	if res.CheckIn.MorningEnergy == nil || *res.CheckIn.MorningEnergy != 7 || res.CheckIn.MorningMood == nil {
		t.Fatalf("morning fields: %+v", res.CheckIn)
	}
	if len(res.Achievements) != 1 || res.Achievements[0].BadgeName != "Day One Starter" {
		t.Fatalf("achievements: %+v", res.Achievements)
	}

	res, err = h.checkIns.Submit(ctx, morning)
	if err != nil {
		t.Fatalf("Submit again: %v", err)
	}
	if len(res.Achievements) != 0 {
		t.Fatalf("badge must be awarded once: %+v", res.Achievements)
	}
	assertStreak(t, h, ctx, 1, 1)

	h.clk.Advance(24 * time.Hour)
	if _, err := h.checkIns.Submit(ctx, morning); err != nil {
		t.Fatalf("Submit next day: %v", err)
	}
	assertStreak(t, h, ctx, 2, 2)

	h.clk.Advance(72 * time.Hour)
	if _, err := h.checkIns.Submit(ctx, morning); err != nil {
		t.Fatalf("Submit after gap: %v", err)
	}
	assertStreak(t, h, ctx, 1, 2)
}

func assertStreak(t *testing.T, h *harness, ctx context.Context, current, longest int) {
	t.Helper()
	p, err := h.profiles.Ensure(ctx)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if p.CurrentStreak != current || p.LongestStreak != longest {
		t.Fatalf("streak: got (%d,%d) want (%d,%d)", p.CurrentStreak, p.LongestStreak, current, longest)
	}
}

func TestEveningCheckInLeavesStreak(t *testing.T) {
	h := newHarness(t)
	ctx, _ := h.as(t, "evening@example.com")
	h.gen.err = nil
	h.gen.text = "Well done today."

	res, err := h.checkIns.Submit(ctx, CheckInInput{Type: CheckInEvening, Responses: map[string]any{"wins": "finished essay", "energy": 15}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Message != "Well done today." || h.gen.Calls() != 1 {
		t.Fatalf("generated message: %q calls=%d", res.Message, h.gen.Calls())
	}
	if res.CheckIn.EveningEnergy == nil || *res.CheckIn.EveningEnergy != 10 {
		t.Fatalf("energy clamped to 10: %+v", res.CheckIn.EveningEnergy)
	}
	if res.CheckIn.MorningCompletedAt != nil || res.CheckIn.EveningCompletedAt == nil {
		t.Fatalf("only the evening half is set: %+v", res.CheckIn)
	}
	assertStreak(t, h, ctx, 0, 0)
}

func TestCheckInValidation(t *testing.T) {
	h := newHarness(t)
	ctx, _ := h.as(t, "val@example.com")

	_, err := h.checkIns.Submit(ctx, CheckInInput{Type: CheckInMorning})
	wantCode(t, err, apierr.CodeInvalidArgument)
	_, err = h.checkIns.Submit(ctx, CheckInInput{Type: "noon", Responses: map[string]any{}})
	wantCode(t, err, apierr.CodeInvalidArgument)
	_, err = h.checkIns.Submit(ctx, CheckInInput{Type: CheckInMorning, Responses: map[string]any{"energy": "lots"}})
	wantCode(t, err, apierr.CodeInvalidArgument)
}

func TestCheckInRateLimit(t *testing.T) {
	h := newHarness(t)
	log := testutil.Logger(t)
	svc := NewCheckInService(
		h.db, log,
		repos.NewProfileRepo(h.db, log),
		repos.NewCheckInRepo(h.db, log),
		h.achievements, h.gen, h.limiter,
		ratelimit.Policy{Max: 1, Window: time.Minute},
		h.cal,
	)
	ctx, _ := h.as(t, "rl@example.com")
	in := CheckInInput{Type: CheckInEvening, Responses: map[string]any{}}

	if _, err := svc.Submit(ctx, in); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	_, err := svc.Submit(ctx, in)
	wantCode(t, err, apierr.CodeRateLimited)
	var ex *ratelimit.Exceeded
	if !errors.As(err, &ex) || ex.RetryAfterSeconds() < 1 {
		t.Fatalf("want retry-after hint, got %v", err)
	}

	h.clk.Advance(time.Minute + time.Second)
	if _, err := svc.Submit(ctx, in); err != nil {
		t.Fatalf("Submit after window: %v", err)
	}
}
