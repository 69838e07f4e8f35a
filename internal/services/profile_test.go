package services

import (
	"context"
	"testing"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ctxutil"
)

func TestEnsureCreatesDefaults(t *testing.T) {
	h := newHarness(t)
	ctx, uid := h.as(t, "sam.lee@example.com")

	p, err := h.profiles.Ensure(ctx)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if p.ID != uid || p.DisplayName != "sam.lee" || p.Level != 1 || p.PreferredStudyDuration != 25 || p.DailyGoalMinutes != 120 {
		t.Fatalf("defaults: %+v", p)
	}
	again, err := h.profiles.Ensure(ctx)
	if err != nil || again.ID != p.ID || again.DisplayName != "sam.lee" {
		t.Fatalf("second Ensure must return the same row: %+v %v", again, err)
	}
}

func TestEnsurePrefersMetadataName(t *testing.T) {
	h := newHarness(t)
	ctx, _ := h.as(t, "x@example.com")
	rd := ctxutil.GetRequestData(ctx)
	rd.DisplayName = "Jordan"
	p, err := h.profiles.Ensure(ctxutil.WithRequestData(context.Background(), rd))
	if err != nil || p.DisplayName != "Jordan" {
		t.Fatalf("display name: %+v %v", p, err)
	}
}

func TestProfileUpdateAllowList(t *testing.T) {
	h := newHarness(t)
	ctx, _ := h.as(t, "upd@example.com")

	p, err := h.profiles.Update(ctx, map[string]any{
		"display_name":       "  Robin ",
		"has_adhd":           "true",
		"daily_goal_minutes": 90.0,
		"best_study_times":   []any{"morning", "night"},
		"level":              99,
		"experience_points":  5000,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.DisplayName != "Robin" || !p.HasADHD || p.DailyGoalMinutes != 90 {
		t.Fatalf("allowed fields: %+v", p)
	}
	if string(p.BestStudyTimes) != `["morning","night"]` {
		t.Fatalf("best_study_times: %s", p.BestStudyTimes)
	}
	if p.Level != 1 || p.ExperiencePoints != 0 {
		t.Fatalf("protected fields changed: level=%d xp=%d", p.Level, p.ExperiencePoints)
	}
}

func TestProfileUpdateRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	ctx, _ := h.as(t, "bad@example.com")

	_, err := h.profiles.Update(ctx, map[string]any{"level": 3})
	wantCode(t, err, apierr.CodeInvalidArgument)
	_, err = h.profiles.Update(ctx, map[string]any{"daily_goal_minutes": -5})
	wantCode(t, err, apierr.CodeInvalidArgument)
	_, err = h.profiles.Update(ctx, map[string]any{"display_name": "  "})
	wantCode(t, err, apierr.CodeInvalidArgument)
	_, err = h.profiles.Update(context.Background(), map[string]any{"has_adhd": true})
	wantCode(t, err, apierr.CodeUnauthorized)
}

func TestDashboardIncludesTodaysCheckIn(t *testing.T) {
	h := newHarness(t)
	ctx, _ := h.as(t, "dash@example.com")

	d, err := h.profiles.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Profile == nil || d.TodayCheckIn != nil {
		t.Fatalf("fresh dashboard: %+v", d)
	}
	if _, err := h.checkIns.Submit(ctx, CheckInInput{Type: CheckInMorning, Responses: map[string]any{"energy": 6}}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	d, err = h.profiles.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.TodayCheckIn == nil || d.TodayCheckIn.CheckInDate != "2025-03-10" || d.Profile.CurrentStreak != 1 {
		t.Fatalf("dashboard after check-in: %+v %+v", d.Profile, d.TodayCheckIn)
	}
	progress, err := h.profiles.Progress(ctx)
	if err != nil || len(progress) != 1 {
		t.Fatalf("Progress: %d %v", len(progress), err)
	}
}
