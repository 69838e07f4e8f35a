package services

import (
	"testing"

	"github.com/google/uuid"

	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
)

func TestEmbeddedAchievementRules(t *testing.T) {
	rules, err := LoadAchievementRules()
	if err != nil {
		t.Fatalf("LoadAchievementRules: %v", err)
	}
	if len(rules) != 12 {
		t.Fatalf("want 12 rules, got %d", len(rules))
	}
	first := rules[0]
	if first.BadgeType != "streak" || first.Milestone != 1 || first.Name != "Day One Starter" {
		t.Fatalf("first rule should be Day One Starter, got %+v", first)
	}
}

func TestParseAchievementRulesRejectsBadTables(t *testing.T) {
	cases := map[string]string{
		"unknown metric": "rules:\n  - {badge_type: x, milestone: 1, metric: mood, name: X}\n",
		"missing name":   "rules:\n  - {badge_type: x, milestone: 1, metric: streak}\n",
		"duplicate": "rules:\n  - {badge_type: x, milestone: 1, metric: streak, name: A}\n" +
			"  - {badge_type: x, milestone: 1, metric: level, name: B}\n",
	}
	for name, doc := range cases {
		if _, err := ParseAchievementRules([]byte(doc)); err == nil {
			t.Fatalf("%s: want error", name)
		}
	}
}

func TestEvaluateAchievements(t *testing.T) {
	rules := []AchievementRule{
		{BadgeType: "streak", Milestone: 1, Metric: MetricStreak, Name: "One"},
		{BadgeType: "streak", Milestone: 3, Metric: MetricStreak, Name: "Three"},
		{BadgeType: "study_time", Milestone: 60, Metric: MetricStudyMinutes, Name: "Hour"},
		{BadgeType: "level", Milestone: 2, Metric: MetricLevel, Name: "Two"},
	}
	snap := ProgressSnapshot{CurrentStreak: 3, TotalStudyMinutes: 59, Level: 2}

	got := EvaluateAchievements(snap, rules, nil)
	if len(got) != 3 || got[0].Name != "One" || got[1].Name != "Three" || got[2].Name != "Two" {
		t.Fatalf("unexpected unlocks: %+v", got)
	}

	earned := map[types.BadgeKey]bool{{BadgeType: "streak", Milestone: 1}: true}
	got = EvaluateAchievements(snap, rules, earned)
	if len(got) != 2 || got[0].Name != "Three" {
		t.Fatalf("earned badges must be skipped: %+v", got)
	}
}

func TestUnlockIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx, uid := h.as(t, "idem@example.com")
	p, err := h.profiles.Ensure(ctx)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	p.CurrentStreak = 1

	first, err := h.achievements.Unlock(dbctx.Of(ctx), p)
	if err != nil {
		t.Fatalf("Unlock #1: %v", err)
	}
	if len(first) != 1 || first[0].BadgeName != "Day One Starter" || first[0].UserID != uid {
		t.Fatalf("want Day One Starter, got %+v", first)
	}
	second, err := h.achievements.Unlock(dbctx.Of(ctx), p)
	if err != nil {
		t.Fatalf("Unlock #2: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("second unlock must be a no-op, got %+v", second)
	}
	list, err := h.achievements.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List: %d %v", len(list), err)
	}
}

func TestUnlockIgnoresEmptyProfile(t *testing.T) {
	h := newHarness(t)
	got, err := h.achievements.Unlock(dbctx.Of(t.Context()), &types.Profile{ID: uuid.Nil})
	if err != nil || len(got) != 0 {
		t.Fatalf("Unlock(nil id): %+v %v", got, err)
	}
}
