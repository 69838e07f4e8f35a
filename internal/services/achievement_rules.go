package services

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
)

const achievementRulesEnv = "ACHIEVEMENT_RULES_YAML"

//go:embed achievements.yaml
var achievementRulesFS embed.FS

const (
	MetricStreak         = "streak"
	MetricStudyMinutes   = "study_minutes"
	MetricTasksCompleted = "tasks_completed"
	MetricLevel          = "level"
)

type AchievementRule struct {
	BadgeType   string `yaml:"badge_type"`
	Milestone   int    `yaml:"milestone"`
	Metric      string `yaml:"metric"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

func (r AchievementRule) Key() types.BadgeKey {
	return types.BadgeKey{BadgeType: r.BadgeType, Milestone: r.Milestone}
}

// ProgressSnapshot is the slice of a profile the rule table looks at.
type ProgressSnapshot struct {
	CurrentStreak       int
	TotalStudyMinutes   int
	TotalTasksCompleted int
	Level               int
}

func SnapshotOf(p *types.Profile) ProgressSnapshot {
	if p == nil {
		return ProgressSnapshot{}
	}
	return ProgressSnapshot{
		CurrentStreak:       p.CurrentStreak,
		TotalStudyMinutes:   p.TotalStudyMinutes,
		TotalTasksCompleted: p.TotalTasksCompleted,
		Level:               p.Level,
	}
}

func (r AchievementRule) Satisfied(s ProgressSnapshot) bool {
	var v int
	switch r.Metric {
	case MetricStreak:
		v = s.CurrentStreak
	case MetricStudyMinutes:
		v = s.TotalStudyMinutes
	case MetricTasksCompleted:
		v = s.TotalTasksCompleted
	case MetricLevel:
		v = s.Level
	default:
		return false
	}
	return v >= r.Milestone
}

// EvaluateAchievements returns rules that hold for s and are not yet earned, in rule order.
func EvaluateAchievements(s ProgressSnapshot, rules []AchievementRule, earned map[types.BadgeKey]bool) []AchievementRule {
	out := []AchievementRule{}
	for _, r := range rules {
		if earned[r.Key()] {
			continue
		}
		if r.Satisfied(s) {
			out = append(out, r)
		}
	}
	return out
}

type achievementRuleFile struct {
	Rules []AchievementRule `yaml:"rules"`
}

// LoadAchievementRules reads ACHIEVEMENT_RULES_YAML when set, else the embedded table.
func LoadAchievementRules() ([]AchievementRule, error) {
	var (
		data []byte
		err  error
	)
	if path := strings.TrimSpace(os.Getenv(achievementRulesEnv)); path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = achievementRulesFS.ReadFile("achievements.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("read achievement rules: %w", err)
	}
	return ParseAchievementRules(data)
}

func ParseAchievementRules(data []byte) ([]AchievementRule, error) {
	var file achievementRuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse achievement rules: %w", err)
	}
	seen := map[types.BadgeKey]bool{}
	for i, r := range file.Rules {
		if r.BadgeType == "" || r.Name == "" {
			return nil, fmt.Errorf("achievement rule %d: badge_type and name are required", i)
		}
		switch r.Metric {
		case MetricStreak, MetricStudyMinutes, MetricTasksCompleted, MetricLevel:
		default:
			return nil, fmt.Errorf("achievement rule %d: unknown metric %q", i, r.Metric)
		}
		if seen[r.Key()] {
			return nil, fmt.Errorf("achievement rule %d: duplicate %s/%d", i, r.BadgeType, r.Milestone)
		}
		seen[r.Key()] = true
	}
	return file.Rules, nil
}
