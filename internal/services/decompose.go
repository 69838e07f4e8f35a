package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos"
	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/tasks"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/llm"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ratelimit"
)

const (
	decomposeScope       = "decompose-task"
	decomposeRateMessage = "Too many decomposition requests. Please slow down and try again shortly."

	defaultChunkMinutes = 25
	maxSubtasks         = 5
)

type DecomposeService interface {
	Decompose(ctx context.Context, in DecomposeInput) (*DecomposeResult, error)
}

type DecomposeInput struct {
	TaskInput         string
	Conditions        []string
	PreferredDuration int
}

// Subtask is one step of a generated plan, in the shape the model is asked to return.
type Subtask struct {
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes"`
	Tips            string `json:"tips"`
}

type DecomposeResult struct {
	ParentTask *types.Task   `json:"parentTask"`
	Subtasks   []*types.Task `json:"subtasks"`
	Plan       []Subtask     `json:"plan"`
	Generated  bool          `json:"generated"`
}

type decomposeService struct {
	db       *gorm.DB
	log      *logger.Logger
	taskRepo repos.TaskRepo
	gen      llm.TextGenerator
	limiter  ratelimit.Limiter
	policy   ratelimit.Policy
}

func NewDecomposeService(
	db *gorm.DB,
	log *logger.Logger,
	taskRepo repos.TaskRepo,
	gen llm.TextGenerator,
	limiter ratelimit.Limiter,
	policy ratelimit.Policy,
) DecomposeService {
	return &decomposeService{
		db:       db,
		log:      log.With("service", "DecomposeService"),
		taskRepo: taskRepo,
		gen:      gen,
		limiter:  limiter,
		policy:   policy,
	}
}

func (ds *decomposeService) Decompose(ctx context.Context, in DecomposeInput) (*DecomposeResult, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := ratelimit.Enforce(ctx, ds.limiter, ds.log, decomposeScope, rd.UserID.String(), ds.policy, decomposeRateMessage); err != nil {
		return nil, err
	}
	input := strings.TrimSpace(in.TaskInput)
	if input == "" {
		return nil, apierr.InvalidArgument("Missing task_input")
	}
	chunk := in.PreferredDuration
	if chunk <= 0 {
		chunk = defaultChunkMinutes
	}

	plan, generated := ds.plan(ctx, input, in.Conditions, chunk)
	raw, err := json.Marshal(plan)
	if err != nil {
		return nil, err
	}

	out := &DecomposeResult{Plan: plan, Generated: generated}
	err = ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		original := input
		parent := &types.Task{
			UserID:                rd.UserID,
			Title:                 input,
			OriginalInput:         &original,
			IsDecomposed:          true,
			DecompositionPrompt:   &original,
			DecompositionResponse: datatypes.JSON(raw),
			Status:                tasks.StatusPending,
		}
		if _, err := ds.taskRepo.Create(dbc, []*types.Task{parent}); err != nil {
			return fmt.Errorf("insert parent task: %w", err)
		}
		out.ParentTask = parent

		children := make([]*types.Task, 0, len(plan))
		for idx, st := range plan {
			minutes := st.DurationMinutes
			children = append(children, &types.Task{
				UserID:           rd.UserID,
				ParentTaskID:     &parent.ID,
				Title:            st.Title,
				Description:      trimmedOrNil(&st.Tips),
				EstimatedMinutes: &minutes,
				Position:         idx,
				Status:           tasks.StatusPending,
			})
		}
		created, err := ds.taskRepo.Create(dbc, children)
		if err != nil {
			return fmt.Errorf("insert subtasks: %w", err)
		}
		out.Subtasks = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	ds.log.Info("task.decomposed",
		"user_id", rd.UserID.String(),
		"task_id", out.ParentTask.ID.String(),
		"subtask_count", len(out.Subtasks),
		"generated", generated,
	)
	return out, nil
}

func (ds *decomposeService) plan(ctx context.Context, input string, conditions []string, chunk int) ([]Subtask, bool) {
	req := decomposePrompt(input, conditions, chunk)
	text, ok := generateOrFallback(ctx, ds.gen, ds.log, req, "")
	if !ok {
		return FallbackPlan(input, chunk), false
	}
	plan, err := ParseSubtasks(text, chunk)
	if err != nil {
		ds.log.Warn("unparseable decomposition; using fallback plan", "error", err)
		return FallbackPlan(input, chunk), false
	}
	return plan, true
}

func decomposePrompt(input string, conditions []string, chunk int) llm.Request {
	cleaned := make([]string, 0, len(conditions))
	for _, c := range conditions {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	conditionsText := "general learning challenges"
	if len(cleaned) > 0 {
		conditionsText = strings.Join(cleaned, ", ")
	}
	system := fmt.Sprintf(`You are helping a student with %s break down a task into manageable chunks.

Rules:
- Each subtask should be %d minutes or less
- Use clear, action-oriented language (start with verbs: "Read", "Write", "Review")
- Consider executive function challenges: make the first step incredibly easy to reduce friction
- Break down into 3-5 subtasks maximum
- Be specific and concrete (avoid vague tasks)
- Include time estimates that are realistic

Return ONLY a JSON array with this exact structure:
[
  {
    "title": "Clear, specific task description",
    "duration_minutes": 15,
    "tips": "One helpful tip for completing this task"
  }
]

IMPORTANT: Return ONLY the JSON array, no other text or markdown.`, conditionsText, chunk)
	return llm.Request{
		System:      system,
		Prompt:      fmt.Sprintf("Break down this task: %q", input),
		MaxTokens:   500,
		Temperature: llm.Float(0.6),
	}
}

// ParseSubtasks reads the model's JSON array. Items without a title are
// dropped, durations are bounded to [1, chunk] and at most five steps are kept.
func ParseSubtasks(text string, chunk int) ([]Subtask, error) {
	var raw []Subtask
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &raw); err != nil {
		return nil, fmt.Errorf("decode subtasks: %w", err)
	}
	out := make([]Subtask, 0, len(raw))
	for _, st := range raw {
		st.Title = strings.TrimSpace(st.Title)
		if st.Title == "" {
			continue
		}
		st.Tips = strings.TrimSpace(st.Tips)
		if st.DurationMinutes <= 0 || st.DurationMinutes > chunk {
			st.DurationMinutes = chunk
		}
		out = append(out, st)
		if len(out) == maxSubtasks {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("decode subtasks: no usable steps")
	}
	return out, nil
}

// FallbackPlan is the three-step plan used when no model output is available.
func FallbackPlan(input string, chunk int) []Subtask {
	short := 5
	if chunk < short {
		short = chunk
	}
	wrap := 10
	if chunk < wrap {
		wrap = chunk
	}
	return []Subtask{
		{
			Title:           "Gather what you need for: " + input,
			DurationMinutes: short,
			Tips:            "Open the materials and clear one spot to work. That is the whole step.",
		},
		{
			Title:           "Work on the first part of: " + input,
			DurationMinutes: chunk,
			Tips:            "Set a timer and stop when it rings, even if you are mid-thought.",
		},
		{
			Title:           "Review and note the next step for: " + input,
			DurationMinutes: wrap,
			Tips:            "Write one sentence about where to pick up next time.",
		},
	}
}
