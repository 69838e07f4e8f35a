package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SyedHasanCronosPMC/StudySync/internal/services"
)

// Services are the collaborators the action handlers call into. Nil
// services leave their actions unregistered.
type Services struct {
	Profile      services.ProfileService
	Habit        services.HabitService
	Achievements services.AchievementService
	Rooms        services.RoomService
	Buddy        services.BuddyService
	Tasks        services.TaskService
	Digest       services.DigestService

	// Location reads zone-less timestamps; nil means UTC.
	Location *time.Location
}

type logSessionPayload struct {
	DurationMinutes int        `json:"duration_minutes" validate:"gt=0,lte=1440"`
	TasksCompleted  int        `json:"tasks_completed" validate:"gte=0,lte=100"`
	FocusScore      *int       `json:"focus_score"`
	TaskID          *uuid.UUID `json:"task_id"`
	TaskStatus      string     `json:"task_status" validate:"omitempty,oneof=pending in_progress completed skipped"`
}

type createRoomPayload struct {
	Name            string `json:"name"`
	RoomType        string `json:"room_type" validate:"omitempty,oneof=focus casual exam_prep group_project"`
	MaxParticipants *int   `json:"max_participants" validate:"omitempty,gte=1"`
	SessionDuration *int   `json:"session_duration" validate:"omitempty,gte=1"`
	BreakDuration   *int   `json:"break_duration" validate:"omitempty,gte=1"`
}

type roomStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=studying break away complete"`
}

type createTaskPayload struct {
	Title            string `json:"title"`
	EstimatedMinutes *int   `json:"estimated_minutes" validate:"omitempty,gte=1"`
}

type taskStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed skipped"`
}

type reorderItem struct {
	Position int    `json:"position" validate:"gte=0"`
	Status   string `json:"status" validate:"omitempty,oneof=pending in_progress completed skipped"`
}

// RegisterAll installs every action backed by svc.
func RegisterAll(r *Registry, svc Services) error {
	table := map[string]Handler{}
	if svc.Profile != nil {
		table["profile.get"] = profileGet(svc.Profile)
		table["profile.update"] = profileUpdate(svc.Profile)
		table["dashboard.load"] = dashboardLoad(svc.Profile)
		table["progress.load"] = progressLoad(svc.Profile)
	}
	if svc.Habit != nil {
		table["habit.logSession"] = habitLogSession(svc.Habit, svc.Location)
		table["habit.summary"] = habitSummary(svc.Habit)
	}
	if svc.Achievements != nil {
		table["achievements.list"] = achievementsList(svc.Achievements)
	}
	if svc.Rooms != nil {
		table["studyRooms.list"] = roomsList(svc.Rooms)
		table["studyRooms.create"] = roomsCreate(svc.Rooms)
		table["studyRooms.join"] = roomsJoin(svc.Rooms)
		table["studyRooms.leave"] = roomsLeave(svc.Rooms)
		table["studyRooms.status"] = roomsStatus(svc.Rooms)
		table["studyRooms.updateStatus"] = roomsUpdateStatus(svc.Rooms)
	}
	if svc.Buddy != nil {
		table["buddy.overview"] = func(ctx context.Context, _ Payload) (any, error) { return svc.Buddy.Overview(ctx) }
		table["buddy.request"] = func(ctx context.Context, _ Payload) (any, error) { return svc.Buddy.Request(ctx) }
		table["buddy.cancel"] = func(ctx context.Context, _ Payload) (any, error) { return svc.Buddy.Cancel(ctx) }
	}
	if svc.Tasks != nil {
		table["tasks.list"] = tasksList(svc.Tasks)
		table["tasks.create"] = tasksCreate(svc.Tasks)
		table["tasks.updateStatus"] = tasksUpdateStatus(svc.Tasks)
		table["tasks.reorder"] = tasksReorder(svc.Tasks)
	}
	if svc.Digest != nil {
		table["digest.generate"] = digestGenerate(svc.Digest)
	}
	for name, h := range table {
		if err := r.Register(name, h); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}
	return nil
}

func profileGet(ps services.ProfileService) Handler {
	return func(ctx context.Context, _ Payload) (any, error) {
		p, err := ps.Ensure(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"profile": p}, nil
	}
}

func profileUpdate(ps services.ProfileService) Handler {
	return func(ctx context.Context, p Payload) (any, error) {
		profile, err := ps.Update(ctx, p)
		if err != nil {
			return nil, err
		}
		return map[string]any{"profile": profile}, nil
	}
}

func dashboardLoad(ps services.ProfileService) Handler {
	return func(ctx context.Context, _ Payload) (any, error) {
		return ps.Dashboard(ctx)
	}
}

func progressLoad(ps services.ProfileService) Handler {
	return func(ctx context.Context, _ Payload) (any, error) {
		rows, err := ps.Progress(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"checkIns": rows}, nil
	}
}

func habitLogSession(hs services.HabitService, loc *time.Location) Handler {
	return func(ctx context.Context, p Payload) (any, error) {
		var in logSessionPayload
		var err error
		if in.DurationMinutes, err = p.Int("duration_minutes", 0); err != nil {
			return nil, err
		}
		if in.TasksCompleted, err = p.Int("tasks_completed", 0); err != nil {
			return nil, err
		}
		if in.FocusScore, err = p.OptionalInt("focus_score"); err != nil {
			return nil, err
		}
		if in.TaskID, err = p.UUID("task_id", "taskId"); err != nil {
			return nil, err
		}
		in.TaskStatus = p.String("task_status")
		if err := check(in); err != nil {
			return nil, err
		}
		roomID, err := p.UUID("room_id", "roomId")
		if err != nil {
			return nil, err
		}
		at, err := p.Time("timestamp", loc)
		if err != nil {
			return nil, err
		}
		return hs.LogSession(ctx, services.LogSessionInput{
			DurationMinutes: in.DurationMinutes,
			TasksCompleted:  in.TasksCompleted,
			FocusScore:      in.FocusScore,
			TaskID:          in.TaskID,
			TaskStatus:      in.TaskStatus,
			RoomID:          roomID,
			Timestamp:       at,
		})
	}
}

func windowDays(p Payload) (int, error) {
	days, err := p.Int("days", services.DefaultSummaryDays)
	if err != nil {
		return 0, err
	}
	return services.ClampSummaryDays(days), nil
}

func habitSummary(hs services.HabitService) Handler {
	return func(ctx context.Context, p Payload) (any, error) {
		days, err := windowDays(p)
		if err != nil {
			return nil, err
		}
		return hs.Summary(ctx, days)
	}
}

func achievementsList(as services.AchievementService) Handler {
	return func(ctx context.Context, _ Payload) (any, error) {
		rows, err := as.List(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"achievements": rows}, nil
	}
}

func roomsList(rs services.RoomService) Handler {
	return func(ctx context.Context, _ Payload) (any, error) {
		rooms, err := rs.List(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"rooms": rooms}, nil
	}
}

func roomsCreate(rs services.RoomService) Handler {
	return func(ctx context.Context, p Payload) (any, error) {
		var in createRoomPayload
		var err error
		in.Name = p.String("name")
		in.RoomType = p.String("room_type")
		if in.MaxParticipants, err = p.OptionalInt("max_participants"); err != nil {
			return nil, err
		}
		if in.SessionDuration, err = p.OptionalInt("session_duration"); err != nil {
			return nil, err
		}
		if in.BreakDuration, err = p.OptionalInt("break_duration"); err != nil {
			return nil, err
		}
		if err := check(in); err != nil {
			return nil, err
		}
		autoBreak, err := p.Bool("auto_start_break")
		if err != nil {
			return nil, err
		}
		room, err := rs.Create(ctx, services.CreateRoomInput{
			Name:            in.Name,
			Description:     p.OptionalString("description"),
			Subject:         p.OptionalString("subject"),
			RoomType:        in.RoomType,
			MaxParticipants: in.MaxParticipants,
			SessionDuration: in.SessionDuration,
			BreakDuration:   in.BreakDuration,
			AutoStartBreak:  autoBreak,
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"room": room}, nil
	}
}

func roomID(p Payload) (uuid.UUID, error) {
	return p.RequiredUUID("roomId", "room_id")
}

func roomsJoin(rs services.RoomService) Handler {
	return func(ctx context.Context, p Payload) (any, error) {
		id, err := roomID(p)
		if err != nil {
			return nil, err
		}
		return rs.Join(ctx, id)
	}
}

func roomsLeave(rs services.RoomService) Handler {
	return func(ctx context.Context, p Payload) (any, error) {
		id, err := roomID(p)
		if err != nil {
			return nil, err
		}
		return rs.Leave(ctx, id)
	}
}

func roomsStatus(rs services.RoomService) Handler {
	return func(ctx context.Context, p Payload) (any, error) {
		id, err := roomID(p)
		if err != nil {
			return nil, err
		}
		return rs.Status(ctx, id)
	}
}

func roomsUpdateStatus(rs services.RoomService) Handler {
	return func(ctx context.Context, p Payload) (any, error) {
		id, err := roomID(p)
		if err != nil {
			return nil, err
		}
		in := roomStatusPayload{Status: p.String("status")}
		if err := check(in); err != nil {
			return nil, err
		}
		participant, err := rs.UpdateStatus(ctx, id, in.Status, p.OptionalString("current_task"))
		if err != nil {
			return nil, err
		}
		return map[string]any{"participant": participant}, nil
	}
}

func tasksList(ts services.TaskService) Handler {
	return func(ctx context.Context, _ Payload) (any, error) {
		rows, err := ts.List(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"tasks": rows}, nil
	}
}

func tasksCreate(ts services.TaskService) Handler {
	return func(ctx context.Context, p Payload) (any, error) {
		var in createTaskPayload
		var err error
		in.Title = p.String("title")
		if in.EstimatedMinutes, err = p.OptionalInt("estimated_minutes"); err != nil {
			return nil, err
		}
		if err := check(in); err != nil {
			return nil, err
		}
		task, err := ts.Create(ctx, services.CreateTaskInput{
			Title:            in.Title,
			Description:      p.OptionalString("description"),
			EstimatedMinutes: in.EstimatedMinutes,
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"task": task}, nil
	}
}

func tasksUpdateStatus(ts services.TaskService) Handler {
	return func(ctx context.Context, p Payload) (any, error) {
		id, err := p.RequiredUUID("task_id", "taskId")
		if err != nil {
			return nil, err
		}
		in := taskStatusPayload{Status: p.String("status")}
		if err := check(in); err != nil {
			return nil, err
		}
		task, err := ts.UpdateStatus(ctx, id, in.Status)
		if err != nil {
			return nil, err
		}
		return map[string]any{"task": task}, nil
	}
}

func tasksReorder(ts services.TaskService) Handler {
	return func(ctx context.Context, p Payload) (any, error) {
		items, err := p.List("updates")
		if err != nil {
			return nil, err
		}
		updates := make([]services.TaskPosition, 0, len(items))
		for _, item := range items {
			id, err := item.RequiredUUID("task_id", "taskId", "id")
			if err != nil {
				return nil, err
			}
			var in reorderItem
			if in.Position, err = item.Int("position", 0); err != nil {
				return nil, err
			}
			in.Status = item.String("status")
			if err := check(in); err != nil {
				return nil, err
			}
			updates = append(updates, services.TaskPosition{TaskID: id, Position: in.Position, Status: in.Status})
		}
		n, err := ts.Reorder(ctx, updates)
		if err != nil {
			return nil, err
		}
		return map[string]any{"updated": n}, nil
	}
}

func digestGenerate(ds services.DigestService) Handler {
	return func(ctx context.Context, p Payload) (any, error) {
		days, err := windowDays(p)
		if err != nil {
			return nil, err
		}
		return ds.Generate(ctx, days)
	}
}
