package actions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
	"github.com/SyedHasanCronosPMC/StudySync/internal/services"
)

type fakeHabits struct {
	logged *services.LogSessionInput
	days   int
}

func (f *fakeHabits) LogSession(ctx context.Context, in services.LogSessionInput) (*services.SessionResult, error) {
	f.logged = &in
	return &services.SessionResult{}, nil
}

func (f *fakeHabits) Summary(ctx context.Context, days int) (*services.HabitSummary, error) {
	f.days = days
	return &services.HabitSummary{Window: days}, nil
}

type fakeRooms struct {
	joined  uuid.UUID
	status  string
	task    *string
	created *services.CreateRoomInput
}

func (f *fakeRooms) List(ctx context.Context) ([]*services.RoomView, error) { return nil, nil }

func (f *fakeRooms) Create(ctx context.Context, in services.CreateRoomInput) (*services.RoomView, error) {
	f.created = &in
	return &services.RoomView{}, nil
}

func (f *fakeRooms) Join(ctx context.Context, id uuid.UUID) (*services.JoinResult, error) {
	f.joined = id
	return &services.JoinResult{}, nil
}

func (f *fakeRooms) Leave(ctx context.Context, id uuid.UUID) (*services.LeaveResult, error) {
	return &services.LeaveResult{}, nil
}

func (f *fakeRooms) Status(ctx context.Context, id uuid.UUID) (*services.RoomStatus, error) {
	return nil, apierr.NotFound("Room not found")
}

func (f *fakeRooms) UpdateStatus(ctx context.Context, id uuid.UUID, status string, task *string) (*services.ParticipantView, error) {
	f.status, f.task = status, task
	return &services.ParticipantView{}, nil
}

type fakeTasks struct {
	reordered []services.TaskPosition
}

func (f *fakeTasks) List(ctx context.Context) ([]*types.Task, error) { return []*types.Task{}, nil }

func (f *fakeTasks) Create(ctx context.Context, in services.CreateTaskInput) (*types.Task, error) {
	return &types.Task{Title: in.Title}, nil
}

func (f *fakeTasks) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*types.Task, error) {
	return &types.Task{ID: id, Status: status}, nil
}

func (f *fakeTasks) Reorder(ctx context.Context, updates []services.TaskPosition) (int, error) {
	f.reordered = updates
	return len(updates), nil
}

func newTestRegistry(t *testing.T, svc Services) *Registry {
	t.Helper()
	reg := NewRegistry(logger.Nop())
	if err := RegisterAll(reg, svc); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	return reg
}

func TestRegisterAllSkipsMissingServices(t *testing.T) {
	reg := newTestRegistry(t, Services{Habit: &fakeHabits{}})
	names := reg.Names()
	if len(names) != 2 || names[0] != "habit.logSession" || names[1] != "habit.summary" {
		t.Fatalf("Names = %v", names)
	}
}

func TestHabitActions(t *testing.T) {
	habits := &fakeHabits{}
	reg := newTestRegistry(t, Services{Habit: habits})
	roomID := uuid.New()

	_, _, err := reg.Dispatch(t.Context(), "habit.logSession", Payload{
		"duration_minutes": float64(25),
		"focus_score":      "8",
		"roomId":           roomID.String(),
		"timestamp":        "2025-03-10T09:00:00Z",
	})
	if err != nil {
		t.Fatalf("logSession: %v", err)
	}
	in := habits.logged
	if in.DurationMinutes != 25 || in.FocusScore == nil || *in.FocusScore != 8 {
		t.Fatalf("unexpected input %+v", in)
	}
	if in.RoomID == nil || *in.RoomID != roomID || in.Timestamp == nil {
		t.Fatalf("room or timestamp not forwarded: %+v", in)
	}

	for _, bad := range []Payload{
		{"duration_minutes": float64(0)},
		{"duration_minutes": float64(1441)},
		{"duration_minutes": float64(5e18)},
		{"duration_minutes": float64(25), "tasks_completed": float64(101)},
	} {
		if _, _, err := reg.Dispatch(t.Context(), "habit.logSession", bad); apierr.CodeOf(err) != apierr.CodeInvalidArgument {
			t.Fatalf("%v: expected invalid argument, got %v", bad, err)
		}
	}

	if _, _, err := reg.Dispatch(t.Context(), "habit.summary", nil); err != nil || habits.days != services.DefaultSummaryDays {
		t.Fatalf("summary default: days=%d err=%v", habits.days, err)
	}
	if _, _, err := reg.Dispatch(t.Context(), "habit.summary", Payload{"days": float64(90)}); err != nil || habits.days != services.MaxSummaryDays {
		t.Fatalf("summary clamp: days=%d err=%v", habits.days, err)
	}
}

func TestLogSessionDateOnlyTimestampUsesLocation(t *testing.T) {
	habits := &fakeHabits{}
	west := time.FixedZone("PST", -8*60*60)
	reg := newTestRegistry(t, Services{Habit: habits, Location: west})

	if _, _, err := reg.Dispatch(t.Context(), "habit.logSession", Payload{
		"duration_minutes": float64(20),
		"timestamp":        "2025-03-10",
	}); err != nil {
		t.Fatalf("logSession: %v", err)
	}
	ts := habits.logged.Timestamp
	if ts == nil || ts.In(west).Format("2006-01-02") != "2025-03-10" {
		t.Fatalf("timestamp filed on the wrong day: %v", ts)
	}
}

func TestRoomActions(t *testing.T) {
	rooms := &fakeRooms{}
	reg := newTestRegistry(t, Services{Rooms: rooms})
	id := uuid.New()

	if _, _, err := reg.Dispatch(t.Context(), "studyRooms.join", Payload{"room_id": id.String()}); err != nil || rooms.joined != id {
		t.Fatalf("join: joined=%v err=%v", rooms.joined, err)
	}
	if _, _, err := reg.Dispatch(t.Context(), "studyRooms.join", Payload{}); apierr.CodeOf(err) != apierr.CodeInvalidArgument {
		t.Fatalf("join without id: %v", err)
	}
	if _, _, err := reg.Dispatch(t.Context(), "studyRooms.status", Payload{"roomId": id.String()}); apierr.CodeOf(err) != apierr.CodeNotFound {
		t.Fatalf("status: expected not found, got %v", err)
	}

	_, _, err := reg.Dispatch(t.Context(), "studyRooms.updateStatus", Payload{
		"roomId":       id.String(),
		"status":       "break",
		"current_task": "Flashcards",
	})
	if err != nil || rooms.status != "break" || rooms.task == nil || *rooms.task != "Flashcards" {
		t.Fatalf("updateStatus: status=%q task=%v err=%v", rooms.status, rooms.task, err)
	}
	_, _, err = reg.Dispatch(t.Context(), "studyRooms.updateStatus", Payload{"roomId": id.String(), "status": "napping"})
	if apierr.CodeOf(err) != apierr.CodeInvalidArgument {
		t.Fatalf("expected invalid status to fail, got %v", err)
	}

	_, _, err = reg.Dispatch(t.Context(), "studyRooms.create", Payload{
		"name":             "Night owls",
		"max_participants": float64(4),
		"auto_start_break": true,
	})
	if err != nil || rooms.created == nil || *rooms.created.MaxParticipants != 4 || !rooms.created.AutoStartBreak {
		t.Fatalf("create: %+v %v", rooms.created, err)
	}
}

func TestTaskReorderAction(t *testing.T) {
	tasks := &fakeTasks{}
	reg := newTestRegistry(t, Services{Tasks: tasks})
	a, b := uuid.New(), uuid.New()

	data, _, err := reg.Dispatch(t.Context(), "tasks.reorder", Payload{"updates": []any{
		map[string]any{"task_id": a.String(), "position": float64(1)},
		map[string]any{"id": b.String(), "position": float64(0), "status": "in_progress"},
	}})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if got := data.(map[string]any)["updated"]; got != 2 {
		t.Fatalf("updated = %v", got)
	}
	if tasks.reordered[0].TaskID != a || tasks.reordered[1].Status != "in_progress" {
		t.Fatalf("unexpected updates %+v", tasks.reordered)
	}

	_, _, err = reg.Dispatch(t.Context(), "tasks.reorder", Payload{"updates": "nope"})
	if apierr.CodeOf(err) != apierr.CodeInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}
