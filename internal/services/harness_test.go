package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos"
	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos/testutil"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/clock"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ctxutil"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/llm"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ratelimit"
	"github.com/SyedHasanCronosPMC/StudySync/internal/realtime"
)

var testStart = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeGenerator struct {
	mu    sync.Mutex
	text  string
	err   error
	calls []llm.Request
}

func (g *fakeGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	return g.text, g.err
}

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func (e *recordingEmitter) Events() []realtime.SSEEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]realtime.SSEEvent, 0, len(e.msgs))
	for _, m := range e.msgs {
		out = append(out, m.Event)
	}
	return out
}

type fakePresence map[string][]uuid.UUID

func (p fakePresence) ChannelUsers(channel string) []uuid.UUID { return p[channel] }

type harness struct {
	db       *gorm.DB
	clk      *clock.Fake
	cal      Calendar
	gen      *fakeGenerator
	emitter  *recordingEmitter
	presence fakePresence
	limiter  *ratelimit.Memory

	profiles     ProfileService
	achievements AchievementService
	habits       HabitService
	rooms        RoomService
	buddies      BuddyService
	tasks        TaskService
	checkIns     CheckInService
	decompose    DecomposeService
	digest       DigestService

	participantRepo repos.ParticipantRepo
}

var generousPolicy = ratelimit.Policy{Max: 1000, Window: time.Minute}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessIn(t, time.UTC)
}

// newHarnessIn builds a harness whose calendar days follow loc.
func newHarnessIn(t *testing.T, loc *time.Location) *harness {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	clk := clock.NewFake(testStart)
	cal := NewCalendar(clk, loc)

	rules, err := LoadAchievementRules()
	if err != nil {
		t.Fatalf("LoadAchievementRules: %v", err)
	}

	profileRepo := repos.NewProfileRepo(gdb, log)
	checkInRepo := repos.NewCheckInRepo(gdb, log)
	achievementRepo := repos.NewAchievementRepo(gdb, log)
	focusRepo := repos.NewFocusSessionRepo(gdb, log)
	taskRepo := repos.NewTaskRepo(gdb, log)
	roomRepo := repos.NewRoomRepo(gdb, log)
	participantRepo := repos.NewParticipantRepo(gdb, log)
	matchRepo := repos.NewMatchRepo(gdb, log)

	h := &harness{
		db:              gdb,
		clk:             clk,
		cal:             cal,
		gen:             &fakeGenerator{err: llm.ErrNotConfigured},
		emitter:         &recordingEmitter{},
		presence:        fakePresence{},
		limiter:         ratelimit.NewMemory(clk),
		participantRepo: participantRepo,
	}
	h.profiles = NewProfileService(gdb, log, profileRepo, checkInRepo, cal)
	h.achievements = NewAchievementService(gdb, log, achievementRepo, rules, cal)
	h.habits = NewHabitService(gdb, log, profileRepo, checkInRepo, taskRepo, focusRepo, participantRepo, h.achievements, cal)
	h.rooms = NewRoomService(gdb, log, roomRepo, participantRepo, focusRepo, profileRepo, h.emitter, h.presence, cal)
	h.buddies = NewBuddyService(gdb, log, matchRepo, profileRepo, cal)
	h.tasks = NewTaskService(gdb, log, taskRepo, cal)
	h.checkIns = NewCheckInService(gdb, log, profileRepo, checkInRepo, h.achievements, h.gen, h.limiter, generousPolicy, cal)
	h.decompose = NewDecomposeService(gdb, log, taskRepo, h.gen, h.limiter, generousPolicy)
	h.digest = NewDigestService(log, h.habits, h.gen, h.limiter, generousPolicy)
	return h
}

// as returns a context authenticated as a fresh user.
func (h *harness) as(t *testing.T, email string) (context.Context, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: id, Email: email}), id
}

func intp(v int) *int { return &v }

func strp(s string) *string { return &s }

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("want %s error, got nil", code)
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != code {
		t.Fatalf("want %s error, got %v", code, err)
	}
}
