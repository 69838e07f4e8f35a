package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/db"
	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos"
	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/rooms"
	"github.com/SyedHasanCronosPMC/StudySync/internal/observability"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
	"github.com/SyedHasanCronosPMC/StudySync/internal/realtime"
)

// FocusWindow bounds the sessions that feed a room's average focus.
const FocusWindow = 24 * time.Hour

type RoomService interface {
	List(ctx context.Context) ([]*RoomView, error)
	Create(ctx context.Context, in CreateRoomInput) (*RoomView, error)
	Join(ctx context.Context, roomID uuid.UUID) (*JoinResult, error)
	Leave(ctx context.Context, roomID uuid.UUID) (*LeaveResult, error)
	Status(ctx context.Context, roomID uuid.UUID) (*RoomStatus, error)
	UpdateStatus(ctx context.Context, roomID uuid.UUID, status string, currentTask *string) (*ParticipantView, error)
}

// PresenceReader reports who holds a live connection on a channel.
type PresenceReader interface {
	ChannelUsers(channel string) []uuid.UUID
}

type CreateRoomInput struct {
	Name            string
	Description     *string
	Subject         *string
	RoomType        string
	MaxParticipants *int
	SessionDuration *int
	BreakDuration   *int
	AutoStartBreak  bool
}

// RoomView is a room plus the fields derived on every read.
type RoomView struct {
	*types.StudyRoom
	CurrentParticipants int      `json:"current_participants"`
	AverageFocus        *float64 `json:"average_focus"`
}

type ParticipantView struct {
	*types.RoomParticipant
	Profile *types.PublicProfile `json:"profile"`
	Live    bool                 `json:"live"`
}

type JoinResult struct {
	Joined        bool             `json:"joined,omitempty"`
	AlreadyJoined bool             `json:"alreadyJoined,omitempty"`
	Participant   *ParticipantView `json:"participant,omitempty"`
}

type LeaveResult struct {
	Left bool `json:"left"`
}

type RoomStatus struct {
	Room         *RoomView          `json:"room"`
	Participants []*ParticipantView `json:"participants"`
	// LiveUserIDs are users with an open presence stream on this replica.
	LiveUserIDs []uuid.UUID `json:"live_user_ids"`
}

type roomService struct {
	db               *gorm.DB
	log              *logger.Logger
	roomRepo         repos.RoomRepo
	participantRepo  repos.ParticipantRepo
	focusSessionRepo repos.FocusSessionRepo
	profileRepo      repos.ProfileRepo
	emitter          SSEEmitter
	presence         PresenceReader
	cal              Calendar
}

func NewRoomService(
	db *gorm.DB,
	log *logger.Logger,
	roomRepo repos.RoomRepo,
	participantRepo repos.ParticipantRepo,
	focusSessionRepo repos.FocusSessionRepo,
	profileRepo repos.ProfileRepo,
	emitter SSEEmitter,
	presence PresenceReader,
	cal Calendar,
) RoomService {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	return &roomService{
		db:               db,
		log:              log.With("service", "RoomService"),
		roomRepo:         roomRepo,
		participantRepo:  participantRepo,
		focusSessionRepo: focusSessionRepo,
		profileRepo:      profileRepo,
		emitter:          emitter,
		presence:         presence,
		cal:              cal,
	}
}

func (rs *roomService) List(ctx context.Context) ([]*RoomView, error) {
	if _, err := requireCaller(ctx); err != nil {
		return nil, err
	}
	list, err := rs.roomRepo.ListActive(dbctx.Of(ctx))
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rs.decorate(ctx, list)
}

// decorate fills participant counts and the 24h focus average; the two lookups are independent.
func (rs *roomService) decorate(ctx context.Context, list []*types.StudyRoom) ([]*RoomView, error) {
	out := make([]*RoomView, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(list))
	for _, r := range list {
		ids = append(ids, r.ID)
	}

	var (
		counts map[uuid.UUID]int
		focus  map[uuid.UUID]float64
	)
	since := rs.cal.Now().Add(-FocusWindow).UTC()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := rs.participantRepo.CountActiveByRoom(dbctx.Of(gctx), ids)
		if err != nil {
			return fmt.Errorf("count participants: %w", err)
		}
		counts = c
		return nil
	})
	g.Go(func() error {
		f, err := rs.focusSessionRepo.AverageFocusByRoom(dbctx.Of(gctx), ids, since)
		if err != nil {
			return fmt.Errorf("average focus: %w", err)
		}
		focus = f
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range list {
		v := &RoomView{StudyRoom: r, CurrentParticipants: counts[r.ID]}
		if avg, ok := focus[r.ID]; ok {
			rounded := math.Round(avg*10) / 10
			v.AverageFocus = &rounded
		}
		out = append(out, v)
	}
	return out, nil
}

func (rs *roomService) Create(ctx context.Context, in CreateRoomInput) (*RoomView, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.InvalidArgument("Room name is required")
	}
	roomType := strings.TrimSpace(in.RoomType)
	if roomType == "" {
		roomType = rooms.TypeFocus
	}
	if !rooms.ValidRoomType(roomType) {
		return nil, apierr.InvalidArgument("room_type must be one of focus, casual, exam_prep, group_project")
	}
	maxParticipants, err := positiveOr(in.MaxParticipants, rooms.DefaultMaxParticipants, "max_participants")
	if err != nil {
		return nil, err
	}
	session, err := positiveOr(in.SessionDuration, rooms.DefaultSessionMinutes, "session_duration")
	if err != nil {
		return nil, err
	}
	brk, err := positiveOr(in.BreakDuration, rooms.DefaultBreakMinutes, "break_duration")
	if err != nil {
		return nil, err
	}

	now := rs.cal.Now().UTC()
	creator := rd.UserID
	room := &types.StudyRoom{
		Name:            name,
		Description:     trimmedOrNil(in.Description),
		Subject:         trimmedOrNil(in.Subject),
		RoomType:        roomType,
		MaxParticipants: maxParticipants,
		SessionDuration: session,
		BreakDuration:   brk,
		AutoStartBreak:  in.AutoStartBreak,
		IsActive:        true,
		CreatedBy:       &creator,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := rs.roomRepo.Create(dbctx.Of(ctx), room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	rs.log.Info("studyRoom.created", "user_id", rd.UserID.String(), "room_id", room.ID.String())
	return &RoomView{StudyRoom: room}, nil
}

func positiveOr(v *int, def int, field string) (int, error) {
	if v == nil {
		return def, nil
	}
	if *v < 1 {
		return 0, apierr.InvalidArgument("%s must be at least 1", field)
	}
	return *v, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (rs *roomService) Join(ctx context.Context, roomID uuid.UUID) (*JoinResult, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Of(ctx)
	room, err := rs.roomRepo.GetByID(dbc, roomID)
	if err != nil {
		return nil, fmt.Errorf("load room: %w", err)
	}
	if room == nil {
		return nil, apierr.NotFound("Study room is not available")
	}
	if !room.IsActive {
		return nil, apierr.Unavailable("Study room is not available")
	}
	profile, err := ensureProfile(dbc, rs.profileRepo, rs.log, rd)
	if err != nil {
		return nil, err
	}

	// fast path only; the insert below is what actually decides
	existing, err := rs.participantRepo.GetActive(dbc, roomID, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("load participation: %w", err)
	}
	if existing != nil {
		observability.Current().IncRoomJoin("already_joined")
		return &JoinResult{AlreadyJoined: true, Participant: participantView(existing, profile)}, nil
	}

	active, err := rs.participantRepo.CountActive(dbc, roomID)
	if err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	if active >= int64(room.MaxParticipants) {
		observability.Current().IncRoomJoin("full")
		return nil, apierr.CapacityExceeded("Study room is full")
	}

	row := &types.RoomParticipant{
		RoomID:   roomID,
		UserID:   rd.UserID,
		JoinedAt: rs.cal.Now().UTC(),
		Status:   rooms.ParticipantStudying,
	}
	if err := rs.participantRepo.Create(dbc, row); err != nil {
		if db.IsUniqueViolation(err) {
			observability.Current().IncRoomJoin("already_joined")
			return &JoinResult{AlreadyJoined: true}, nil
		}
		return nil, fmt.Errorf("insert participant: %w", err)
	}
	observability.Current().IncRoomJoin("joined")
	rs.log.Info("studyRoom.joined", "user_id", rd.UserID.String(), "room_id", roomID.String())

	view := participantView(row, profile)
	rs.emitter.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.RoomChannel(roomID),
		Event:   realtime.SSEEventParticipantJoined,
		Data:    view,
	})
	return &JoinResult{Joined: true, Participant: view}, nil
}

func (rs *roomService) Leave(ctx context.Context, roomID uuid.UUID) (*LeaveResult, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	n, err := rs.participantRepo.Leave(dbctx.Of(ctx), roomID, rd.UserID, rs.cal.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("leave room: %w", err)
	}
	if n == 0 {
		return &LeaveResult{Left: false}, nil
	}
	rs.log.Info("studyRoom.left", "user_id", rd.UserID.String(), "room_id", roomID.String())
	rs.emitter.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.RoomChannel(roomID),
		Event:   realtime.SSEEventParticipantLeft,
		Data:    map[string]any{"room_id": roomID, "user_id": rd.UserID},
	})
	return &LeaveResult{Left: true}, nil
}

func (rs *roomService) Status(ctx context.Context, roomID uuid.UUID) (*RoomStatus, error) {
	if _, err := requireCaller(ctx); err != nil {
		return nil, err
	}
	dbc := dbctx.Of(ctx)
	room, err := rs.roomRepo.GetByID(dbc, roomID)
	if err != nil {
		return nil, fmt.Errorf("load room: %w", err)
	}
	if room == nil {
		return nil, apierr.NotFound("Study room not found")
	}
	views, err := rs.decorate(ctx, []*types.StudyRoom{room})
	if err != nil {
		return nil, err
	}

	rows, err := rs.participantRepo.ListActive(dbc, roomID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	userIDs := make([]uuid.UUID, 0, len(rows))
	for _, p := range rows {
		userIDs = append(userIDs, p.UserID)
	}
	profiles, err := rs.profileRepo.GetByIDs(dbc, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load participant profiles: %w", err)
	}
	byID := make(map[uuid.UUID]*types.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	live := []uuid.UUID{}
	if rs.presence != nil {
		live = append(live, rs.presence.ChannelUsers(realtime.RoomChannel(roomID))...)
	}
	liveSet := make(map[uuid.UUID]bool, len(live))
	for _, id := range live {
		liveSet[id] = true
	}

	out := &RoomStatus{Room: views[0], Participants: make([]*ParticipantView, 0, len(rows)), LiveUserIDs: live}
	for _, p := range rows {
		v := participantView(p, byID[p.UserID])
		v.Live = liveSet[p.UserID]
		out.Participants = append(out.Participants, v)
	}
	return out, nil
}

func (rs *roomService) UpdateStatus(ctx context.Context, roomID uuid.UUID, status string, currentTask *string) (*ParticipantView, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if !rooms.ValidParticipantStatus(status) {
		return nil, apierr.InvalidArgument("status must be one of studying, break, away, complete")
	}
	updates := map[string]any{"status": status}
	if currentTask != nil {
		updates["current_task"] = trimmedOrNil(currentTask)
	}
	dbc := dbctx.Of(ctx)
	n, err := rs.participantRepo.UpdateActive(dbc, roomID, rd.UserID, updates)
	if err != nil {
		return nil, fmt.Errorf("update participant: %w", err)
	}
	if n == 0 {
		return nil, apierr.NotFound("You are not in this study room")
	}
	row, err := rs.participantRepo.GetActive(dbc, roomID, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("reload participant: %w", err)
	}
	if row == nil {
		return nil, apierr.NotFound("You are not in this study room")
	}
	profile, err := rs.profileRepo.GetByID(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	view := participantView(row, profile)
	rs.emitter.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.RoomChannel(roomID),
		Event:   realtime.SSEEventParticipantStatus,
		Data:    view,
	})
	return view, nil
}

func participantView(p *types.RoomParticipant, profile *types.Profile) *ParticipantView {
	return &ParticipantView{RoomParticipant: p, Profile: profile.Public()}
}
