package rooms

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/rooms"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type ParticipantRepo interface {
	GetActive(dbc dbctx.Context, roomID, userID uuid.UUID) (*types.RoomParticipant, error)
	CountActive(dbc dbctx.Context, roomID uuid.UUID) (int64, error)
	CountActiveByRoom(dbc dbctx.Context, roomIDs []uuid.UUID) (map[uuid.UUID]int, error)
	ListActive(dbc dbctx.Context, roomID uuid.UUID) ([]*types.RoomParticipant, error)
	// Create inserts an active row; the partial unique index rejects a second one.
	Create(dbc dbctx.Context, p *types.RoomParticipant) error
	// Leave closes the caller's active row; zero rows means there was none.
	Leave(dbc dbctx.Context, roomID, userID uuid.UUID, at time.Time) (int64, error)
	UpdateActive(dbc dbctx.Context, roomID, userID uuid.UUID, updates map[string]any) (int64, error)
	AddStudyMinutes(dbc dbctx.Context, roomID, userID uuid.UUID, minutes int) (int64, error)
}

type participantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewParticipantRepo(db *gorm.DB, baseLog *logger.Logger) ParticipantRepo {
	return &participantRepo{db: db, log: baseLog.With("repo", "ParticipantRepo")}
}

func (r *participantRepo) GetActive(dbc dbctx.Context, roomID, userID uuid.UUID) (*types.RoomParticipant, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.RoomParticipant
	if err := t.WithContext(dbc.Ctx).
		Where("room_id = ? AND user_id = ? AND left_at IS NULL", roomID, userID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *participantRepo) CountActive(dbc dbctx.Context, roomID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	err := t.WithContext(dbc.Ctx).
		Model(&types.RoomParticipant{}).
		Where("room_id = ? AND left_at IS NULL", roomID).
		Count(&count).Error
	return count, err
}

func (r *participantRepo) CountActiveByRoom(dbc dbctx.Context, roomIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := map[uuid.UUID]int{}
	if len(roomIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		RoomID uuid.UUID
		Total  int
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.RoomParticipant{}).
		Select("room_id, COUNT(*) AS total").
		Where("room_id IN ? AND left_at IS NULL", roomIDs).
		Group("room_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.RoomID] = row.Total
	}
	return out, nil
}

func (r *participantRepo) ListActive(dbc dbctx.Context, roomID uuid.UUID) ([]*types.RoomParticipant, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.RoomParticipant
	if err := t.WithContext(dbc.Ctx).
		Where("room_id = ? AND left_at IS NULL", roomID).
		Order("joined_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *participantRepo) Create(dbc dbctx.Context, p *types.RoomParticipant) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).Create(p).Error
}

func (r *participantRepo) Leave(dbc dbctx.Context, roomID, userID uuid.UUID, at time.Time) (int64, error) {
	return r.UpdateActive(dbc, roomID, userID, map[string]any{
		"left_at": at.UTC(),
		"status":  rooms.ParticipantAway,
	})
}

func (r *participantRepo) UpdateActive(dbc dbctx.Context, roomID, userID uuid.UUID, updates map[string]any) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.RoomParticipant{}).
		Where("room_id = ? AND user_id = ? AND left_at IS NULL", roomID, userID).
		UpdateColumns(updates)
	return res.RowsAffected, res.Error
}

func (r *participantRepo) AddStudyMinutes(dbc dbctx.Context, roomID, userID uuid.UUID, minutes int) (int64, error) {
	if minutes <= 0 {
		return 0, nil
	}
	return r.UpdateActive(dbc, roomID, userID, map[string]any{
		"study_minutes": gorm.Expr("study_minutes + ?", minutes),
	})
}
