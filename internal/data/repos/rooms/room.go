package rooms

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type RoomRepo interface {
	Create(dbc dbctx.Context, room *types.StudyRoom) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.StudyRoom, error)
	GetByName(dbc dbctx.Context, name string) (*types.StudyRoom, error)
	ListActive(dbc dbctx.Context) ([]*types.StudyRoom, error)
}

type roomRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoomRepo(db *gorm.DB, baseLog *logger.Logger) RoomRepo {
	return &roomRepo{db: db, log: baseLog.With("repo", "RoomRepo")}
}

func (r *roomRepo) Create(dbc dbctx.Context, room *types.StudyRoom) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now
	return t.WithContext(dbc.Ctx).Create(room).Error
}

func (r *roomRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.StudyRoom, error) {
	return r.first(dbc, "id = ?", id)
}

func (r *roomRepo) GetByName(dbc dbctx.Context, name string) (*types.StudyRoom, error) {
	return r.first(dbc, "name = ?", name)
}

func (r *roomRepo) first(dbc dbctx.Context, query string, args ...any) (*types.StudyRoom, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.StudyRoom
	if err := t.WithContext(dbc.Ctx).Where(query, args...).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *roomRepo) ListActive(dbc dbctx.Context) ([]*types.StudyRoom, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.StudyRoom
	if err := t.WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
