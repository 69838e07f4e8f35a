package habit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type FocusSessionRepo interface {
	Create(dbc dbctx.Context, fs *types.FocusSession) error
	// AverageFocusByRoom averages non-null focus scores logged since the cutoff.
	AverageFocusByRoom(dbc dbctx.Context, roomIDs []uuid.UUID, since time.Time) (map[uuid.UUID]float64, error)
}

type focusSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFocusSessionRepo(db *gorm.DB, baseLog *logger.Logger) FocusSessionRepo {
	return &focusSessionRepo{db: db, log: baseLog.With("repo", "FocusSessionRepo")}
}

func (r *focusSessionRepo) Create(dbc dbctx.Context, fs *types.FocusSession) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if fs.CreatedAt.IsZero() {
		fs.CreatedAt = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).Create(fs).Error
}

func (r *focusSessionRepo) AverageFocusByRoom(dbc dbctx.Context, roomIDs []uuid.UUID, since time.Time) (map[uuid.UUID]float64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := map[uuid.UUID]float64{}
	if len(roomIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		RoomID   uuid.UUID
		AvgFocus float64
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.FocusSession{}).
		Select("room_id, CAST(AVG(focus_score) AS DOUBLE PRECISION) AS avg_focus").
		Where("room_id IN ? AND logged_at >= ? AND focus_score IS NOT NULL", roomIDs, since.UTC()).
		Group("room_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.RoomID] = row.AvgFocus
	}
	return out, nil
}
