package buddy

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/buddy"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type MatchRepo interface {
	// ListForUser returns every row where userID is requester or buddy, newest first.
	ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.BuddyMatch, error)
	ListOpenForUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.BuddyMatch, error)
	// Candidates returns unmatched pending rows owned by other users, oldest first.
	Candidates(dbc dbctx.Context, excludeUserID uuid.UUID, limit int) ([]*types.BuddyMatch, error)
	// Claim pairs buddyID onto a pending row only if it is still unmatched.
	Claim(dbc dbctx.Context, matchID, buddyID uuid.UUID, score int, reasons datatypes.JSON, at time.Time) (bool, error)
	Create(dbc dbctx.Context, m *types.BuddyMatch) error
	Delete(dbc dbctx.Context, matchID uuid.UUID) error
	SetStatus(dbc dbctx.Context, matchIDs []uuid.UUID, status string) error
}

type matchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMatchRepo(db *gorm.DB, baseLog *logger.Logger) MatchRepo {
	return &matchRepo{db: db, log: baseLog.With("repo", "MatchRepo")}
}

func (r *matchRepo) ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.BuddyMatch, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.BuddyMatch
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? OR buddy_id = ?", userID, userID).
		Order("matched_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *matchRepo) ListOpenForUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.BuddyMatch, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.BuddyMatch
	if err := t.WithContext(dbc.Ctx).
		Where("(user_id = ? OR buddy_id = ?) AND status IN ?", userID, userID, []string{buddy.StatusPending, buddy.StatusActive}).
		Order("matched_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *matchRepo) Candidates(dbc dbctx.Context, excludeUserID uuid.UUID, limit int) ([]*types.BuddyMatch, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 5
	}
	var rows []*types.BuddyMatch
	if err := t.WithContext(dbc.Ctx).
		Where("status = ? AND buddy_id IS NULL AND user_id <> ?", buddy.StatusPending, excludeUserID).
		Order("matched_at ASC").
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *matchRepo) Claim(dbc dbctx.Context, matchID, buddyID uuid.UUID, score int, reasons datatypes.JSON, at time.Time) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.BuddyMatch{}).
		Where("id = ? AND status = ? AND buddy_id IS NULL", matchID, buddy.StatusPending).
		UpdateColumns(map[string]any{
			"buddy_id":            buddyID,
			"status":              buddy.StatusActive,
			"matched_at":          at.UTC(),
			"compatibility_score": score,
			"match_reasons":       reasons,
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *matchRepo) Create(dbc dbctx.Context, m *types.BuddyMatch) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	return t.WithContext(dbc.Ctx).Create(m).Error
}

func (r *matchRepo) Delete(dbc dbctx.Context, matchID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", matchID).Delete(&types.BuddyMatch{}).Error
}

func (r *matchRepo) SetStatus(dbc dbctx.Context, matchIDs []uuid.UUID, status string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(matchIDs) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.BuddyMatch{}).
		Where("id IN ?", matchIDs).
		UpdateColumns(map[string]any{"status": status, "updated_at": time.Now().UTC()}).Error
}
