package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos"
	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/buddy"
	"github.com/SyedHasanCronosPMC/StudySync/internal/observability"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

// candidateBatch is how many queued requests one buddy.request will try to claim.
const candidateBatch = 5

type BuddyService interface {
	Overview(ctx context.Context) (*BuddyOverview, error)
	Request(ctx context.Context) (*BuddyOverview, error)
	Cancel(ctx context.Context) (*BuddyOverview, error)
}

// BuddyEntry is a match seen from one side: BuddyID is always the other user.
type BuddyEntry struct {
	ID                 uuid.UUID            `json:"id"`
	Status             string               `json:"status"`
	MatchedAt          time.Time            `json:"matched_at"`
	CompatibilityScore *int                 `json:"compatibility_score"`
	MatchReasons       []string             `json:"match_reasons"`
	BuddyID            *uuid.UUID           `json:"buddy_id"`
	BuddyProfile       *types.PublicProfile `json:"buddy_profile"`
}

type BuddyOverview struct {
	Pending *BuddyEntry   `json:"pending"`
	Active  *BuddyEntry   `json:"active"`
	History []*BuddyEntry `json:"history"`
}

type buddyService struct {
	db          *gorm.DB
	log         *logger.Logger
	matchRepo   repos.MatchRepo
	profileRepo repos.ProfileRepo
	cal         Calendar
}

func NewBuddyService(db *gorm.DB, log *logger.Logger, matchRepo repos.MatchRepo, profileRepo repos.ProfileRepo, cal Calendar) BuddyService {
	return &buddyService{
		db:          db,
		log:         log.With("service", "BuddyService"),
		matchRepo:   matchRepo,
		profileRepo: profileRepo,
		cal:         cal,
	}
}

func (bs *buddyService) Overview(ctx context.Context) (*BuddyOverview, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	return bs.overview(dbctx.Of(ctx), rd.UserID)
}

func (bs *buddyService) overview(dbc dbctx.Context, me uuid.UUID) (*BuddyOverview, error) {
	rows, err := bs.matchRepo.ListForUser(dbc, me)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	ids := []uuid.UUID{}
	for _, m := range rows {
		if other := m.Counterpart(me); other != nil {
			ids = append(ids, *other)
		}
	}
	profiles, err := bs.profileRepo.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load buddy profiles: %w", err)
	}
	byID := make(map[uuid.UUID]*types.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	out := &BuddyOverview{History: []*BuddyEntry{}}
	for _, m := range rows {
		entry := buddyEntry(m, me, byID)
		switch m.Status {
		case buddy.StatusPending:
			if out.Pending == nil && m.UserID == me && m.BuddyID == nil {
				out.Pending = entry
			}
		case buddy.StatusActive:
			if out.Active == nil {
				out.Active = entry
			}
		default:
			out.History = append(out.History, entry)
		}
	}
	return out, nil
}

func buddyEntry(m *types.BuddyMatch, me uuid.UUID, profiles map[uuid.UUID]*types.Profile) *BuddyEntry {
	e := &BuddyEntry{
		ID:                 m.ID,
		Status:             m.Status,
		MatchedAt:          m.MatchedAt,
		CompatibilityScore: m.CompatibilityScore,
		MatchReasons:       []string{},
		BuddyID:            m.Counterpart(me),
	}
	if len(m.MatchReasons) > 0 {
		_ = json.Unmarshal(m.MatchReasons, &e.MatchReasons)
		if e.MatchReasons == nil {
			e.MatchReasons = []string{}
		}
	}
	if e.BuddyID != nil {
		e.BuddyProfile = profiles[*e.BuddyID].Public()
	}
	return e
}

func (bs *buddyService) Request(ctx context.Context) (*BuddyOverview, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Of(ctx)
	me, err := ensureProfile(dbc, bs.profileRepo, bs.log, rd)
	if err != nil {
		return nil, err
	}

	open, err := bs.matchRepo.ListOpenForUser(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("load open matches: %w", err)
	}
	if len(open) > 0 {
		observability.Current().IncBuddyRequest("existing")
		return bs.overview(dbc, rd.UserID)
	}

	candidates, err := bs.matchRepo.Candidates(dbc, rd.UserID, candidateBatch)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	if len(candidates) > 0 {
		ownerIDs := make([]uuid.UUID, 0, len(candidates))
		for _, c := range candidates {
			ownerIDs = append(ownerIDs, c.UserID)
		}
		owners, err := bs.profileRepo.GetByIDs(dbc, ownerIDs)
		if err != nil {
			return nil, fmt.Errorf("load candidate profiles: %w", err)
		}
		byID := make(map[uuid.UUID]*types.Profile, len(owners))
		for _, p := range owners {
			byID[p.ID] = p
		}

		// oldest first; a lost claim means someone else got that row, so try the next one
		for _, c := range candidates {
			score, reasons := Compatibility(me, byID[c.UserID])
			raw, err := json.Marshal(reasons)
			if err != nil {
				return nil, err
			}
			claimed, err := bs.matchRepo.Claim(dbc, c.ID, rd.UserID, score, datatypes.JSON(raw), bs.cal.Now())
			if err != nil {
				return nil, fmt.Errorf("claim match: %w", err)
			}
			if claimed {
				observability.Current().IncBuddyRequest("matched")
				bs.log.Info("buddy.matched", "user_id", rd.UserID.String(), "buddy_id", c.UserID.String(), "match_id", c.ID.String(), "score", score)
				return bs.overview(dbc, rd.UserID)
			}
		}
	}

	row := &types.BuddyMatch{
		UserID:       rd.UserID,
		Status:       buddy.StatusPending,
		MatchedAt:    bs.cal.Now().UTC(),
		MatchReasons: datatypes.JSON([]byte("[]")),
	}
	if err := bs.matchRepo.Create(dbc, row); err != nil {
		return nil, fmt.Errorf("queue buddy request: %w", err)
	}
	observability.Current().IncBuddyRequest("pending")
	bs.log.Info("buddy.requested", "user_id", rd.UserID.String(), "match_id", row.ID.String())
	return bs.overview(dbc, rd.UserID)
}

func (bs *buddyService) Cancel(ctx context.Context) (*BuddyOverview, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	err = bs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		open, err := bs.matchRepo.ListOpenForUser(dbc, rd.UserID)
		if err != nil {
			return fmt.Errorf("load open matches: %w", err)
		}
		var ended []uuid.UUID
		for _, m := range open {
			if m.UserID == rd.UserID && m.BuddyID == nil && m.Status == buddy.StatusPending {
				if err := bs.matchRepo.Delete(dbc, m.ID); err != nil {
					return fmt.Errorf("delete pending request: %w", err)
				}
				continue
			}
			ended = append(ended, m.ID)
		}
		if len(ended) > 0 {
			if err := bs.matchRepo.SetStatus(dbc, ended, buddy.StatusEnded); err != nil {
				return fmt.Errorf("end matches: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.Current().IncBuddyRequest("cancelled")
	bs.log.Info("buddy.cancelled", "user_id", rd.UserID.String())
	return bs.overview(dbctx.Of(ctx), rd.UserID)
}

// Compatibility scores a pairing out of 100 and explains the score.
func Compatibility(a, b *types.Profile) (int, []string) {
	score := 50
	reasons := []string{}
	if a == nil || b == nil {
		return score, []string{"Ready to study together"}
	}

	shared := []string{}
	for _, f := range []struct {
		label string
		a, b  bool
	}{
		{"ADHD", a.HasADHD, b.HasADHD},
		{"dyslexia", a.HasDyslexia, b.HasDyslexia},
		{"anxiety", a.HasAnxiety, b.HasAnxiety},
		{"autism", a.HasAutism, b.HasAutism},
	} {
		if f.a && f.b {
			shared = append(shared, f.label)
		}
	}
	if len(shared) > 0 {
		score += 10 * len(shared)
		reasons = append(reasons, "Shared learning needs: "+strings.Join(shared, ", "))
	}

	if absInt(a.PreferredStudyDuration-b.PreferredStudyDuration) <= 10 {
		score += 15
		reasons = append(reasons, "Similar session lengths")
	}
	if absInt(a.DailyGoalMinutes-b.DailyGoalMinutes) <= 30 {
		score += 10
		reasons = append(reasons, "Similar daily goals")
	}
	if overlap := overlappingTimes(a.BestStudyTimes, b.BestStudyTimes); len(overlap) > 0 {
		score += 15
		reasons = append(reasons, "Both study best: "+strings.Join(overlap, ", "))
	}
	if a.CurrentStreak >= 3 && b.CurrentStreak >= 3 {
		score += 5
		reasons = append(reasons, "Both on a streak")
	}

	if score > 100 {
		score = 100
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Ready to study together")
	}
	return score, reasons
}

func overlappingTimes(a, b datatypes.JSON) []string {
	var left, right []string
	_ = json.Unmarshal(a, &left)
	_ = json.Unmarshal(b, &right)
	seen := map[string]bool{}
	for _, v := range left {
		seen[strings.ToLower(strings.TrimSpace(v))] = true
	}
	out := []string{}
	added := map[string]bool{}
	for _, v := range right {
		k := strings.ToLower(strings.TrimSpace(v))
		if k != "" && seen[k] && !added[k] {
			added[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
