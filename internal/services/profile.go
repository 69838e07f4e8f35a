package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/repos"
	types "github.com/SyedHasanCronosPMC/StudySync/internal/domain"
	"github.com/SyedHasanCronosPMC/StudySync/internal/domain/user"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ctxutil"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/dbctx"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type ProfileService interface {
	// Ensure returns the caller's profile, creating it on first access.
	Ensure(ctx context.Context) (*types.Profile, error)
	Update(ctx context.Context, payload map[string]any) (*types.Profile, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	Progress(ctx context.Context) ([]*types.DailyCheckIn, error)
}

type Dashboard struct {
	Profile      *types.Profile      `json:"profile"`
	TodayCheckIn *types.DailyCheckIn `json:"todayCheckIn"`
}

type profileField int

const (
	fieldText profileField = iota
	fieldNullableText
	fieldFlag
	fieldMinutes
	fieldJSONList
)

// profileUpdateFields is the allow-list for profile.update; anything else is dropped.
var profileUpdateFields = map[string]profileField{
	"display_name":             fieldText,
	"avatar_url":               fieldNullableText,
	"has_adhd":                 fieldFlag,
	"has_dyslexia":             fieldFlag,
	"has_anxiety":              fieldFlag,
	"has_autism":               fieldFlag,
	"preferred_study_duration": fieldMinutes,
	"break_duration":           fieldMinutes,
	"daily_goal_minutes":       fieldMinutes,
	"best_study_times":         fieldJSONList,
	"dark_mode":                fieldFlag,
	"reduce_animations":        fieldFlag,
	"larger_text":              fieldFlag,
	"high_contrast":            fieldFlag,
	"audio_instructions":       fieldFlag,
	"onboarding_completed":     fieldFlag,
}

type profileService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.ProfileRepo
	checkInRepo repos.CheckInRepo
	cal         Calendar
}

func NewProfileService(db *gorm.DB, log *logger.Logger, profileRepo repos.ProfileRepo, checkInRepo repos.CheckInRepo, cal Calendar) ProfileService {
	return &profileService{
		db:          db,
		log:         log.With("service", "ProfileService"),
		profileRepo: profileRepo,
		checkInRepo: checkInRepo,
		cal:         cal,
	}
}

func requireCaller(ctx context.Context) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("Unauthorized")
	}
	return rd, nil
}

// defaultDisplayName prefers provider metadata, then the email local part.
func defaultDisplayName(rd *ctxutil.RequestData) string {
	if rd == nil {
		return "Friend"
	}
	if name := strings.TrimSpace(rd.DisplayName); name != "" {
		return name
	}
	if at := strings.Index(rd.Email, "@"); at > 0 {
		return rd.Email[:at]
	}
	return "Friend"
}

func (ps *profileService) Ensure(ctx context.Context) (*types.Profile, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	return ps.ensure(dbctx.Of(ctx), rd)
}

func (ps *profileService) ensure(dbc dbctx.Context, rd *ctxutil.RequestData) (*types.Profile, error) {
	return ensureProfile(dbc, ps.profileRepo, ps.log, rd)
}

// ensureProfile loads the caller's profile, creating it with defaults when absent.
func ensureProfile(dbc dbctx.Context, profileRepo repos.ProfileRepo, log *logger.Logger, rd *ctxutil.RequestData) (*types.Profile, error) {
	existing, err := profileRepo.GetByID(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	created, err := profileRepo.Create(dbc, user.NewProfile(rd.UserID, defaultDisplayName(rd)))
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	if created {
		log.Info("profile.created", "user_id", rd.UserID.String())
	}
	// a concurrent request may have won the insert; read back either way
	p, err := profileRepo.GetByID(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("reload profile: %w", err)
	}
	if p == nil {
		return nil, apierr.NotFound("Profile not found")
	}
	return p, nil
}

func (ps *profileService) Update(ctx context.Context, payload map[string]any) (*types.Profile, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	updates, err := sanitizeProfileUpdates(payload)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, apierr.InvalidArgument("No valid fields provided for update")
	}

	dbc := dbctx.Of(ctx)
	if _, err := ps.ensure(dbc, rd); err != nil {
		return nil, err
	}
	fields := make([]string, 0, len(updates))
	for k := range updates {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	if err := ps.profileRepo.UpdateFields(dbc, rd.UserID, updates); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	ps.log.Info("profile.updated", "user_id", rd.UserID.String(), "fields", fields)
	return ps.profileRepo.GetByID(dbc, rd.UserID)
}

func sanitizeProfileUpdates(payload map[string]any) (map[string]any, error) {
	out := map[string]any{}
	for key, raw := range payload {
		kind, ok := profileUpdateFields[key]
		if !ok {
			continue
		}
		switch kind {
		case fieldText:
			s := strings.TrimSpace(cast.ToString(raw))
			if s == "" {
				return nil, apierr.InvalidArgument("%s must not be empty", key)
			}
			out[key] = s
		case fieldNullableText:
			if raw == nil {
				out[key] = nil
				continue
			}
			s := strings.TrimSpace(cast.ToString(raw))
			if s == "" {
				out[key] = nil
			} else {
				out[key] = s
			}
		case fieldFlag:
			b, err := cast.ToBoolE(raw)
			if err != nil {
				return nil, apierr.InvalidArgument("%s must be a boolean", key)
			}
			out[key] = b
		case fieldMinutes:
			n, err := cast.ToIntE(raw)
			if err != nil || n <= 0 {
				return nil, apierr.InvalidArgument("%s must be a positive integer", key)
			}
			out[key] = n
		case fieldJSONList:
			list, err := cast.ToStringSliceE(raw)
			if err != nil {
				return nil, apierr.InvalidArgument("%s must be a list of strings", key)
			}
			b, err := json.Marshal(list)
			if err != nil {
				return nil, err
			}
			out[key] = datatypes.JSON(b)
		}
	}
	return out, nil
}

func (ps *profileService) Dashboard(ctx context.Context) (*Dashboard, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Of(ctx)
	p, err := ps.ensure(dbc, rd)
	if err != nil {
		return nil, err
	}
	today, err := ps.checkInRepo.GetByDate(dbc, rd.UserID, ps.cal.Today())
	if err != nil {
		return nil, fmt.Errorf("load today's check-in: %w", err)
	}
	return &Dashboard{Profile: p, TodayCheckIn: today}, nil
}

func (ps *profileService) Progress(ctx context.Context) ([]*types.DailyCheckIn, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ps.checkInRepo.ListRecent(dbctx.Of(ctx), rd.UserID, 30)
	if err != nil {
		return nil, fmt.Errorf("load check-ins: %w", err)
	}
	if rows == nil {
		rows = []*types.DailyCheckIn{}
	}
	return rows, nil
}
