package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SyedHasanCronosPMC/StudySync/internal/actions"
	"github.com/SyedHasanCronosPMC/StudySync/internal/http"
	httpH "github.com/SyedHasanCronosPMC/StudySync/internal/http/handlers"
	httpMW "github.com/SyedHasanCronosPMC/StudySync/internal/http/middleware"
	"github.com/SyedHasanCronosPMC/StudySync/internal/observability"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
	"github.com/SyedHasanCronosPMC/StudySync/internal/realtime"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	AppRouter *httpH.AppRouterHandler
	CheckIn   *httpH.CheckInHandler
	Decompose *httpH.DecomposeHandler
	Realtime  *httpH.RealtimeHandler
}

func wireActions(log *logger.Logger, s Services, loc *time.Location) (*actions.Registry, error) {
	log.Info("Wiring actions...")
	reg := actions.NewRegistry(log)
	err := actions.RegisterAll(reg, actions.Services{
		Profile:      s.Profile,
		Habit:        s.Habit,
		Achievements: s.Achievements,
		Rooms:        s.Rooms,
		Buddy:        s.Buddy,
		Tasks:        s.Tasks,
		Digest:       s.Digest,
		Location:     loc,
	})
	if err != nil {
		return nil, fmt.Errorf("register actions: %w", err)
	}
	return reg, nil
}

func wireHandlers(log *logger.Logger, db *gorm.DB, s Services, auth *httpMW.AuthMiddleware, reg *actions.Registry, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(db),
		AppRouter: httpH.NewAppRouterHandler(log, auth, reg),
		CheckIn:   httpH.NewCheckInHandler(log, auth, s.CheckIn),
		Decompose: httpH.NewDecomposeHandler(log, auth, s.Decompose),
		Realtime:  httpH.NewRealtimeHandler(log, hub),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, tracing bool, h Handlers, auth *httpMW.AuthMiddleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		CORSOrigins:      cfg.CORSOrigins,
		TracingEnabled:   tracing,
		ServiceName:      serviceName,
		AuthMiddleware:   auth,
		AppRouterHandler: h.AppRouter,
		CheckInHandler:   h.CheckIn,
		DecomposeHandler: h.Decompose,
		RealtimeHandler:  h.Realtime,
		HealthHandler:    h.Health,
	})
}
