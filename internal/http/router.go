package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/SyedHasanCronosPMC/StudySync/internal/http/handlers"
	httpMW "github.com/SyedHasanCronosPMC/StudySync/internal/http/middleware"
	"github.com/SyedHasanCronosPMC/StudySync/internal/observability"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	CORSOrigins    []string
	TracingEnabled bool
	ServiceName    string

	AuthMiddleware *httpMW.AuthMiddleware

	AppRouterHandler *httpH.AppRouterHandler
	CheckInHandler   *httpH.CheckInHandler
	DecomposeHandler *httpH.DecomposeHandler
	RealtimeHandler  *httpH.RealtimeHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	// Function endpoints check method and caller themselves so a GET gets 405 before 401.
	fn := r.Group("/functions/v1")
	{
		if cfg.AppRouterHandler != nil {
			fn.Any("/app-router", cfg.AppRouterHandler.Handle)
		}
		if cfg.CheckInHandler != nil {
			fn.Any("/check-in", cfg.CheckInHandler.Submit)
		}
		if cfg.DecomposeHandler != nil {
			fn.Any("/decompose-task", cfg.DecomposeHandler.Decompose)
		}
	}

	protected := r.Group("/api")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/rooms/:id/presence", cfg.RealtimeHandler.RoomPresence)
		}
	}

	return r
}
