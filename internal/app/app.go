package app

import (
	"context"
	"fmt"
	"net"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SyedHasanCronosPMC/StudySync/internal/data/db"
	"github.com/SyedHasanCronosPMC/StudySync/internal/http"
	httpMW "github.com/SyedHasanCronosPMC/StudySync/internal/http/middleware"
	"github.com/SyedHasanCronosPMC/StudySync/internal/observability"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/clock"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/envutil"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
	"github.com/SyedHasanCronosPMC/StudySync/internal/realtime"
	"github.com/SyedHasanCronosPMC/StudySync/internal/services"
)

const serviceName = "studysync-api"

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development", nil))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
	})
	metrics := observability.Init(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	clk := clock.Real()
	cal := services.NewCalendar(clk, cfg.Location)

	clients, err := wireClients(log, cfg, clk)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	ssehub := realtime.NewSSEHub(log)
	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, ssehub, cal)
	if err != nil {
		clients.Close()
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	registry, err := wireActions(log, serviceset, cfg.Location)
	if err != nil {
		clients.Close()
		_ = pg.Close()
		log.Sync()
		return nil, err
	}
	auth := httpMW.NewAuthMiddleware(log, serviceset.Identity)
	handlerset := wireHandlers(log, theDB, serviceset, auth, registry, ssehub)
	router := wireRouter(log, cfg, metrics, otelShutdown != nil, handlerset, auth)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		SSEHub:       ssehub,
		Metrics:      metrics,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background loops: the realtime forwarder and metric collectors.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.Bus != nil {
		if err := a.Clients.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start realtime forwarder: %w", err)
		}
	}
	a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
	a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	srv := http.NewServer(http.ServerConfig{
		Addr:              net.JoinHostPort("", a.Cfg.Port),
		ReadHeaderTimeout: a.Cfg.ReadHeaderTimeout,
		IdleTimeout:       a.Cfg.IdleTimeout,
		ShutdownTimeout:   a.Cfg.ShutdownTimeout,
	}, a.Router)
	a.Log.Info("http server listening", "port", a.Cfg.Port)
	return srv.Run(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
