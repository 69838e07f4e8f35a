package observability

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type Metrics struct {
	apiRequests  *CounterVec
	apiLatency   *HistogramVec
	apiInflight  *Gauge
	apiReqTotal  *Counter
	apiReqError  *Counter
	actions      *CounterVec
	actionTime   *HistogramVec
	llmRequests  *CounterVec
	llmLatency   *HistogramVec
	rateLimited  *CounterVec
	achievements *CounterVec
	roomJoins    *CounterVec
	buddyMatches *CounterVec
	pgStats      *GaugeVec
	redisUp      *Gauge
	redisPing    *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

// Current returns the process metrics, or nil when metrics are disabled.
// Every method is nil-safe.
func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	v := strings.TrimSpace(os.Getenv("METRICS_SCRAPE_INTERVAL_SECONDS"))
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return 10 * time.Second
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("ss_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"ss_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		),
		apiInflight: NewGauge("ss_api_inflight_requests", "In-flight API requests."),
		apiReqTotal: NewCounter("ss_api_requests_total_all", "Total API requests (all)."),
		apiReqError: NewCounter("ss_api_requests_errors_total", "Total API requests answered with 5xx."),
		actions:     NewCounterVec("ss_actions_total", "Router actions by name and outcome.", []string{"action", "outcome"}),
		actionTime: NewHistogramVec(
			"ss_action_duration_seconds",
			"Router action latency in seconds.",
			[]string{"action"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		),
		llmRequests: NewCounterVec("ss_llm_requests_total", "Text generation calls by provider/model/status.", []string{"provider", "model", "status"}),
		llmLatency: NewHistogramVec(
			"ss_llm_request_duration_seconds",
			"Text generation latency in seconds.",
			[]string{"provider", "model"},
			[]float64{0.25, 0.5, 1, 2, 5, 10, 30},
		),
		rateLimited:  NewCounterVec("ss_rate_limited_total", "Requests rejected by the rate limiter.", []string{"scope"}),
		achievements: NewCounterVec("ss_achievements_unlocked_total", "Badges unlocked by type.", []string{"badge_type"}),
		roomJoins:    NewCounterVec("ss_room_joins_total", "Room join attempts by outcome.", []string{"outcome"}),
		buddyMatches: NewCounterVec("ss_buddy_requests_total", "Buddy requests by outcome.", []string{"outcome"}),
		pgStats:      NewGaugeVec("ss_postgres_pool", "Database pool statistics.", []string{"stat"}),
		redisUp:      NewGauge("ss_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing:    NewGauge("ss_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiReqTotal, m.apiReqError,
		m.actions, m.actionTime,
		m.llmRequests, m.llmLatency,
		m.rateLimited, m.achievements, m.roomJoins, m.buddyMatches,
		m.pgStats, m.redisUp, m.redisPing,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	m.apiReqTotal.Inc()
	if strings.HasPrefix(status, "5") {
		m.apiReqError.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveAction records one dispatched router action. outcome is "success" or an error code.
func (m *Metrics) ObserveAction(action, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	if action == "" {
		action = "unknown"
	}
	if outcome == "" {
		outcome = "error"
	}
	m.actions.Inc(action, outcome)
	m.actionTime.Observe(dur.Seconds(), action)
}

func (m *Metrics) ObserveLLMRequest(provider, model, status string, dur time.Duration) {
	if m == nil {
		return
	}
	provider = strings.TrimSpace(provider)
	if provider == "" {
		provider = "unknown"
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.llmRequests.Inc(provider, model, status)
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), provider, model)
	}
}

func (m *Metrics) IncRateLimited(scope string) {
	if m == nil {
		return
	}
	m.rateLimited.Inc(scope)
}

func (m *Metrics) IncAchievement(badgeType string) {
	if m == nil {
		return
	}
	m.achievements.Inc(badgeType)
}

func (m *Metrics) IncRoomJoin(outcome string) {
	if m == nil {
		return
	}
	m.roomJoins.Inc(outcome)
}

func (m *Metrics) IncBuddyRequest(outcome string) {
	if m == nil {
		return
	}
	m.buddyMatches.Inc(outcome)
}

// StartPostgresCollector samples the gorm pool on every scrape interval until ctx ends.
func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: postgres stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
				m.pgStats.Set(float64(stats.InUse), "in_use")
				m.pgStats.Set(float64(stats.Idle), "idle")
				m.pgStats.Set(float64(stats.WaitCount), "wait_count")
				m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}

// StartRedisCollector pings the shared redis client on every scrape interval until ctx ends.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *goredis.Client) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
