package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/envutil"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/llm"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ratelimit"
)

type Config struct {
	Port        string
	Environment string

	JWTSecret string
	JWTIssuer string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	Location    *time.Location
	CORSOrigins []string

	LLM llm.Config

	CheckInLimit   ratelimit.Policy
	DecomposeLimit ratelimit.Policy
	DigestLimit    ratelimit.Policy

	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:          envutil.String("PORT", "8080", log),
		Environment:   envutil.String("APP_ENV", "development", log),
		JWTSecret:     envutil.String("SUPABASE_JWT_SECRET", "", log),
		JWTIssuer:     envutil.String("JWT_ISSUER", "", log),
		RedisAddr:     envutil.String("REDIS_ADDR", "", log),
		RedisPassword: envutil.String("REDIS_PASSWORD", "", log),
		RedisDB:       envutil.Int("REDIS_DB", 0),
		RedisPrefix:   envutil.String("REDIS_CHANNEL_PREFIX", "studysync:realtime", log),
		Location:      loadLocation(log, envutil.String("APP_TIMEZONE", "", log)),
		CORSOrigins:   envutil.List("CORS_ALLOWED_ORIGINS", nil),

		CheckInLimit:   loadPolicy(log, "RATE_LIMIT_CHECKIN", ratelimit.Policy{Max: 12, Window: time.Minute}),
		DecomposeLimit: loadPolicy(log, "RATE_LIMIT_DECOMPOSE", ratelimit.Policy{Max: 10, Window: time.Minute}),
		DigestLimit:    loadPolicy(log, "RATE_LIMIT_DIGEST", ratelimit.Policy{Max: 6, Window: time.Minute}),

		ReadHeaderTimeout: envutil.Seconds("HTTP_READ_HEADER_TIMEOUT_SECONDS", 10*time.Second),
		IdleTimeout:       envutil.Seconds("HTTP_IDLE_TIMEOUT_SECONDS", 120*time.Second),
		ShutdownTimeout:   envutil.Seconds("HTTP_SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
	}
	cfg.LLM = loadLLMConfig(log)
	if cfg.JWTSecret == "" {
		log.Warn("SUPABASE_JWT_SECRET is not set; every request will be rejected as unauthorized")
	}
	return cfg
}

func loadLLMConfig(log *logger.Logger) llm.Config {
	provider := strings.ToLower(envutil.String("LLM_PROVIDER", "anthropic", log))
	cfg := llm.Config{
		Provider:   provider,
		Timeout:    envutil.Seconds("LLM_TIMEOUT_SECONDS", 30*time.Second),
		MaxRetries: envutil.Int("LLM_MAX_RETRIES", 2),
	}
	switch provider {
	case "openai":
		cfg.APIKey = envutil.String("OPENAI_API_KEY", "", log)
		cfg.Model = envutil.String("OPENAI_MODEL", "", log)
		cfg.BaseURL = envutil.String("OPENAI_BASE_URL", "", log)
	default:
		cfg.APIKey = envutil.String("ANTHROPIC_API_KEY", "", log)
		cfg.Model = envutil.String("ANTHROPIC_MODEL", "", log)
		cfg.BaseURL = envutil.String("ANTHROPIC_BASE_URL", "", log)
	}
	return cfg
}

func loadLocation(log *logger.Logger, name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn("invalid APP_TIMEZONE; using server local time", "value", name, "error", err)
		return time.Local
	}
	return loc
}

func loadPolicy(log *logger.Logger, name string, def ratelimit.Policy) ratelimit.Policy {
	raw := envutil.String(name, "", log)
	if raw == "" {
		return def
	}
	p, err := ParsePolicy(raw)
	if err != nil {
		log.Warn("invalid rate limit; using default", "key", name, "value", raw, "error", err)
		return def
	}
	return p
}

// ParsePolicy reads "<max>/<window>", e.g. "12/60s" or "100/1h".
func ParsePolicy(s string) (ratelimit.Policy, error) {
	maxPart, windowPart, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return ratelimit.Policy{}, fmt.Errorf("want <max>/<window>, got %q", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(maxPart))
	if err != nil || n <= 0 {
		return ratelimit.Policy{}, fmt.Errorf("max must be a positive integer, got %q", maxPart)
	}
	window, err := time.ParseDuration(strings.TrimSpace(windowPart))
	if err != nil || window <= 0 {
		return ratelimit.Policy{}, fmt.Errorf("window must be a positive duration, got %q", windowPart)
	}
	return ratelimit.Policy{Max: n, Window: window}, nil
}
