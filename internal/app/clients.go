package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/SyedHasanCronosPMC/StudySync/internal/clients/redis"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/clock"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/llm"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ratelimit"
	"github.com/SyedHasanCronosPMC/StudySync/internal/realtime/bus"
)

// Clients are the outbound dependencies. Redis and the bus are nil when
// REDIS_ADDR is unset.
type Clients struct {
	Redis   *goredis.Client
	Bus     bus.Bus
	Limiter ratelimit.Limiter
	LLM     llm.TextGenerator
}

func wireClients(log *logger.Logger, cfg Config, clk clock.Clock) (Clients, error) {
	log.Info("Wiring clients...")

	rdb, err := redis.NewClient(log, redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}

	out := Clients{LLM: llm.New(log, cfg.LLM)}
	if rdb == nil {
		log.Info("redis not configured; using in-process rate limits and realtime fan-out")
		out.Limiter = ratelimit.NewMemory(clk)
		return out, nil
	}

	b, err := bus.NewRedisBus(log, rdb, cfg.RedisPrefix)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init realtime bus: %w", err)
	}
	out.Redis = rdb
	out.Bus = b
	out.Limiter = ratelimit.NewRedis(rdb, "studysync:ratelimit")
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
