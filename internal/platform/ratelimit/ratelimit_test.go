package ratelimit

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/clock"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

func TestMemoryTokenBucket(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	m := NewMemory(clk)
	p := Policy{Max: 2, Window: time.Minute}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, _ := m.Allow(ctx, "check-in:u1", p)
		if !d.Allowed {
			t.Fatalf("hit %d should be allowed", i+1)
		}
		clk.Advance(10 * time.Second)
	}
	// one token refills every 30s; 20s in, two thirds of a token are back
	d, _ := m.Allow(ctx, "check-in:u1", p)
	if d.Allowed {
		t.Fatalf("third hit inside the window must be rejected")
	}
	if d.RetryAfter < 9*time.Second || d.RetryAfter > 11*time.Second {
		t.Fatalf("retry after: want about 10s got %s", d.RetryAfter)
	}
	if d, _ := m.Allow(ctx, "check-in:u2", p); !d.Allowed {
		t.Fatalf("other keys are independent")
	}

	clk.Advance(11 * time.Second)
	if d, _ := m.Allow(ctx, "check-in:u1", p); !d.Allowed {
		t.Fatalf("a token has refilled; should allow")
	}
	if d, _ := m.Allow(ctx, "check-in:u1", p); d.Allowed {
		t.Fatalf("bucket should be empty again")
	}
}

func TestMemoryRejectionsDoNotSpendTokens(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	m := NewMemory(clk)
	p := Policy{Max: 1, Window: time.Minute}
	ctx := context.Background()

	if d, _ := m.Allow(ctx, "k", p); !d.Allowed {
		t.Fatalf("first hit should be allowed")
	}
	for i := 0; i < 5; i++ {
		clk.Advance(time.Second)
		if d, _ := m.Allow(ctx, "k", p); d.Allowed {
			t.Fatalf("hit %d should be rejected", i+2)
		}
	}
	clk.Advance(55 * time.Second)
	if d, _ := m.Allow(ctx, "k", p); !d.Allowed {
		t.Fatalf("full window elapsed; rejected hits must not have delayed the refill")
	}
}

func TestMemoryPolicyChangeResetsBucket(t *testing.T) {
	m := NewMemory(clock.NewFake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	if d, _ := m.Allow(ctx, "k", Policy{Max: 1, Window: time.Hour}); !d.Allowed {
		t.Fatalf("first hit should be allowed")
	}
	if d, _ := m.Allow(ctx, "k", Policy{Max: 3, Window: time.Hour}); !d.Allowed || d.Remaining != 2 {
		t.Fatalf("new policy should start a fresh bucket, got %+v", d)
	}
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string, Policy) (Decision, error) {
	return Decision{}, errors.New("connection refused")
}

func TestEnforceFailsOpenAndMapsToRateLimited(t *testing.T) {
	ctx := context.Background()
	p := Policy{Max: 1, Window: time.Minute}
	if err := Enforce(ctx, brokenLimiter{}, logger.Nop(), "digest", "u", p, "slow down"); err != nil {
		t.Fatalf("limiter errors must fail open, got %v", err)
	}

	m := NewMemory(nil)
	if err := Enforce(ctx, m, logger.Nop(), "digest", "u", p, "slow down"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	err := Enforce(ctx, m, logger.Nop(), "digest", "u", p, "slow down")
	var ex *Exceeded
	if !errors.As(err, &ex) {
		t.Fatalf("want *Exceeded, got %v", err)
	}
	if apierr.StatusOf(err, 0) != 429 || err.Error() != "slow down" {
		t.Fatalf("unexpected mapping: status=%d msg=%q", apierr.StatusOf(err, 0), err.Error())
	}
	if ex.RetryAfterSeconds() < 1 {
		t.Fatalf("retry after must be at least one second")
	}
}

func TestRedisFixedWindow(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	defer rdb.Close()
	ctx := context.Background()
	key := "test:" + time.Now().Format(time.RFC3339Nano)
	r := NewRedis(rdb, "studysync:test")
	p := Policy{Max: 2, Window: 2 * time.Second}

	for i := 0; i < 2; i++ {
		if d, err := r.Allow(ctx, key, p); err != nil || !d.Allowed {
			t.Fatalf("hit %d: %+v %v", i+1, d, err)
		}
	}
	d, err := r.Allow(ctx, key, p)
	if err != nil || d.Allowed || d.RetryAfter <= 0 {
		t.Fatalf("third hit: %+v %v", d, err)
	}
}
