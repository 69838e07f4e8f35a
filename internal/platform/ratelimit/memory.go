package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/clock"
)

// idleSweepEvery bounds how often idle keys are dropped.
const idleSweepEvery = 1024

type bucket struct {
	lim      *rate.Limiter
	policy   Policy
	lastSeen time.Time
}

// Memory keeps one token bucket per key: a policy of Max per Window refills
// one token every Window/Max with a burst of Max. It does not coordinate
// across replicas.
type Memory struct {
	mu      sync.Mutex
	clk     clock.Clock
	buckets map[string]*bucket
	calls   int
}

func NewMemory(clk clock.Clock) *Memory {
	if clk == nil {
		clk = clock.Real()
	}
	return &Memory{clk: clk, buckets: map[string]*bucket{}}
}

func (m *Memory) Allow(_ context.Context, key string, p Policy) (Decision, error) {
	if !p.valid() {
		return Decision{Allowed: true}, nil
	}
	now := m.clk.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.buckets[key]
	if b == nil || b.policy != p {
		b = &bucket{
			lim:    rate.NewLimiter(rate.Every(p.Window/time.Duration(p.Max)), p.Max),
			policy: p,
		}
		m.buckets[key] = b
	}
	b.lastSeen = now

	m.calls++
	if m.calls%idleSweepEvery == 0 {
		m.sweepLocked(now)
	}

	res := b.lim.ReserveN(now, 1)
	if !res.OK() {
		return Decision{Allowed: false, RetryAfter: p.Window}, nil
	}
	if wait := res.DelayFrom(now); wait > 0 {
		// rejected calls do not spend a token
		res.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: wait}, nil
	}
	return Decision{Allowed: true, Remaining: int(b.lim.TokensAt(now))}, nil
}

// sweepLocked drops buckets idle long enough to have refilled completely.
func (m *Memory) sweepLocked(now time.Time) {
	for k, b := range m.buckets {
		if now.Sub(b.lastSeen) > b.policy.Window {
			delete(m.buckets, k)
		}
	}
}
