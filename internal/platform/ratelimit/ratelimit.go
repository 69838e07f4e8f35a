// Package ratelimit bounds how often one identity may hit an expensive endpoint.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/SyedHasanCronosPMC/StudySync/internal/observability"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type Policy struct {
	Max    int
	Window time.Duration
}

func (p Policy) valid() bool { return p.Max > 0 && p.Window > 0 }

type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string, p Policy) (Decision, error)
}

// Exceeded is returned by Enforce when the caller is over its limit.
type Exceeded struct {
	Message    string
	RetryAfter time.Duration
}

func (e *Exceeded) Error() string { return e.Message }

func (e *Exceeded) Unwrap() error { return apierr.RateLimited(e.Message) }

// RetryAfterSeconds rounds up so clients never retry early.
func (e *Exceeded) RetryAfterSeconds() int {
	if e == nil || e.RetryAfter <= 0 {
		return 1
	}
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

// Enforce checks scope:id against p. Limiter failures are logged and the call is allowed.
func Enforce(ctx context.Context, l Limiter, log *logger.Logger, scope, id string, p Policy, message string) error {
	if l == nil || !p.valid() {
		return nil
	}
	d, err := l.Allow(ctx, fmt.Sprintf("%s:%s", scope, id), p)
	if err != nil {
		if log != nil {
			log.Warn("rate limiter unavailable; allowing request", "scope", scope, "error", err)
		}
		return nil
	}
	if d.Allowed {
		return nil
	}
	observability.Current().IncRateLimited(scope)
	return &Exceeded{Message: message, RetryAfter: d.RetryAfter}
}
