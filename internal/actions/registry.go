// Package actions maps router action names to handlers and runs them.
package actions

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/SyedHasanCronosPMC/StudySync/internal/observability"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ctxutil"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

// Handler runs one action for the caller attached to ctx.
type Handler func(ctx context.Context, p Payload) (any, error)

type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	log      *logger.Logger
}

func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		log:      log.With("component", "ActionRegistry"),
	}
}

func (r *Registry) Register(name string, h Handler) error {
	if name == "" {
		return fmt.Errorf("action name is empty")
	}
	if h == nil {
		return fmt.Errorf("nil handler for action=%s", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("handler already registered for action=%s", name)
	}
	r.handlers[name] = h
	return nil
}

func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Dispatch runs a registered handler and records the outcome. Lookup
// failures are reported with ok=false so the caller can answer 400.
func (r *Registry) Dispatch(ctx context.Context, name string, p Payload) (data any, ok bool, err error) {
	h, found := r.Get(name)
	if !found {
		return nil, false, nil
	}
	if p == nil {
		p = Payload{}
	}

	userID := ctxutil.UserID(ctx).String()
	ctx, span := observability.StartSpan(ctx, "action "+name,
		attribute.String("studysync.action", name),
		attribute.String("enduser.id", userID),
	)
	defer span.End()

	start := time.Now()
	r.log.Debug("action.start", "action", name, "user_id", userID)

	data, err = h(ctx, p)
	dur := time.Since(start)
	if err != nil {
		code := apierr.CodeOf(err)
		if code == "" {
			code = "error"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
		observability.Current().ObserveAction(name, code, dur)
		r.log.Warn("action.error", "action", name, "user_id", userID, "code", code, "duration_ms", dur.Milliseconds(), "error", err)
		return nil, true, err
	}
	observability.Current().ObserveAction(name, "success", dur)
	r.log.Info("action.success", "action", name, "user_id", userID, "duration_ms", dur.Milliseconds())
	return data, true, nil
}
