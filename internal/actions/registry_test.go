package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry(logger.Nop())
	h := func(ctx context.Context, p Payload) (any, error) { return "ok", nil }
	if err := reg.Register("a.b", h); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Register("a.b", h); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := reg.Register("", h); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	if err := reg.Register("c.d", nil); err == nil {
		t.Fatalf("expected nil handler to fail")
	}
}

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry(logger.Nop())
	boom := apierr.NotFound("nope")
	_ = reg.Register("echo", func(ctx context.Context, p Payload) (any, error) { return p.String("v"), nil })
	_ = reg.Register("fail", func(ctx context.Context, p Payload) (any, error) { return nil, boom })

	data, ok, err := reg.Dispatch(t.Context(), "echo", Payload{"v": " hi "})
	if !ok || err != nil || data != "hi" {
		t.Fatalf("echo: data=%v ok=%v err=%v", data, ok, err)
	}
	if _, ok, _ := reg.Dispatch(t.Context(), "missing", nil); ok {
		t.Fatalf("expected unknown action to report ok=false")
	}
	_, ok, err = reg.Dispatch(t.Context(), "fail", nil)
	if !ok || !errors.Is(err, boom) {
		t.Fatalf("fail: ok=%v err=%v", ok, err)
	}
	if got := reg.Names(); len(got) != 2 || got[0] != "echo" || got[1] != "fail" {
		t.Fatalf("Names = %v", got)
	}
}
