package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusAndCodeSurviveWrapping(t *testing.T) {
	base := CapacityExceeded("Study room is full")
	wrapped := fmt.Errorf("join room: %w", base)

	if got := StatusOf(wrapped, http.StatusBadRequest); got != http.StatusConflict {
		t.Fatalf("StatusOf: want=%d got=%d", http.StatusConflict, got)
	}
	if got := CodeOf(wrapped); got != CodeCapacityExceeded {
		t.Fatalf("CodeOf: want=%s got=%s", CodeCapacityExceeded, got)
	}
	if base.Error() != "Study room is full" {
		t.Fatalf("message should be verbatim, got %q", base.Error())
	}
}

func TestStatusOfFallsBackForPlainErrors(t *testing.T) {
	if got := StatusOf(errors.New("boom"), http.StatusBadRequest); got != http.StatusBadRequest {
		t.Fatalf("want fallback 400, got %d", got)
	}
	if got := CodeOf(errors.New("boom")); got != "" {
		t.Fatalf("want empty code, got %q", got)
	}
}

func TestInvalidArgumentFormatsField(t *testing.T) {
	err := InvalidArgument("duration_minutes must be a positive number, got %v", -3)
	if err.Status != http.StatusBadRequest || err.Code != CodeInvalidArgument {
		t.Fatalf("unexpected classification: %+v", err)
	}
	if err.Error() != "duration_minutes must be a positive number, got -3" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
