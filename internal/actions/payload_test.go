package actions

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
)

func TestPayloadInt(t *testing.T) {
	p := Payload{"a": float64(25), "b": "40", "c": 2.5, "d": "x", "e": ""}
	if n, err := p.Int("a", 0); err != nil || n != 25 {
		t.Fatalf("a: %d %v", n, err)
	}
	if n, err := p.Int("b", 0); err != nil || n != 40 {
		t.Fatalf("b: %d %v", n, err)
	}
	if _, err := p.Int("c", 0); apierr.CodeOf(err) != apierr.CodeInvalidArgument {
		t.Fatalf("c: expected invalid argument, got %v", err)
	}
	if _, err := p.Int("d", 0); apierr.CodeOf(err) != apierr.CodeInvalidArgument {
		t.Fatalf("d: expected invalid argument, got %v", err)
	}
	if n, err := p.Int("e", 7); err != nil || n != 7 {
		t.Fatalf("e: blank should use default, got %d %v", n, err)
	}
	if v, err := p.OptionalInt("missing"); err != nil || v != nil {
		t.Fatalf("missing: %v %v", v, err)
	}
}

func TestPayloadIntIsDecimalAndBounded(t *testing.T) {
	p := Payload{"lead": "010", "eight": "08", "huge": float64(5e18), "spaced": " 12 "}
	if n, err := p.Int("lead", 0); err != nil || n != 10 {
		t.Fatalf("lead: want 10, got %d %v", n, err)
	}
	if n, err := p.Int("eight", 0); err != nil || n != 8 {
		t.Fatalf("eight: want 8, got %d %v", n, err)
	}
	if n, err := p.Int("spaced", 0); err != nil || n != 12 {
		t.Fatalf("spaced: want 12, got %d %v", n, err)
	}
	if _, err := p.Int("huge", 0); apierr.CodeOf(err) != apierr.CodeInvalidArgument {
		t.Fatalf("huge: expected invalid argument, got %v", err)
	}
}

func TestPayloadUUIDAcceptsEitherSpelling(t *testing.T) {
	id := uuid.New()
	for _, p := range []Payload{{"roomId": id.String()}, {"room_id": id.String()}} {
		got, err := p.RequiredUUID("roomId", "room_id")
		if err != nil || got != id {
			t.Fatalf("RequiredUUID(%v) = %v, %v", p, got, err)
		}
	}
	_, err := Payload{}.RequiredUUID("roomId", "room_id")
	if err == nil || err.Error() != "roomId is required" {
		t.Fatalf("expected roomId is required, got %v", err)
	}
	_, err = Payload{"room_id": "abc"}.RequiredUUID("roomId", "room_id")
	if err == nil || err.Error() != "room_id must be a valid id" {
		t.Fatalf("expected invalid id, got %v", err)
	}
}

func TestPayloadTime(t *testing.T) {
	p := Payload{"a": "2025-03-10T09:30:00Z", "b": "2025-03-10", "c": "yesterday"}
	if ts, err := p.Time("a", nil); err != nil || ts.Hour() != 9 || ts.Minute() != 30 {
		t.Fatalf("a: %v %v", ts, err)
	}
	if ts, err := p.Time("b", nil); err != nil || ts.Day() != 10 {
		t.Fatalf("b: %v %v", ts, err)
	}
	if _, err := p.Time("c", nil); apierr.CodeOf(err) != apierr.CodeInvalidArgument {
		t.Fatalf("c: expected invalid argument, got %v", err)
	}
}

func TestPayloadTimeReadsZonelessValuesInLocation(t *testing.T) {
	ny := time.FixedZone("EST", -5*60*60)
	p := Payload{"date": "2025-03-10", "local": "2025-03-10T00:30:00", "zoned": "2025-03-10T02:00:00Z"}

	ts, err := p.Time("date", ny)
	if err != nil {
		t.Fatalf("date: %v", err)
	}
	if got := ts.In(ny).Format("2006-01-02"); got != "2025-03-10" {
		t.Fatalf("date-only value moved to %s", got)
	}
	ts, err = p.Time("local", ny)
	if err != nil || ts.UTC().Hour() != 5 || ts.UTC().Minute() != 30 {
		t.Fatalf("local: %v %v", ts, err)
	}
	// an explicit zone wins over loc
	ts, err = p.Time("zoned", ny)
	if err != nil || ts.In(ny).Format("2006-01-02") != "2025-03-09" {
		t.Fatalf("zoned: %v %v", ts, err)
	}
}

func TestCheckMessages(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{logSessionPayload{DurationMinutes: 0}, "duration_minutes must be a positive integer"},
		{logSessionPayload{DurationMinutes: 5, TasksCompleted: -1}, "tasks_completed must be at least 0"},
		{roomStatusPayload{}, "status is required"},
		{roomStatusPayload{Status: "sleeping"}, "status must be one of studying, break, away, complete"},
	}
	for _, tc := range cases {
		err := check(tc.in)
		if err == nil || err.Error() != tc.want {
			t.Fatalf("check(%+v) = %v, want %q", tc.in, err, tc.want)
		}
	}
	if err := check(logSessionPayload{DurationMinutes: 25}); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
}
