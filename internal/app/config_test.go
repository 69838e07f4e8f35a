package app

import (
	"testing"
	"time"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ratelimit"
)

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		in      string
		want    ratelimit.Policy
		wantErr bool
	}{
		{"12/60s", ratelimit.Policy{Max: 12, Window: time.Minute}, false},
		{" 100 / 1h ", ratelimit.Policy{Max: 100, Window: time.Hour}, false},
		{"12", ratelimit.Policy{}, true},
		{"0/60s", ratelimit.Policy{}, true},
		{"5/soon", ratelimit.Policy{}, true},
		{"5/-1s", ratelimit.Policy{}, true},
	}
	for _, tc := range cases {
		got, err := ParsePolicy(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParsePolicy(%q) expected error, got %+v", tc.in, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParsePolicy(%q) = %+v, %v; want %+v", tc.in, got, err, tc.want)
		}
	}
}

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RATE_LIMIT_CHECKIN", "3/10s")
	t.Setenv("RATE_LIMIT_DIGEST", "garbage")
	t.Setenv("APP_TIMEZONE", "America/New_York")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := LoadConfig(logger.Nop())
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.CheckInLimit != (ratelimit.Policy{Max: 3, Window: 10 * time.Second}) {
		t.Fatalf("CheckInLimit = %+v", cfg.CheckInLimit)
	}
	if cfg.DigestLimit != (ratelimit.Policy{Max: 6, Window: time.Minute}) {
		t.Fatalf("DigestLimit should fall back to default, got %+v", cfg.DigestLimit)
	}
	if cfg.Location.String() != "America/New_York" {
		t.Fatalf("Location = %s", cfg.Location)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.APIKey != "sk-test" {
		t.Fatalf("LLM = %+v", cfg.LLM)
	}
}
