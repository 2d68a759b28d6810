package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port == "" {
		t.Error("Port should have a default")
	}
	if cfg.RulesPath == "" {
		t.Error("RulesPath should have a default")
	}
	if cfg.IdentityTolerance < 0 {
		t.Errorf("IdentityTolerance = %v", cfg.IdentityTolerance)
	}
	if cfg.SEC.RequestsPerSec <= 0 || cfg.SEC.RequestsPerSec > 10 {
		t.Errorf("RequestsPerSec = %v, must respect the SEC cap", cfg.SEC.RequestsPerSec)
	}
	if cfg.Scheduler.Form == "" {
		t.Error("Scheduler.Form should have a default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("IDENTITY_TOLERANCE", "2.5")
	t.Setenv("SEC_REQUEST_TIMEOUT", "45s")
	t.Setenv("SCHEDULER_TICKERS", "PGR, PRI ,BRK-B")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.IdentityTolerance != 2.5 {
		t.Errorf("IdentityTolerance = %v, want 2.5", cfg.IdentityTolerance)
	}
	if cfg.SEC.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %v, want 45s", cfg.SEC.RequestTimeout)
	}

	want := []string{"PGR", "PRI", "BRK-B"}
	if len(cfg.Scheduler.Tickers) != len(want) {
		t.Fatalf("Tickers = %v, want %v", cfg.Scheduler.Tickers, want)
	}
	for i, ticker := range want {
		if cfg.Scheduler.Tickers[i] != ticker {
			t.Errorf("Tickers[%d] = %q, want %q", i, cfg.Scheduler.Tickers[i], ticker)
		}
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad env", key: "ENV", value: "prod"},
		{name: "negative tolerance", key: "IDENTITY_TOLERANCE", value: "-1"},
		{name: "rate over SEC cap", key: "SEC_REQUESTS_PER_SEC", value: "25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load accepted %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestHelperFallbacks(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "not-a-number")
	if got := getEnvAsInt("DB_MAX_CONNS", 10); got != 10 {
		t.Errorf("getEnvAsInt fallback = %d, want 10", got)
	}

	t.Setenv("SOME_DURATION", "garbage")
	if got := getEnvAsDuration("SOME_DURATION", "1h"); got != time.Hour {
		t.Errorf("getEnvAsDuration fallback = %v, want 1h", got)
	}

	if got := splitList(""); got != nil {
		t.Errorf("splitList(\"\") = %v, want nil", got)
	}
	if got := splitList(" , ,"); got != nil {
		t.Errorf("splitList of blanks = %v, want nil", got)
	}
}
