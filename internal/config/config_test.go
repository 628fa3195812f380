package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "CASHFLOW_CONFIG", "CASHFLOW_API_ADDR", "CASHFLOW_REQUEST_TIMEOUT",
		"CASHFLOW_START_CASH", "CASHFLOW_START_SALARY", "CASHFLOW_START_EXPENSES",
		"CASHFLOW_LOG_LEVEL", "CASHFLOW_IDEMPOTENCY_KEYS", "CF_API_BASE_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadAPIDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("addr=%q", cfg.Addr)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("timeout=%s", cfg.RequestTimeout)
	}
	if cfg.Start != (StartConfig{Cash: 5_000, Salary: 3_000, Expenses: 2_500}) {
		t.Fatalf("start=%+v", cfg.Start)
	}
	if cfg.LogLevel != "info" || cfg.IdempotencySize != 1024 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadAPIPortAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CASHFLOW_START_CASH", "12000")
	t.Setenv("CASHFLOW_REQUEST_TIMEOUT", "not-a-duration")
	cfg, err := LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("addr=%q", cfg.Addr)
	}
	if cfg.Start.Cash != 12_000 || cfg.Start.Salary != 3_000 {
		t.Fatalf("start=%+v", cfg.Start)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("bad duration should fall back, got %s", cfg.RequestTimeout)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "cashflow.yaml")
	body := "start:\n  cash: 800\n  salary: 0\napi:\n  addr: \":7070\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CASHFLOW_CONFIG", path)
	t.Setenv("CASHFLOW_START_EXPENSES", "900")

	cfg, err := LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("addr=%q", cfg.Addr)
	}
	want := StartConfig{Cash: 800, Salary: 0, Expenses: 900}
	if cfg.Start != want {
		t.Fatalf("start=%+v want %+v", cfg.Start, want)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	clearEnv(t)
	t.Setenv("CASHFLOW_START_SALARY", "-5")
	if _, err := LoadAPIFromEnv(); err == nil {
		t.Fatalf("expected negative salary to fail")
	}

	clearEnv(t)
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("start: [1, 2"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CASHFLOW_CONFIG", path)
	if _, err := LoadCLIFromEnv(); err == nil {
		t.Fatalf("expected malformed yaml to fail")
	}
}

func TestLoadCLIFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CF_API_BASE_URL", "http://example.test:8080/")
	cfg, err := LoadCLIFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "http://example.test:8080" {
		t.Fatalf("base=%q", cfg.APIBaseURL)
	}
}
