package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "9090"
redis:
  addr: localhost:6379
  db: 2
  ttl: 15m
quiz:
  catalog_file: data.json
  single_attempt: true
records:
  timeout: 2s
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected server/redis config %+v", cfg)
	}
	if cfg.Quiz.CatalogFile != "data.json" || !cfg.Quiz.SingleAttempt {
		t.Fatalf("unexpected quiz config %+v", cfg.Quiz)
	}
	if got := TTLDuration(cfg.Records.Timeout, time.Second); got != 2*time.Second {
		t.Fatalf("expected 2s record timeout, got %v", got)
	}
	if cfg.Postgres.URL != "" {
		t.Fatalf("expected postgres unset, got %q", cfg.Postgres.URL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestTTLDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", time.Minute},
		{"90s", 90 * time.Second},
		{"soon", time.Minute},
	}
	for _, tc := range cases {
		if got := TTLDuration(tc.raw, time.Minute); got != tc.want {
			t.Fatalf("TTLDuration(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
