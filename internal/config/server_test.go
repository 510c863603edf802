package config

import "testing"

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/tricktable?sslmode=disable")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.DisconnectGraceSec != 900 {
		t.Fatalf("DisconnectGraceSec = %d, want 900", cfg.DisconnectGraceSec)
	}
	if cfg.AbandonedDeleteMins != 15 {
		t.Fatalf("AbandonedDeleteMins = %d, want 15", cfg.AbandonedDeleteMins)
	}
	if cfg.SoloDeleteMins != 5 {
		t.Fatalf("SoloDeleteMins = %d, want 5", cfg.SoloDeleteMins)
	}
	if cfg.SeatClaimTTLSec != 5 {
		t.Fatalf("SeatClaimTTLSec = %d, want 5", cfg.SeatClaimTTLSec)
	}
}

func TestLoadServerRequiresPostgresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")

	_, err := LoadServer()
	if err == nil {
		t.Fatal("LoadServer() expected error, got nil")
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/tricktable?sslmode=disable")
	t.Setenv("TURN_TIMEOUT_SECONDS", "45")
	t.Setenv("DISCONNECT_GRACE_SECONDS", "120")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.TurnTimeoutSec != 45 {
		t.Fatalf("TurnTimeoutSec = %d, want 45", cfg.TurnTimeoutSec)
	}
	if cfg.DisconnectGraceSec != 120 {
		t.Fatalf("DisconnectGraceSec = %d, want 120", cfg.DisconnectGraceSec)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("RedisAddr = %q, want localhost:6379", cfg.RedisAddr)
	}
}
