package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("ENRICHMENT_ENABLED", "")
	t.Setenv("API_RATE_LIMIT_RPS", "")
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIPort != "8080" {
		t.Errorf("APIPort = %q", cfg.APIPort)
	}
	if cfg.StoreBackend != "memory" {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
	if cfg.NATSSubject != "documents.received" {
		t.Errorf("NATSSubject = %q", cfg.NATSSubject)
	}
	if !cfg.EnrichmentEnabled {
		t.Error("EnrichmentEnabled should default to true")
	}
	if cfg.APIRateLimitRPS != 50 {
		t.Errorf("APIRateLimitRPS = %d", cfg.APIRateLimitRPS)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9999")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("ENRICHMENT_ENABLED", "false")
	t.Setenv("API_MAX_IN_FLIGHT", "8")
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIPort != "9999" {
		t.Errorf("APIPort = %q", cfg.APIPort)
	}
	if cfg.StoreBackend != "postgres" {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
	if cfg.EnrichmentEnabled {
		t.Error("EnrichmentEnabled should be false")
	}
	if cfg.APIMaxInFlight != 8 {
		t.Errorf("APIMaxInFlight = %d", cfg.APIMaxInFlight)
	}
}

func TestLoadFileOverlayWinsOverEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	overlay := "api_port: \"7070\"\nnats:\n  subject: docs.in\n"
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("API_PORT", "9999")
	t.Setenv("NATS_SUBJECT", "env.subject")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIPort != "7070" {
		t.Errorf("APIPort = %q, file overlay must win", cfg.APIPort)
	}
	if cfg.NATSSubject != "docs.in" {
		t.Errorf("NATSSubject = %q", cfg.NATSSubject)
	}
	// Fields absent from the file keep their env/default values.
	if cfg.StoreBackend != "memory" {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
}

func TestLoadBrokenOverlayFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n\t bad yaml ["), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for broken overlay")
	}
}

func TestLoadMissingOverlayFileFails(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing overlay file")
	}
}
