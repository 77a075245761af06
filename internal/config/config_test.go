package config_test

import (
	"testing"
	"time"

	"github.com/peerbr/invest-client-go/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	if cfg.APIBaseURL != "http://localhost:5000" {
		t.Errorf("expected default base URL, got %q", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.HTTPTimeout)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("expected 30s cache TTL, got %v", cfg.CacheTTL)
	}
	if cfg.PollInterval != 0 {
		t.Errorf("poller should be disabled by default, got %v", cfg.PollInterval)
	}
	if cfg.Tracing {
		t.Error("tracing should be disabled by default")
	}
	if cfg.OpsPort != 9464 {
		t.Errorf("expected default ops port 9464, got %d", cfg.OpsPort)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PEERBR_API_URL", "https://api.peerbr.com.br")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("POLL_INTERVAL", "30s")
	t.Setenv("OPS_PORT", "0")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := config.Load()

	if cfg.APIBaseURL != "https://api.peerbr.com.br" {
		t.Errorf("expected env base URL, got %q", cfg.APIBaseURL)
	}
	if cfg.CacheTTL != 2*time.Minute {
		t.Errorf("expected 2m cache TTL, got %v", cfg.CacheTTL)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("expected 30s poll interval, got %v", cfg.PollInterval)
	}
	if cfg.OpsPort != 0 {
		t.Errorf("expected ops endpoint disabled, got %d", cfg.OpsPort)
	}
	if !cfg.Tracing {
		t.Error("expected tracing enabled")
	}
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("OPS_PORT", "many")

	cfg := config.Load()

	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("malformed duration should fall back, got %v", cfg.CacheTTL)
	}
	if cfg.OpsPort != 9464 {
		t.Errorf("malformed int should fall back, got %d", cfg.OpsPort)
	}
}
