package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Mode != "release" {
		t.Errorf("Mode = %q, want release", cfg.Server.Mode)
	}
	if cfg.Fetcher.DefaultTimeout != 15*time.Second {
		t.Errorf("DefaultTimeout = %v, want 15s", cfg.Fetcher.DefaultTimeout)
	}
	if cfg.Fetcher.EnableBrowser {
		t.Error("EnableBrowser should default to false")
	}
	if cfg.Extractor.ProductKeyPrefix != "Product:" {
		t.Errorf("ProductKeyPrefix = %q", cfg.Extractor.ProductKeyPrefix)
	}
	if len(cfg.Extractor.StateMarkers) == 0 {
		t.Error("default state markers missing")
	}
	if len(cfg.Extractor.LinkPatterns) == 0 {
		t.Error("default link patterns missing")
	}
	if cfg.Auth.Enabled {
		t.Error("auth should default to disabled")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MALLSCAN_PORT", "9090")
	t.Setenv("MALLSCAN_DEFAULT_TIMEOUT", "30s")
	t.Setenv("MALLSCAN_ENABLE_BROWSER", "true")
	t.Setenv("MALLSCAN_ALLOWED_HOSTS", "shop.example.com, cdn.example.com")
	t.Setenv("MALLSCAN_RATE_RPS", "2.5")
	t.Setenv("MALLSCAN_API_KEYS", "k1,k2")

	cfg := Load()

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Fetcher.DefaultTimeout != 30*time.Second {
		t.Errorf("DefaultTimeout = %v, want 30s", cfg.Fetcher.DefaultTimeout)
	}
	if !cfg.Fetcher.EnableBrowser {
		t.Error("EnableBrowser = false, want true")
	}
	if want := []string{"shop.example.com", "cdn.example.com"}; !reflect.DeepEqual(cfg.Extractor.AllowedHosts, want) {
		t.Errorf("AllowedHosts = %v, want %v", cfg.Extractor.AllowedHosts, want)
	}
	if cfg.RateLimit.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v, want 2.5", cfg.RateLimit.RequestsPerSecond)
	}
	if want := []string{"k1", "k2"}; !reflect.DeepEqual(cfg.Auth.APIKeys, want) {
		t.Errorf("APIKeys = %v, want %v", cfg.Auth.APIKeys, want)
	}
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("MALLSCAN_PORT", "not-a-number")
	t.Setenv("MALLSCAN_DEFAULT_TIMEOUT", "soon")
	t.Setenv("MALLSCAN_ENABLE_BROWSER", "yes please")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("malformed port should fall back to 8080, got %d", cfg.Server.Port)
	}
	if cfg.Fetcher.DefaultTimeout != 15*time.Second {
		t.Errorf("malformed duration should fall back to 15s, got %v", cfg.Fetcher.DefaultTimeout)
	}
	if cfg.Fetcher.EnableBrowser {
		t.Error("malformed bool should fall back to false")
	}
}
