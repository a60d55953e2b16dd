package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("FP_MATCH_THRESHOLD", "")
	t.Setenv("FP_REJECT_THRESHOLD", "")
	t.Setenv("REGISTRY_LOOKUP_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.APIPort)
	}
	if cfg.FPMatchThreshold != 0.15 {
		t.Fatalf("expected default match threshold 0.15, got %v", cfg.FPMatchThreshold)
	}
	if cfg.FPRejectThreshold != 0.35 {
		t.Fatalf("expected default reject threshold 0.35, got %v", cfg.FPRejectThreshold)
	}
	if cfg.RegistryLookupTimeout != 3*time.Second {
		t.Fatalf("expected default lookup timeout 3s, got %v", cfg.RegistryLookupTimeout)
	}
}

func TestLoadParsesEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("API_PORT", "9090")
	t.Setenv("FP_MATCH_THRESHOLD", "0.1")
	t.Setenv("FP_REJECT_THRESHOLD", "0.5")
	t.Setenv("REGISTRY_LOOKUP_TIMEOUT", "500ms")
	t.Setenv("API_RATE_LIMIT_BURST", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIPort != "9090" {
		t.Fatalf("expected port override, got %q", cfg.APIPort)
	}
	if cfg.FPMatchThreshold != 0.1 || cfg.FPRejectThreshold != 0.5 {
		t.Fatalf("expected threshold overrides, got %v/%v", cfg.FPMatchThreshold, cfg.FPRejectThreshold)
	}
	if cfg.RegistryLookupTimeout != 500*time.Millisecond {
		t.Fatalf("expected lookup timeout override, got %v", cfg.RegistryLookupTimeout)
	}
	if cfg.APIRateLimitBurst != 30 {
		t.Fatalf("expected burst override, got %d", cfg.APIRateLimitBurst)
	}
}

func TestLoadAppliesYAMLFileUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte("api_port: \"7070\"\nfp_match_threshold: 0.2\nverify_base_url: https://yaml.example\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_PORT", "6000")
	t.Setenv("FP_MATCH_THRESHOLD", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Env wins over the file, the file wins over defaults.
	if cfg.APIPort != "6000" {
		t.Fatalf("env must override file, got %q", cfg.APIPort)
	}
	if cfg.FPMatchThreshold != 0.2 {
		t.Fatalf("file must override default, got %v", cfg.FPMatchThreshold)
	}
	if cfg.VerifyBaseURL != "https://yaml.example" {
		t.Fatalf("expected base url from file, got %q", cfg.VerifyBaseURL)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed config file")
	}
}

func TestLoadIgnoresUnparseableEnvValues(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("FP_MATCH_THRESHOLD", "not-a-number")
	t.Setenv("API_MAX_IN_FLIGHT", "abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FPMatchThreshold != 0.15 {
		t.Fatalf("unparseable env must keep default, got %v", cfg.FPMatchThreshold)
	}
	if cfg.APIMaxInFlight != 64 {
		t.Fatalf("unparseable env must keep default, got %d", cfg.APIMaxInFlight)
	}
}
