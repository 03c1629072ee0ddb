package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PLAID_ENV", "SYNC_WINDOW_DAYS", "SYNC_CONCURRENCY", "CACHE_TTL", "CREDENTIAL_KEY", "ENV", "PLAID_COUNTRY_CODES"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncWindowDays != 90 {
		t.Errorf("expected 90 day window, got %d", cfg.SyncWindowDays)
	}
	if cfg.SyncConcurrency != 1 {
		t.Errorf("expected sequential sync, got concurrency %d", cfg.SyncConcurrency)
	}
	if cfg.CacheTTL != time.Minute {
		t.Errorf("expected 1m cache ttl, got %v", cfg.CacheTTL)
	}
	if cfg.PlaidEnv != "sandbox" {
		t.Errorf("expected sandbox, got %s", cfg.PlaidEnv)
	}
	if len(cfg.PlaidCountryCodes) != 1 || cfg.PlaidCountryCodes[0] != "US" {
		t.Errorf("expected [US], got %v", cfg.PlaidCountryCodes)
	}
	if cfg.CredentialKey != devCredentialKey {
		t.Errorf("expected development credential key")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PLAID_ENV", "Production")
	t.Setenv("ENV", "production")
	t.Setenv("CREDENTIAL_KEY", "ab")
	t.Setenv("SYNC_WINDOW_DAYS", "30")
	t.Setenv("SYNC_CONCURRENCY", "4")
	t.Setenv("PLAID_COUNTRY_CODES", "us, ca")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://cash.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PlaidEnv != "production" || !cfg.IsProduction() {
		t.Errorf("expected production config, got plaid=%s env=%s", cfg.PlaidEnv, cfg.Env)
	}
	if cfg.SyncWindowDays != 30 || cfg.SyncConcurrency != 4 {
		t.Errorf("unexpected sync settings: window=%d concurrency=%d", cfg.SyncWindowDays, cfg.SyncConcurrency)
	}
	if len(cfg.PlaidCountryCodes) != 2 || cfg.PlaidCountryCodes[1] != "CA" {
		t.Errorf("expected [US CA], got %v", cfg.PlaidCountryCodes)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad_plaid_env", "PLAID_ENV", "development"},
		{"zero_window", "SYNC_WINDOW_DAYS", "0"},
		{"non_numeric_concurrency", "SYNC_CONCURRENCY", "many"},
		{"negative_timeout", "REQUEST_TIMEOUT", "-5s"},
		{"bad_ttl", "CACHE_TTL", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}

	t.Run("missing_key_in_production", func(t *testing.T) {
		t.Setenv("ENV", "production")
		t.Setenv("CREDENTIAL_KEY", "")
		if _, err := Load(); err == nil {
			t.Error("expected error when CREDENTIAL_KEY is missing in production")
		}
	})
}
