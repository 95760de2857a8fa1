package config

import (
	"strings"
	"testing"

	sharedauth "github.com/focusnest/webhook-service/internal/shared/auth"
)

var configEnv = []string{
	"PORT", "GCP_PROJECT_ID", "LOG_LEVEL", "DATASTORE", "CLERK_WEBHOOK_SECRET", "WEBHOOK_MAX_BODY_BYTES",
	"AUTH_MODE", "CLERK_JWKS_URL", "CLERK_AUDIENCE", "CLERK_ISSUER", "FIRESTORE_EMULATOR_HOST",
	"FIRESTORE_CREDENTIALS_FILE", "EVENTS_PUBLISHER", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "METRICS_ENABLED",
}

// clearEnv blanks every variable Load reads; envconfig treats blank as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range configEnv {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if cfg.DataStore != DataStoreMemory {
		t.Fatalf("expected memory datastore, got %q", cfg.DataStore)
	}
	if cfg.Auth.Mode != sharedauth.ModeNoop {
		t.Fatalf("expected noop auth, got %q", cfg.Auth.Mode)
	}
	if cfg.Webhook.MaxBodyBytes != defaultMaxBodyBytes {
		t.Fatalf("expected default body limit, got %d", cfg.Webhook.MaxBodyBytes)
	}
	if cfg.Webhook.ClerkSecret != "" {
		t.Fatalf("expected empty secret by default")
	}
	if !cfg.Metrics.Enabled {
		t.Fatalf("expected metrics enabled by default")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CLERK_WEBHOOK_SECRET", "  whsec_abc  ")
	t.Setenv("WEBHOOK_MAX_BODY_BYTES", "2048")
	t.Setenv("DATASTORE", "FIRESTORE")
	t.Setenv("GCP_PROJECT_ID", "focusnest-dev")
	t.Setenv("EVENTS_PUBLISHER", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "9090" || cfg.Webhook.ClerkSecret != "whsec_abc" || cfg.Webhook.MaxBodyBytes != 2048 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.DataStore != DataStoreFirestore || cfg.Events.Publisher != PublisherRedis || cfg.Events.RedisDB != 2 {
		t.Fatalf("unexpected backends: %+v", cfg)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"firestore without project", map[string]string{"DATASTORE": "firestore"}, "GCP_PROJECT_ID"},
		{"unknown datastore", map[string]string{"DATASTORE": "postgres"}, "unsupported datastore"},
		{"clerk auth without jwks", map[string]string{"AUTH_MODE": "clerk"}, "CLERK_JWKS_URL"},
		{"unknown auth mode", map[string]string{"AUTH_MODE": "basic"}, "unsupported auth mode"},
		{"redis without addr", map[string]string{"EVENTS_PUBLISHER": "redis"}, "REDIS_ADDR"},
		{"unknown publisher", map[string]string{"EVENTS_PUBLISHER": "kafka"}, "unsupported events publisher"},
		{"non-numeric body limit", map[string]string{"WEBHOOK_MAX_BODY_BYTES": "lots"}, "WEBHOOK_MAX_BODY_BYTES"},
		{"zero body limit", map[string]string{"WEBHOOK_MAX_BODY_BYTES": "0"}, "MaxBodyBytes"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatalf("expected error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
