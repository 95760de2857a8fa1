package config

import (
	"fmt"
	"strings"

	sharedauth "github.com/focusnest/webhook-service/internal/shared/auth"
	"github.com/focusnest/webhook-service/internal/shared/envconfig"
)

// Config encapsulates the runtime configuration for the webhook service.
type Config struct {
	Port         string `validate:"required"`
	GCPProjectID string
	LogLevel     string
	DataStore    DataStore
	Webhook      WebhookConfig
	Auth         AuthConfig
	Firestore    FirestoreConfig
	Events       EventsConfig
	Metrics      MetricsConfig
}

// DataStore enumerates supported persistence backends for synced users.
type DataStore string

const (
	// DataStoreMemory keeps users in-process (local development and tests).
	DataStoreMemory DataStore = "memory"
	// DataStoreFirestore stores users in Google Cloud Firestore.
	DataStoreFirestore DataStore = "firestore"
)

// WebhookConfig holds the Clerk webhook signing settings.
type WebhookConfig struct {
	// ClerkSecret is the Svix signing secret ("whsec_..."). Empty is tolerated at startup;
	// the webhook route answers 500 until it is configured.
	ClerkSecret  string
	MaxBodyBytes int64 `validate:"gt=0"`
}

// AuthConfig stores authentication middleware setup for the JSON API.
type AuthConfig struct {
	Mode     sharedauth.Mode
	JWKSURL  string
	Audience string
	Issuer   string
}

// FirestoreConfig tailors Firestore client behavior.
type FirestoreConfig struct {
	EmulatorHost    string
	CredentialsFile string
}

// Publisher enumerates event publishing backends.
type Publisher string

const (
	PublisherNone  Publisher = "none"
	PublisherLog   Publisher = "log"
	PublisherRedis Publisher = "redis"
)

// EventsConfig controls where user.events are published.
type EventsConfig struct {
	Publisher     Publisher
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

const defaultMaxBodyBytes = 1 << 20

// Load reads environment variables into Config with validation.
func Load() (Config, error) {
	maxBody, err := envconfig.GetInt64("WEBHOOK_MAX_BODY_BYTES", defaultMaxBodyBytes)
	if err != nil {
		return Config{}, err
	}
	redisDB, err := envconfig.GetInt64("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}
	metricsEnabled, err := envconfig.GetBool("METRICS_ENABLED", true)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:         envconfig.Get("PORT", "8080"),
		GCPProjectID: envconfig.Get("GCP_PROJECT_ID", ""),
		LogLevel:     envconfig.Get("LOG_LEVEL", "info"),
		DataStore:    DataStore(strings.ToLower(envconfig.Get("DATASTORE", string(DataStoreMemory)))),
		Webhook: WebhookConfig{
			ClerkSecret:  strings.TrimSpace(envconfig.Get("CLERK_WEBHOOK_SECRET", "")),
			MaxBodyBytes: maxBody,
		},
		Auth: AuthConfig{
			Mode:     sharedauth.Mode(strings.ToLower(envconfig.Get("AUTH_MODE", string(sharedauth.ModeNoop)))),
			JWKSURL:  envconfig.Get("CLERK_JWKS_URL", ""),
			Audience: envconfig.Get("CLERK_AUDIENCE", ""),
			Issuer:   envconfig.Get("CLERK_ISSUER", ""),
		},
		Firestore: FirestoreConfig{
			EmulatorHost:    envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
			CredentialsFile: envconfig.Get("FIRESTORE_CREDENTIALS_FILE", ""),
		},
		Events: EventsConfig{
			Publisher:     Publisher(strings.ToLower(envconfig.Get("EVENTS_PUBLISHER", string(PublisherLog)))),
			RedisAddr:     envconfig.Get("REDIS_ADDR", ""),
			RedisPassword: envconfig.Get("REDIS_PASSWORD", ""),
			RedisDB:       int(redisDB),
		},
		Metrics: MetricsConfig{Enabled: metricsEnabled},
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if err := envconfig.Validate(cfg); err != nil {
		return err
	}

	switch cfg.DataStore {
	case DataStoreMemory:
		// no-op
	case DataStoreFirestore:
		if cfg.GCPProjectID == "" {
			return fmt.Errorf("GCP_PROJECT_ID is required when DATASTORE=firestore")
		}
	default:
		return fmt.Errorf("unsupported datastore: %s", cfg.DataStore)
	}

	switch cfg.Auth.Mode {
	case sharedauth.ModeClerk:
		if cfg.Auth.JWKSURL == "" {
			return fmt.Errorf("CLERK_JWKS_URL is required when AUTH_MODE=clerk")
		}
	case sharedauth.ModeNoop:
		// no-op
	default:
		return fmt.Errorf("unsupported auth mode: %s", cfg.Auth.Mode)
	}

	switch cfg.Events.Publisher {
	case PublisherNone, PublisherLog:
		// no-op
	case PublisherRedis:
		if cfg.Events.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when EVENTS_PUBLISHER=redis")
		}
	default:
		return fmt.Errorf("unsupported events publisher: %s", cfg.Events.Publisher)
	}

	return nil
}
