package config

import (
	"fmt"
	"strings"

	"github.com/plankcoach/achievement-service/internal/auth"
	"github.com/plankcoach/achievement-service/internal/envconfig"
)

// Config encapsulates the runtime configuration for the achievement service.
type Config struct {
	Port         string `validate:"required"`
	GCPProjectID string
	DataStore    DataStore `validate:"required"`
	Auth         AuthConfig
	Firestore    FirestoreConfig
}

// DataStore enumerates supported persistence backends.
type DataStore string

const (
	// DataStoreMemory keeps sessions and awards in-memory (useful for local development/testing).
	DataStoreMemory DataStore = "memory"
	// DataStoreFirestore stores data in Google Cloud Firestore.
	DataStoreFirestore DataStore = "firestore"
)

// AuthConfig stores authentication middleware setup.
type AuthConfig struct {
	Mode     auth.Mode `validate:"required"`
	JWKSURL  string
	Audience string
	Issuer   string
}

// FirestoreConfig tailors Firestore client behavior.
type FirestoreConfig struct {
	EmulatorHost string
}

// Load reads environment variables into Config with validation.
func Load() (Config, error) {
	cfg := Config{
		Port:         envconfig.Get("PORT", "8080"),
		GCPProjectID: envconfig.Get("GCP_PROJECT_ID", ""),
		DataStore:    DataStore(strings.ToLower(envconfig.Get("DATASTORE", string(DataStoreMemory)))),
		Auth: AuthConfig{
			Mode:     auth.Mode(strings.ToLower(envconfig.Get("AUTH_MODE", string(auth.ModeNoop)))),
			JWKSURL:  envconfig.Get("AUTH_JWKS_URL", ""),
			Audience: envconfig.Get("AUTH_AUDIENCE", ""),
			Issuer:   envconfig.Get("AUTH_ISSUER", ""),
		},
		Firestore: FirestoreConfig{
			EmulatorHost: envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
		},
	}

	if err := envconfig.Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// validate covers the cross-field rules the struct tags can't express.
func validate(cfg Config) error {
	switch cfg.DataStore {
	case DataStoreMemory:
		// no-op
	case DataStoreFirestore:
		if cfg.GCPProjectID == "" {
			return fmt.Errorf("gcp project id required when datastore=firestore")
		}
	default:
		return fmt.Errorf("unsupported datastore: %s", cfg.DataStore)
	}

	switch cfg.Auth.Mode {
	case auth.ModeJWKS:
		if cfg.Auth.JWKSURL == "" {
			return fmt.Errorf("AUTH_JWKS_URL is required when AUTH_MODE=jwks")
		}
	case auth.ModeNoop:
		// no-op
	default:
		return fmt.Errorf("unsupported auth mode: %s", cfg.Auth.Mode)
	}

	return nil
}
