package config

import (
	"strings"
	"testing"

	"github.com/plankcoach/achievement-service/internal/auth"
	"github.com/plankcoach/achievement-service/internal/envconfig"
)

func TestConfigValidationTags(t *testing.T) {
	if err := envconfig.Validate(Config{}); err == nil {
		t.Fatalf("expected a zero config to fail struct validation")
	}

	cfg := Config{
		Port:      "8080",
		DataStore: DataStoreMemory,
		Auth:      AuthConfig{Mode: auth.ModeNoop},
	}
	if err := envconfig.Validate(cfg); err != nil {
		t.Fatalf("expected a populated config to pass struct validation, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATASTORE", "")
	t.Setenv("AUTH_MODE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("default port = %s, want 8080", cfg.Port)
	}
	if cfg.DataStore != DataStoreMemory {
		t.Fatalf("default datastore = %s, want memory", cfg.DataStore)
	}
	if cfg.Auth.Mode != auth.ModeNoop {
		t.Fatalf("default auth mode = %s, want noop", cfg.Auth.Mode)
	}
}

func TestLoad_Firestore(t *testing.T) {
	t.Setenv("DATASTORE", "Firestore")
	t.Setenv("GCP_PROJECT_ID", "demo-project")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DataStore != DataStoreFirestore {
		t.Fatalf("datastore = %s, want firestore", cfg.DataStore)
	}
	if cfg.GCPProjectID != "demo-project" {
		t.Fatalf("project = %s", cfg.GCPProjectID)
	}
}

func TestLoad_FirestoreRequiresProject(t *testing.T) {
	t.Setenv("DATASTORE", "firestore")
	t.Setenv("GCP_PROJECT_ID", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "gcp project id") {
		t.Fatalf("expected a project-id error, got %v", err)
	}
}

func TestLoad_RejectsUnknownDataStore(t *testing.T) {
	t.Setenv("DATASTORE", "cassandra")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "unsupported datastore") {
		t.Fatalf("expected an unsupported-datastore error, got %v", err)
	}
}

func TestLoad_JWKSRequiresURL(t *testing.T) {
	t.Setenv("AUTH_MODE", "jwks")
	t.Setenv("AUTH_JWKS_URL", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "AUTH_JWKS_URL") {
		t.Fatalf("expected a JWKS URL error, got %v", err)
	}
}
