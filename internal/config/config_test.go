package config

import (
	"os"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost/smr_test")
	setEnv(t, "ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Errorf("pool sizes = %d/%d, want 20/5", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if cfg.JWTTTLMinutes != 60 {
		t.Errorf("JWTTTLMinutes = %d, want 60", cfg.JWTTTLMinutes)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode")
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	setEnv(t, "DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_ProductionRequiresJWTSecret(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost/smr")
	setEnv(t, "ENV", "production")
	setEnv(t, "JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when JWT_SECRET missing in production")
	}

	setEnv(t, "JWT_SECRET", "super-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.IsDev() {
		t.Error("expected production mode")
	}
}

func TestLoad_CORSOriginsSplit(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost/smr")
	setEnv(t, "ENV", "development")
	setEnv(t, "CORS_ORIGINS", "http://a.example,http://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "http://a.example" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
}
