package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Cart.Store != CartStoreMemory {
		t.Fatalf("expected memory cart store, got %q", cfg.Cart.Store)
	}
	if cfg.Pricing.FreeShippingThreshold != 3000 || cfg.Pricing.FlatShippingFee != 100 {
		t.Fatalf("unexpected pricing defaults: %+v", cfg.Pricing)
	}
	if cfg.Pricing.TaxRate != "0.18" {
		t.Fatalf("unexpected tax rate %q", cfg.Pricing.TaxRate)
	}
	if cfg.Backend.Timeout != 10*time.Second {
		t.Fatalf("expected 10s backend timeout, got %v", cfg.Backend.Timeout)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("redis should be disabled without url/address")
	}
	if cfg.Booking.IdempotencyTTL != 24*time.Hour || cfg.Booking.CheckoutIdempotencyTTL != 7*24*time.Hour {
		t.Fatalf("unexpected idempotency windows: %+v", cfg.Booking)
	}
	if cfg.Cart.PurgeInterval != time.Hour {
		t.Fatalf("expected hourly purge, got %v", cfg.Cart.PurgeInterval)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvBackendBaseURL); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvBackendBaseURL, err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RedisStoreNeedsRedis(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCartStore, "redis")
	if _, err := Load(); err == nil {
		t.Fatal("expected redis cart store without redis url to fail")
	}

	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Cart.Store != CartStoreRedis {
		t.Fatalf("expected redis store, got %q", cfg.Cart.Store)
	}
}

func TestLoad_SQLStoreNeedsDSN(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCartStore, "SQL")
	if _, err := Load(); err == nil {
		t.Fatal("expected sql cart store without dsn to fail")
	}
	t.Setenv(EnvDBDSN, "file:cart.db")
	t.Setenv(EnvDBDriver, "sqlite")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Cart.Store != CartStoreSQL || cfg.DB.Driver != DBDriverSQLite {
		t.Fatalf("unexpected store/driver %q/%q", cfg.Cart.Store, cfg.DB.Driver)
	}
}

func TestLoad_UnknownCartStore(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCartStore, "localstorage")
	if _, err := Load(); err == nil {
		t.Fatal("expected unknown cart store to fail")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAppEnv, "dev")
	t.Setenv(EnvPort, "8080")
	t.Setenv(EnvBackendBaseURL, "http://127.0.0.1:8000/api")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}
	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}
