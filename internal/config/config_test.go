package config

import (
	"testing"
	"time"
)

func TestGetFallsBack(t *testing.T) {
	t.Setenv("DDS_TEST_KEY", "")
	if got := Get("DDS_TEST_KEY", "x"); got != "x" {
		t.Fatalf("Get = %q, want %q", got, "x")
	}
	t.Setenv("DDS_TEST_KEY", "y")
	if got := Get("DDS_TEST_KEY", "x"); got != "y" {
		t.Fatalf("Get = %q, want %q", got, "y")
	}
}

func TestTypedGetters(t *testing.T) {
	t.Setenv("DDS_BOOL", "true")
	t.Setenv("DDS_INT", "nope")
	t.Setenv("DDS_DUR", "12")

	if !GetBool("DDS_BOOL", false) {
		t.Fatalf("GetBool = false, want true")
	}
	if got := GetInt("DDS_INT", 7); got != 7 {
		t.Fatalf("GetInt = %d, want 7", got)
	}
	if got := GetDuration("DDS_DUR", time.Second); got != 12*time.Second {
		t.Fatalf("GetDuration = %v, want 12s", got)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("MODEL_STORE", "")
	t.Setenv("ELABORATION_CACHE", "")
	t.Setenv("ELABORATE_TOP", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config: unexpected error: %v", err)
	}

	cfg.ModelStore = "redis"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("MODEL_STORE=redis: expected error")
	}

	cfg.ModelStore = StorePostgres
	if err := cfg.Validate(); err == nil {
		t.Fatalf("MODEL_STORE=postgres without DATABASE_URL: expected error")
	}

	cfg.DatabaseURL = "postgres://localhost/dds"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("postgres with url: unexpected error: %v", err)
	}
	if !cfg.NeedsPostgres() || cfg.NeedsSQLite() {
		t.Fatalf("NeedsPostgres/NeedsSQLite = %v/%v, want true/false", cfg.NeedsPostgres(), cfg.NeedsSQLite())
	}
}
