package db

import (
	"testing"
	"time"
)

func TestParseConfig(t *testing.T) {
	opts := DefaultPoolOptions()

	config, err := ParseConfig("postgres://loader@localhost:5432/warehouse", opts)
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if config.MaxConns != 4 || config.MinConns != 1 {
		t.Errorf("Unexpected pool size %d/%d", config.MinConns, config.MaxConns)
	}
	if config.MaxConnLifetime != 30*time.Minute {
		t.Errorf("Unexpected lifetime %v", config.MaxConnLifetime)
	}
	if got := config.ConnConfig.RuntimeParams["application_name"]; got != ApplicationName {
		t.Errorf("application_name = %q, want %q", got, ApplicationName)
	}
	if config.ConnConfig.Database != "warehouse" {
		t.Errorf("Database = %q", config.ConnConfig.Database)
	}
}

func TestParseConfigKeepsApplicationName(t *testing.T) {
	config, err := ParseConfig("postgres://loader@localhost/warehouse?application_name=nightly", DefaultPoolOptions())
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if got := config.ConnConfig.RuntimeParams["application_name"]; got != "nightly" {
		t.Errorf("application_name = %q, want nightly", got)
	}
}

func TestParseConfigMinConns(t *testing.T) {
	config, err := ParseConfig("postgres://localhost/warehouse", PoolOptions{MaxConns: 2, MinConns: 5})
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if config.MinConns != 2 {
		t.Errorf("MinConns = %d, want it capped at MaxConns", config.MinConns)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	if _, err := ParseConfig("postgres://localhost:notaport/db", DefaultPoolOptions()); err == nil {
		t.Error("Expected error for invalid connection string")
	}
}
