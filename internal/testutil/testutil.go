//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil provides fixtures and database helpers for tests.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

// EnvTestConn overrides DefaultTestConnString.
const EnvTestConn = "PGEDGE_TEST_CONN"

const (
	// DefaultTestConnString is the server integration tests connect to.
	DefaultTestConnString = "postgres://postgres@localhost:5432/postgres"

	// TestDBPrefix prefixes every scratch database.
	TestDBPrefix = "starload_test_"
)

// adminTimeout bounds CREATE and DROP DATABASE.
const adminTimeout = 30 * time.Second

// postgresConn returns the admin connection string when a server answers,
// or "".
func postgresConn() string {
	connStr := os.Getenv(EnvTestConn)
	if connStr == "" {
		connStr = DefaultTestConnString
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return ""
	}
	defer conn.Close(ctx)
	if err := conn.Ping(ctx); err != nil {
		return ""
	}
	return connStr
}

// NewPostgresDB creates a scratch database for t and returns its connection
// string. The test is skipped when no server is reachable. The database is
// dropped when t passes and kept for inspection when it fails.
func NewPostgresDB(t *testing.T, suffix string) string {
	t.Helper()

	admin := postgresConn()
	if admin == "" {
		t.Skipf("PostgreSQL not available (set %s), skipping integration test", EnvTestConn)
	}

	suffixBytes := make([]byte, 6)
	if _, err := rand.Read(suffixBytes); err != nil {
		t.Fatalf("Failed to generate database name: %v", err)
	}
	name := TestDBPrefix + suffix + "_" + hex.EncodeToString(suffixBytes)

	if err := adminExec(admin, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("Test failed, keeping database %s", name)
			return
		}
		_ = adminExec(admin,
			"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1 AND pid <> pg_backend_pid()",
			name)
		if err := adminExec(admin, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize()); err != nil {
			t.Logf("Warning: failed to drop test database %s: %v", name, err)
		}
	})

	connStr, err := withDatabase(admin, name)
	if err != nil {
		t.Fatalf("Failed to build connection string: %v", err)
	}
	return connStr
}

// adminExec runs one statement on its own connection.
func adminExec(connStr, sql string, args ...any) error {
	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()

	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, sql, args...)
	return err
}

// withDatabase points connStr at another database, keeping credentials,
// host and port.
func withDatabase(connStr, database string) (string, error) {
	cfg, err := pgx.ParseConfig(connStr)
	if err != nil {
		return "", err
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   cfg.Host + ":" + strconv.Itoa(int(cfg.Port)),
		Path:   "/" + database,
	}
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	} else {
		u.User = url.User(cfg.User)
	}
	return u.String(), nil
}
