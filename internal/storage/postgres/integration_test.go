//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// Integration tests for the PostgreSQL store.
// Run with: go test -tags=integration ./internal/storage/postgres/...
// Requires PostgreSQL to be available.
// Set PGEDGE_TEST_CONN environment variable to override connection string.

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-starload/internal/storage"
	"github.com/pgEdge/pgedge-starload/internal/testutil"
	"github.com/pgEdge/pgedge-starload/internal/warehouse"
)

func TestPostgresIntegration(t *testing.T) {
	connStr := testutil.NewPostgresDB(t, "store")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s, err := Open(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	if _, err := s.GetMetadata(ctx, "schema_version"); !errors.Is(err, storage.ErrNoMetadata) {
		t.Errorf("Expected ErrNoMetadata before CreateSchema, got %v", err)
	}

	t.Log("Creating schema...")
	if err := s.CreateSchema(ctx); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if err := s.SaveMetadata(ctx, map[string]string{"schema_version": storage.SchemaVersion}); err != nil {
		t.Fatalf("Failed to save metadata: %v", err)
	}
	if v, err := s.GetMetadata(ctx, "schema_version"); err != nil || v != storage.SchemaVersion {
		t.Errorf("Expected schema version %s, got %q (%v)", storage.SchemaVersion, v, err)
	}

	want := map[string]int{
		warehouse.Customers.Name: testutil.SampleCustomers,
		warehouse.Products.Name:  testutil.SampleProducts,
		warehouse.Sellers.Name:   testutil.SampleSellers,
		warehouse.Payments.Name:  testutil.SamplePayments,
		warehouse.Dates.Name:     testutil.SampleDates,
		warehouse.Orders.Name:    testutil.SampleFacts,
	}

	loader := warehouse.NewLoader(warehouse.PolicyFirstWins, 2)
	for run := 1; run <= 2; run++ {
		t.Logf("Load run %d...", run)
		if _, err := loader.Run(ctx, s, testutil.SampleOrders()); err != nil {
			t.Fatalf("Run %d failed: %v", run, err)
		}
		for name, n := range want {
			var got int
			if err := s.Pool().QueryRow(ctx, "SELECT COUNT(*) FROM "+pgIdent(name)).Scan(&got); err != nil {
				t.Fatalf("Failed to count %s: %v", name, err)
			}
			if got != n {
				t.Errorf("Run %d: %s: expected %d rows, got %d", run, name, n, got)
			}
		}
	}

	var date string
	err = s.Pool().QueryRow(ctx, `
        SELECT d.date::text
        FROM fact_orders f JOIN dim_dates d ON d.date_id = f.purchase_date_id
        WHERE f.order_id = 'o2'
    `).Scan(&date)
	if err != nil {
		t.Fatalf("Failed to query fact date: %v", err)
	}
	if date != "2017-10-04" {
		t.Errorf("Expected o2 purchase date 2017-10-04, got %s", date)
	}

	t.Log("Dropping schema...")
	if err := s.DropSchema(ctx); err != nil {
		t.Fatalf("Failed to drop schema: %v", err)
	}
	if _, err := s.GetMetadata(ctx, "schema_version"); !errors.Is(err, storage.ErrNoMetadata) {
		t.Errorf("Expected ErrNoMetadata after DropSchema, got %v", err)
	}
}
