//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/pgEdge/pgedge-starload/internal/warehouse"
)

func TestRegisterAndOpen(t *testing.T) {
	var gotDSN string
	Register("test-registry", func(ctx context.Context, dsn string) (Store, error) {
		gotDSN = dsn
		return nil, nil
	})

	if _, err := Open(context.Background(), "test-registry", "file.db"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if gotDSN != "file.db" {
		t.Errorf("Expected DSN to be passed through, got %q", gotDSN)
	}

	found := false
	for _, k := range Kinds() {
		if k == "test-registry" {
			found = true
		}
	}
	if !found {
		t.Errorf("Kinds() missing test-registry: %v", Kinds())
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(context.Background(), "", "dsn"); err == nil {
		t.Error("Expected error for empty kind")
	}
	_, err := Open(context.Background(), "no-such-backend", "dsn")
	if err == nil {
		t.Fatal("Expected error for unknown kind")
	}
	if !strings.Contains(err.Error(), "unsupported backend") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestRegisterPanics(t *testing.T) {
	factory := func(ctx context.Context, dsn string) (Store, error) { return nil, nil }
	Register("test-duplicate", factory)

	tests := []struct {
		name    string
		kind    string
		factory Factory
	}{
		{"empty kind", "", factory},
		{"nil factory", "test-nil", nil},
		{"duplicate", "test-duplicate", factory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Expected panic")
				}
			}()
			Register(tt.kind, tt.factory)
		})
	}
}

func TestKindsSorted(t *testing.T) {
	Register("test-zz", func(ctx context.Context, dsn string) (Store, error) { return nil, nil })
	Register("test-aa", func(ctx context.Context, dsn string) (Store, error) { return nil, nil })

	kinds := Kinds()
	for i := 1; i < len(kinds); i++ {
		if kinds[i-1] > kinds[i] {
			t.Errorf("Kinds not sorted: %v", kinds)
		}
	}
}

func TestChunks(t *testing.T) {
	rows := make([]warehouse.Row, 10)
	for i := range rows {
		rows[i] = warehouse.Row{i, i, i}
	}

	tests := []struct {
		name      string
		columns   int
		maxParams int
		want      []int
	}{
		{"fits", 3, 100, []int{10}},
		{"exact", 3, 15, []int{5, 5}},
		{"remainder", 3, 12, []int{4, 4, 2}},
		{"one per chunk", 3, 3, []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}},
		{"limit below width", 3, 2, []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}},
		{"no limit", 3, 0, []int{10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Chunks(rows, tt.columns, tt.maxParams)
			if len(chunks) != len(tt.want) {
				t.Fatalf("Expected %d chunks, got %d", len(tt.want), len(chunks))
			}
			total := 0
			for i, c := range chunks {
				if len(c) != tt.want[i] {
					t.Errorf("Chunk %d: expected %d rows, got %d", i, tt.want[i], len(c))
				}
				total += len(c)
			}
			if total != len(rows) {
				t.Errorf("Expected %d rows in total, got %d", len(rows), total)
			}
		})
	}

	if Chunks(nil, 3, 10) != nil {
		t.Error("Expected nil for no rows")
	}
}
