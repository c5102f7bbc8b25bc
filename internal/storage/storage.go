//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package storage defines the warehouse Store interface and the registry
// backends add themselves to.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/pgEdge/pgedge-starload/internal/warehouse"
)

// MetadataTable holds key/value facts about the warehouse (schema version,
// last load). Every backend creates it alongside the star schema.
const MetadataTable = "starload_metadata"

// SchemaVersion is written to the metadata table by CreateSchema callers.
const SchemaVersion = "1"

// ErrNoMetadata is returned by GetMetadata when the key is not set or the
// metadata table does not exist yet.
var ErrNoMetadata = errors.New("metadata not found")

// Store is a warehouse backend.
type Store interface {
	// Kind returns the registry name of the backend.
	Kind() string

	// CreateSchema creates the star schema and metadata tables if missing.
	CreateSchema(ctx context.Context) error

	// DropSchema drops every table CreateSchema creates.
	DropSchema(ctx context.Context) error

	// Begin acquires a gateway for one load run.
	Begin(ctx context.Context) (warehouse.Gateway, error)

	// SaveMetadata upserts metadata keys.
	SaveMetadata(ctx context.Context, values map[string]string) error

	// GetMetadata returns one metadata value or ErrNoMetadata.
	GetMetadata(ctx context.Context, key string) (string, error)

	// Close releases connections.
	Close()
}

// Factory opens a Store from a backend specific DSN.
type Factory func(ctx context.Context, dsn string) (Store, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register adds a backend under kind. Backends call it from init.
// It panics on an empty kind, a nil factory, or a kind registered twice.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// Open constructs a Store with the backend registered under kind.
func Open(ctx context.Context, kind, dsn string) (Store, error) {
	if kind == "" {
		return nil, fmt.Errorf("storage: missing backend kind")
	}

	mu.RLock()
	f := factories[kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported backend %q (available: %v)", kind, Kinds())
	}
	return f(ctx, dsn)
}

// Kinds returns the registered backend names, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()

	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Chunks splits rows so that no chunk binds more than maxParams values.
func Chunks(rows []warehouse.Row, columns, maxParams int) [][]warehouse.Row {
	if len(rows) == 0 {
		return nil
	}
	per := len(rows)
	if columns > 0 && maxParams > 0 {
		per = max(1, maxParams/columns)
	}

	out := make([][]warehouse.Row, 0, (len(rows)+per-1)/per)
	for i := 0; i < len(rows); i += per {
		out = append(out, rows[i:min(i+per, len(rows))])
	}
	return out
}
