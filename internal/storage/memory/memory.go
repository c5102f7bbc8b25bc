//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package memory implements an in-process warehouse store. It backs
// `load --dry-run` and the loader tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pgEdge/pgedge-starload/internal/storage"
	"github.com/pgEdge/pgedge-starload/internal/warehouse"
)

// Kind is the registry name of the memory backend.
const Kind = "memory"

// ErrClosed is returned by a gateway used after Commit or Rollback.
var ErrClosed = errors.New("memory: gateway already closed")

type table struct {
	rows   []warehouse.Row
	keys   map[string]struct{}
	nextID int64
}

func (t *table) clone() *table {
	cp := &table{
		rows:   make([]warehouse.Row, len(t.rows)),
		keys:   make(map[string]struct{}, len(t.keys)),
		nextID: t.nextID,
	}
	copy(cp.rows, t.rows)
	for k := range t.keys {
		cp.keys[k] = struct{}{}
	}
	return cp
}

// Store keeps committed tables in memory. Only one gateway can be open at
// a time; Begin blocks until the previous one is released.
type Store struct {
	txLock sync.Mutex

	mu       sync.RWMutex
	tables   map[string]*table
	metadata map[string]string
}

// New returns an empty store without a schema.
func New() *Store {
	return &Store{
		tables:   make(map[string]*table),
		metadata: make(map[string]string),
	}
}

// Kind implements storage.Store.
func (s *Store) Kind() string { return Kind }

// CreateSchema implements storage.Store.
func (s *Store) CreateSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range warehouse.Tables {
		if _, ok := s.tables[t.Name]; !ok {
			s.tables[t.Name] = &table{keys: make(map[string]struct{})}
		}
	}
	return nil
}

// DropSchema implements storage.Store.
func (s *Store) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[string]*table)
	s.metadata = make(map[string]string)
	return nil
}

// SaveMetadata implements storage.Store.
func (s *Store) SaveMetadata(ctx context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.metadata[k] = v
	}
	return nil
}

// GetMetadata implements storage.Store.
func (s *Store) GetMetadata(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.metadata[key]
	if !ok {
		return "", storage.ErrNoMetadata
	}
	return v, nil
}

// Close implements storage.Store.
func (s *Store) Close() {}

// Rows returns a copy of the committed rows of t in FetchColumns order.
func (s *Store) Rows(t warehouse.Table) []warehouse.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tb, ok := s.tables[t.Name]
	if !ok {
		return nil
	}
	out := make([]warehouse.Row, len(tb.rows))
	for i, r := range tb.rows {
		out[i] = append(warehouse.Row(nil), r...)
	}
	return out
}

// Begin implements storage.Store. The gateway works on a private copy of
// every table; Commit swaps the copy in.
func (s *Store) Begin(ctx context.Context) (warehouse.Gateway, error) {
	s.txLock.Lock()

	s.mu.RLock()
	snap := make(map[string]*table, len(s.tables))
	for name, t := range s.tables {
		snap[name] = t.clone()
	}
	s.mu.RUnlock()

	return &Gateway{store: s, tables: snap}, nil
}

// Gateway is a memory transaction.
type Gateway struct {
	store  *Store
	tables map[string]*table
	done   bool
}

// InsertIfAbsent implements warehouse.Gateway.
func (g *Gateway) InsertIfAbsent(ctx context.Context, t warehouse.Table, rows []warehouse.Row) (int64, error) {
	if g.done {
		return 0, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	tb, ok := g.tables[t.Name]
	if !ok {
		return 0, fmt.Errorf("memory: table %s does not exist", t.Name)
	}

	var inserted int64
	for _, r := range rows {
		if len(r) != len(t.Columns) {
			return inserted, fmt.Errorf("memory: %s expects %d values, got %d", t.Name, len(t.Columns), len(r))
		}
		k := t.KeyOf(r)
		if _, exists := tb.keys[k]; exists {
			continue
		}
		tb.keys[k] = struct{}{}

		stored := make(warehouse.Row, 0, len(r)+1)
		if t.Generated != "" {
			tb.nextID++
			stored = append(stored, tb.nextID)
		}
		stored = append(stored, r...)
		tb.rows = append(tb.rows, stored)
		inserted++
	}
	return inserted, nil
}

// FetchAll implements warehouse.Gateway.
func (g *Gateway) FetchAll(ctx context.Context, t warehouse.Table) ([]warehouse.Row, error) {
	if g.done {
		return nil, ErrClosed
	}
	tb, ok := g.tables[t.Name]
	if !ok {
		return nil, fmt.Errorf("memory: table %s does not exist", t.Name)
	}
	out := make([]warehouse.Row, len(tb.rows))
	for i, r := range tb.rows {
		out[i] = append(warehouse.Row(nil), r...)
	}
	return out, nil
}

// Commit implements warehouse.Gateway.
func (g *Gateway) Commit(ctx context.Context) error {
	if g.done {
		return ErrClosed
	}
	g.store.mu.Lock()
	g.store.tables = g.tables
	g.store.mu.Unlock()

	g.release()
	return nil
}

// Rollback implements warehouse.Gateway.
func (g *Gateway) Rollback(ctx context.Context) error {
	if g.done {
		return nil
	}
	g.release()
	return nil
}

func (g *Gateway) release() {
	g.done = true
	g.tables = nil
	g.store.txLock.Unlock()
}

func init() {
	storage.Register(Kind, func(ctx context.Context, dsn string) (storage.Store, error) {
		return New(), nil
	})
}
