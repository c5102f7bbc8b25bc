//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package postgres implements the warehouse store on PostgreSQL with pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-starload/internal/db"
	"github.com/pgEdge/pgedge-starload/internal/storage"
	"github.com/pgEdge/pgedge-starload/internal/warehouse"
)

// Kind is the registry name of the PostgreSQL backend.
const Kind = "postgres"

// maxParams is the bind parameter limit of the extended protocol.
const maxParams = 65535

// Store is a PostgreSQL warehouse.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to PostgreSQL.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Kind implements storage.Store.
func (s *Store) Kind() string { return Kind }

// Pool returns the underlying pool.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// CreateSchema implements storage.Store.
func (s *Store) CreateSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return db.CreateMetadataTable(ctx, s.pool)
}

// DropSchema implements storage.Store.
func (s *Store) DropSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, dropSchemaSQL); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return db.DropMetadata(ctx, s.pool)
}

// SaveMetadata implements storage.Store.
func (s *Store) SaveMetadata(ctx context.Context, values map[string]string) error {
	return db.SaveMetadata(ctx, s.pool, values)
}

// GetMetadata implements storage.Store.
func (s *Store) GetMetadata(ctx context.Context, key string) (string, error) {
	v, err := db.GetMetadataValue(ctx, s.pool, key)
	if errors.Is(err, db.ErrMetadataNotFound) {
		return "", storage.ErrNoMetadata
	}
	return v, err
}

// Close implements storage.Store.
func (s *Store) Close() {
	s.pool.Close()
}

// Begin implements storage.Store.
func (s *Store) Begin(ctx context.Context) (warehouse.Gateway, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &Gateway{tx: tx}, nil
}

// Gateway runs a load inside one pgx transaction.
type Gateway struct {
	tx pgx.Tx
}

// InsertIfAbsent implements warehouse.Gateway with ON CONFLICT DO NOTHING.
func (g *Gateway) InsertIfAbsent(ctx context.Context, t warehouse.Table, rows []warehouse.Row) (int64, error) {
	rows = warehouse.UniqueByKey(t, rows)

	var total int64
	for _, chunk := range storage.Chunks(rows, len(t.Columns), maxParams) {
		sql, args := buildInsertSQL(t, chunk)
		cmd, err := g.tx.Exec(ctx, sql, args...)
		if err != nil {
			return total, err
		}
		total += cmd.RowsAffected()
	}
	return total, nil
}

// FetchAll implements warehouse.Gateway.
func (g *Gateway) FetchAll(ctx context.Context, t warehouse.Table) ([]warehouse.Row, error) {
	cols := t.FetchColumns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgIdent(c)
	}
	sql := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(quoted, ", "), pgIdent(t.Name), quoted[0])

	rows, err := g.tx.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []warehouse.Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(warehouse.Row, len(vals))
		for i, v := range vals {
			row[i] = normalize(v)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Commit implements warehouse.Gateway.
func (g *Gateway) Commit(ctx context.Context) error {
	return g.tx.Commit(ctx)
}

// Rollback implements warehouse.Gateway.
func (g *Gateway) Rollback(ctx context.Context) error {
	err := g.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// buildInsertSQL constructs one multi-row INSERT that skips rows whose
// natural key already exists.
//
// rows must have len(t.Columns) values each.
func buildInsertSQL(t warehouse.Table, rows []warehouse.Row) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pgIdent(t.Name))
	b.WriteString(" (")
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(t.Columns))
	p := 1
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range t.Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", p)
			args = append(args, row[j])
			p++
		}
		b.WriteString(")")
	}

	b.WriteString(" ON CONFLICT (")
	for i, c := range t.Key {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgIdent(c))
	}
	b.WriteString(") DO NOTHING")

	return b.String(), args
}

// pgIdent quotes an identifier.
func pgIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// normalize converts pgx values to the Row value set.
func normalize(v any) any {
	switch x := v.(type) {
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case time.Time:
		return x.Format("2006-01-02")
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return v
	}
}

func init() {
	storage.Register(Kind, func(ctx context.Context, dsn string) (storage.Store, error) {
		s, err := Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
