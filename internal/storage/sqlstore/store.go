//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package sqlstore implements the warehouse store on database/sql for
// SQLite, MySQL and SQL Server.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pgEdge/pgedge-starload/internal/logging"
	"github.com/pgEdge/pgedge-starload/internal/storage"
	"github.com/pgEdge/pgedge-starload/internal/warehouse"
)

// Store is a database/sql warehouse.
type Store struct {
	db      *sql.DB
	dialect *Dialect
	log     zerolog.Logger
}

// Open opens and pings a database with the given dialect.
func Open(ctx context.Context, d *Dialect, dsn string) (*Store, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", d.Kind, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", d.Kind, err)
	}
	if d.setup != nil {
		if err := d.setup(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: setup: %w", d.Kind, err)
		}
	}

	s := &Store{db: db, dialect: d, log: logging.With(d.Kind)}
	s.log.Info().Msg("Connected to database")
	return s, nil
}

// Kind implements storage.Store.
func (s *Store) Kind() string { return s.dialect.Kind }

// DB returns the underlying pool.
func (s *Store) DB() *sql.DB { return s.db }

// CreateSchema implements storage.Store.
func (s *Store) CreateSchema(ctx context.Context) error {
	stmts, err := createStatements(s.dialect)
	if err != nil {
		return err
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	s.log.Debug().Int("statements", len(stmts)).Msg("Created schema")
	return nil
}

// DropSchema implements storage.Store.
func (s *Store) DropSchema(ctx context.Context) error {
	for _, q := range dropStatements(s.dialect) {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}
	return nil
}

// SaveMetadata implements storage.Store.
func (s *Store) SaveMetadata(ctx context.Context, values map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for k, v := range values {
		if _, err := tx.ExecContext(ctx, s.dialect.upsertMetadata, k, v); err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// GetMetadata implements storage.Store.
func (s *Store) GetMetadata(ctx context.Context, key string) (string, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, s.dialect.tableExists, storage.MetadataTable).Scan(&n); err != nil {
		return "", err
	}
	if n == 0 {
		return "", storage.ErrNoMetadata
	}

	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		s.dialect.Quote("value"), s.dialect.Quote(storage.MetadataTable),
		s.dialect.Quote("key"), s.dialect.placeholder(1))

	var v string
	err := s.db.QueryRowContext(ctx, q, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNoMetadata
	}
	return v, err
}

// Close implements storage.Store.
func (s *Store) Close() { _ = s.db.Close() }

// Begin implements storage.Store.
func (s *Store) Begin(ctx context.Context) (warehouse.Gateway, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Gateway{tx: tx, dialect: s.dialect}, nil
}

// Gateway runs a load inside one database/sql transaction.
type Gateway struct {
	tx      *sql.Tx
	dialect *Dialect
}

// InsertIfAbsent implements warehouse.Gateway.
func (g *Gateway) InsertIfAbsent(ctx context.Context, t warehouse.Table, rows []warehouse.Row) (int64, error) {
	rows = warehouse.UniqueByKey(t, rows)

	var total int64
	for _, chunk := range storage.Chunks(rows, len(t.Columns), g.dialect.MaxParams) {
		q, args := buildInsertSQL(g.dialect, t, chunk)
		res, err := g.tx.ExecContext(ctx, q, args...)
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// FetchAll implements warehouse.Gateway.
func (g *Gateway) FetchAll(ctx context.Context, t warehouse.Table) ([]warehouse.Row, error) {
	q := buildSelectSQL(g.dialect, t)
	rows, err := g.tx.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	width := len(t.FetchColumns())
	var out []warehouse.Row
	for rows.Next() {
		vals := make([]any, width)
		dests := make([]any, width)
		for i := range vals {
			dests[i] = &vals[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, err
		}
		row := make(warehouse.Row, width)
		for i, v := range vals {
			row[i] = normalize(v)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Commit implements warehouse.Gateway.
func (g *Gateway) Commit(ctx context.Context) error {
	return g.tx.Commit()
}

// Rollback implements warehouse.Gateway.
func (g *Gateway) Rollback(ctx context.Context) error {
	err := g.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// buildInsertSQL constructs one insert-if-absent statement for rows.
func buildInsertSQL(d *Dialect, t warehouse.Table, rows []warehouse.Row) (string, []any) {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = d.Quote(c)
	}
	colList := strings.Join(cols, ", ")

	var values strings.Builder
	args := make([]any, 0, len(rows)*len(t.Columns))
	p := 1
	for i, row := range rows {
		if i > 0 {
			values.WriteString(", ")
		}
		values.WriteString("(")
		for j := range t.Columns {
			if j > 0 {
				values.WriteString(", ")
			}
			values.WriteString(d.placeholder(p))
			args = append(args, row[j])
			p++
		}
		values.WriteString(")")
	}

	var b strings.Builder
	switch d.mode {
	case insertNotExists:
		b.WriteString("INSERT INTO ")
		b.WriteString(d.Quote(t.Name))
		b.WriteString(" (")
		b.WriteString(colList)
		b.WriteString(") SELECT ")
		for i, c := range cols {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("v.")
			b.WriteString(c)
		}
		b.WriteString(" FROM (VALUES ")
		b.WriteString(values.String())
		b.WriteString(") AS v (")
		b.WriteString(colList)
		b.WriteString(") WHERE NOT EXISTS (SELECT 1 FROM ")
		b.WriteString(d.Quote(t.Name))
		b.WriteString(" t WHERE ")
		for i, k := range t.Key {
			if i > 0 {
				b.WriteString(" AND ")
			}
			fmt.Fprintf(&b, "t.%s = v.%s", d.Quote(k), d.Quote(k))
		}
		b.WriteString(")")
	default:
		b.WriteString(d.insertVerb)
		b.WriteString(" ")
		b.WriteString(d.Quote(t.Name))
		b.WriteString(" (")
		b.WriteString(colList)
		b.WriteString(") VALUES ")
		b.WriteString(values.String())
	}
	return b.String(), args
}

// buildSelectSQL reads every row of t in FetchColumns order.
func buildSelectSQL(d *Dialect, t warehouse.Table) string {
	cols := t.FetchColumns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = d.Quote(c)
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(quoted, ", "), d.Quote(t.Name), quoted[0])
}

// normalize converts driver values to the Row value set.
func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int32:
		return int64(x)
	case int:
		return int64(x)
	case float32:
		return float64(x)
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return v
	}
}

func init() {
	for _, d := range Dialects {
		storage.Register(d.Kind, func(ctx context.Context, dsn string) (storage.Store, error) {
			s, err := Open(ctx, d, dsn)
			if err != nil {
				return nil, err
			}
			return s, nil
		})
	}
}
