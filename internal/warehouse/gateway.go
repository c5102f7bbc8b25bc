//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import "context"

// Gateway is the only path from the loader to durable storage. One Gateway
// spans one load run; nothing it writes is visible to others until Commit.
type Gateway interface {
	// InsertIfAbsent inserts every row whose natural key (t.Key) is not
	// already stored. Rows with a known key, including keys repeated within
	// rows, are skipped without error. It returns the number inserted.
	InsertIfAbsent(ctx context.Context, t Table, rows []Row) (int64, error)

	// FetchAll returns every stored row of t, including rows written earlier
	// through this gateway, in t.FetchColumns order.
	FetchAll(ctx context.Context, t Table) ([]Row, error)

	// Commit publishes all writes atomically and releases the gateway.
	Commit(ctx context.Context) error

	// Rollback discards all writes and releases the gateway. It is a no-op
	// after Commit.
	Rollback(ctx context.Context) error
}

// Opener acquires a Gateway for one load run.
type Opener interface {
	Begin(ctx context.Context) (Gateway, error)
}
