//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-starload/internal/logging"
	"github.com/pgEdge/pgedge-starload/internal/metrics"
	"github.com/pgEdge/pgedge-starload/internal/record"
)

// DefaultBatchSize is the number of rows per InsertIfAbsent call.
const DefaultBatchSize = 1000

// maxReportedConflicts bounds the conflicts quoted in a reject error.
const maxReportedConflicts = 5

// Loader runs one load: dimensions, then dates, then facts, then a single
// commit. A Loader holds no state between runs.
type Loader struct {
	// Policy handles natural keys seen with different attributes.
	Policy ConflictPolicy

	// BatchSize is the number of rows per insert call.
	BatchSize int
}

// NewLoader creates a loader, applying defaults for zero values.
func NewLoader(policy ConflictPolicy, batchSize int) *Loader {
	if policy == "" {
		policy = PolicyFirstWins
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{Policy: policy, BatchSize: batchSize}
}

// dimension is one dimension table with its candidate rows.
type dimension struct {
	table Table
	rows  []Row
}

// Run loads records through a gateway acquired from opener. Either every
// write of the run is committed or none is; the gateway is released on
// every return path.
func (l *Loader) Run(ctx context.Context, opener Opener, records []record.Record) (_ *Summary, err error) {
	start := time.Now()
	sum := &Summary{Records: len(records)}

	defer func() {
		sum.Duration = time.Since(start)
		status := "ok"
		if err != nil {
			status = "failed"
		}
		metrics.IncCounter(metrics.RunsTotal, 1, metrics.Labels{"status": status})
	}()

	dims, err := l.extract(records, sum)
	if err != nil {
		return nil, err
	}

	gw, err := opener.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin load: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := gw.Rollback(context.Background()); rbErr != nil {
			logging.Warn().Err(rbErr).Msg("Rollback failed")
		}
	}()

	// Dimensions, including dates, must be complete before facts resolve
	// against them.
	stepStart := time.Now()
	for _, d := range dims {
		if err := l.write(ctx, gw, d.table, d.rows, sum); err != nil {
			return nil, err
		}
	}
	observeStep("dimensions", stepStart)

	stepStart = time.Now()
	resolver, err := BuildDateResolver(ctx, gw)
	if err != nil {
		return nil, err
	}
	facts := AssembleFacts(records, resolver)
	sum.DateMisses = resolver.Misses()
	for _, f := range facts {
		for _, role := range record.AllRoles {
			if f.DateID(role) == nil {
				sum.NullDates[role]++
			}
		}
	}
	if sum.DateMisses > 0 {
		logging.Warn().
			Int("misses", sum.DateMisses).
			Msg("Timestamps without a date dimension row were stored as NULL")
		metrics.IncCounter(metrics.DateMissesTotal, float64(sum.DateMisses), nil)
	}
	logging.Debug().
		Int("dates", resolver.Len()).
		Int("facts", len(facts)).
		Msg("Resolved fact dates")
	observeStep("resolve", stepStart)

	stepStart = time.Now()
	if err := l.write(ctx, gw, Orders, rowsOf(facts), sum); err != nil {
		return nil, err
	}
	observeStep("facts", stepStart)

	if err := gw.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit load: %w", err)
	}
	committed = true

	return sum, nil
}

// extract builds the dimension candidates and applies the conflict policy.
// It touches no storage.
func (l *Loader) extract(records []record.Record, sum *Summary) ([]dimension, error) {
	dims := []dimension{
		{table: Customers, rows: rowsOf(ExtractCustomers(records))},
		{table: Products, rows: rowsOf(ExtractProducts(records))},
		{table: Sellers, rows: rowsOf(ExtractSellers(records))},
		{table: Payments, rows: rowsOf(ExtractPayments(records))},
		{table: Dates, rows: rowsOf(CollectDates(records, record.AllRoles))},
	}

	for i := range dims {
		kept, conflicts := ResolveConflicts(dims[i].table, dims[i].rows)
		dims[i].rows = kept
		sum.Conflicts = append(sum.Conflicts, conflicts...)
		sum.stats(dims[i].table.Name).Conflicts = len(conflicts)

		for _, c := range conflicts {
			logging.Warn().
				Str("table", c.Table).
				Str("key", c.Key).
				Msg("Natural key seen with different attributes")
		}
	}

	if l.Policy == PolicyReject && len(sum.Conflicts) > 0 {
		quoted := sum.Conflicts
		if len(quoted) > maxReportedConflicts {
			quoted = quoted[:maxReportedConflicts]
		}
		return nil, fmt.Errorf("%w: %d found, first: %v", ErrConflict, len(sum.Conflicts), quoted)
	}
	return dims, nil
}

// write inserts rows in BatchSize chunks and updates the table counters.
func (l *Loader) write(ctx context.Context, gw Gateway, t Table, rows []Row, sum *Summary) error {
	batch := l.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	var inserted int64
	for i := 0; i < len(rows); i += batch {
		end := min(i+batch, len(rows))
		n, err := gw.InsertIfAbsent(ctx, t, rows[i:end])
		if err != nil {
			return fmt.Errorf("insert into %s: %w", t.Name, err)
		}
		inserted += n
	}

	ts := sum.stats(t.Name)
	ts.Candidates = len(rows)
	ts.Inserted = inserted
	ts.Skipped = int64(len(rows)) - inserted

	metrics.IncCounter(metrics.RowsTotal, float64(inserted),
		metrics.Labels{"table": t.Name, "outcome": "inserted"})
	metrics.IncCounter(metrics.RowsTotal, float64(ts.Skipped),
		metrics.Labels{"table": t.Name, "outcome": "skipped"})

	logging.Info().
		Str("table", t.Name).
		Int("candidates", len(rows)).
		Int64("inserted", inserted).
		Msg("Table loaded")
	return nil
}

func observeStep(step string, start time.Time) {
	metrics.ObserveHistogram(metrics.StepDurationSeconds, time.Since(start).Seconds(),
		metrics.Labels{"step": step})
}
