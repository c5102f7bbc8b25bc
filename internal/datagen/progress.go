//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pgEdge/pgedge-starload/internal/logging"
)

// DefaultProgressInterval is how often progress is logged, in units.
const DefaultProgressInterval = 10000

// ProgressReporter logs how far a generation run has got.
type ProgressReporter struct {
	unit     string
	total    int64
	done     int64
	interval int64
	started  time.Time
}

// NewProgressReporter counts toward total units (e.g. "orders"), logging
// every interval units.
func NewProgressReporter(unit string, total, interval int64) *ProgressReporter {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	return &ProgressReporter{
		unit:     unit,
		total:    total,
		interval: interval,
		started:  time.Now(),
	}
}

// Update adds n units and logs when an interval boundary is crossed.
func (p *ProgressReporter) Update(n int64) {
	prev := p.done
	p.done += n
	if p.done/p.interval == prev/p.interval {
		return
	}

	ev := logging.Info().
		Str("unit", p.unit).
		Int64("done", p.done).
		Int64("total", p.total)
	if p.total > 0 {
		ev = ev.Float64("percent", float64(p.done)/float64(p.total)*100)
	}
	if secs := time.Since(p.started).Seconds(); secs > 0 {
		ev = ev.Float64("per_second", float64(p.done)/secs)
	}
	ev.Msg("Generating")
}

// Count returns the units reported so far.
func (p *ProgressReporter) Count() int64 {
	return p.done
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("unit", p.unit).
		Str("count", humanize.Comma(p.done)).
		Dur("elapsed", time.Since(p.started)).
		Msg("Generation complete")
}

// FormatSize renders a byte count in binary units, e.g. "5.0 MiB".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}
