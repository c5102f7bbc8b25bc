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
	"time"

	"github.com/pgEdge/pgedge-starload/internal/logging"
	"github.com/pgEdge/pgedge-starload/internal/record"
)

// TableStats counts the work done on one table.
type TableStats struct {
	Table      string
	Candidates int
	Inserted   int64
	Skipped    int64
	Conflicts  int
}

// Summary describes a finished load run.
type Summary struct {
	Records    int
	Tables     []TableStats
	Conflicts  []Conflict
	DateMisses int

	// NullDates counts fact candidates with a NULL date id, per role.
	NullDates [5]int

	Duration time.Duration
}

// Stats returns the counters of the named table.
func (s *Summary) Stats(table string) TableStats {
	for _, ts := range s.Tables {
		if ts.Table == table {
			return ts
		}
	}
	return TableStats{Table: table}
}

func (s *Summary) stats(table string) *TableStats {
	for i := range s.Tables {
		if s.Tables[i].Table == table {
			return &s.Tables[i]
		}
	}
	s.Tables = append(s.Tables, TableStats{Table: table})
	return &s.Tables[len(s.Tables)-1]
}

// Log writes the summary to the global logger.
func (s *Summary) Log() {
	logging.Info().
		Int("records", s.Records).
		Int("conflicts", len(s.Conflicts)).
		Int("date_misses", s.DateMisses).
		Dur("duration", s.Duration).
		Msg("Load summary")

	for _, ts := range s.Tables {
		logging.Info().
			Str("table", ts.Table).
			Int("candidates", ts.Candidates).
			Int64("inserted", ts.Inserted).
			Int64("skipped", ts.Skipped).
			Int("conflicts", ts.Conflicts).
			Msg("")
	}

	for _, role := range record.AllRoles {
		if n := s.NullDates[role]; n > 0 {
			logging.Debug().
				Str("role", role.Column()).
				Int("null_date_ids", n).
				Msg("")
		}
	}
}
