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
	"errors"
	"fmt"
)

// ConflictPolicy decides what happens when two distinct dimension tuples
// share a natural key (e.g. one customer_id seen with two cities).
type ConflictPolicy string

const (
	// PolicyFirstWins keeps the first tuple seen and drops the others.
	// Rows already stored always win over the batch.
	PolicyFirstWins ConflictPolicy = "first-wins"

	// PolicyReject fails the load before anything is written when the
	// input itself holds conflicting tuples. It only compares rows within
	// one run: a tuple that differs from a row stored by an earlier run is
	// skipped like any known key and counted in Summary as skipped.
	PolicyReject ConflictPolicy = "reject"
)

// ErrConflict is returned (wrapped) when PolicyReject finds a conflict.
var ErrConflict = errors.New("conflicting dimension rows")

// ParseConflictPolicy validates a policy name. Empty means PolicyFirstWins.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(s) {
	case "", PolicyFirstWins:
		return PolicyFirstWins, nil
	case PolicyReject:
		return PolicyReject, nil
	default:
		return "", fmt.Errorf("unknown conflict policy %q (want %s or %s)",
			s, PolicyFirstWins, PolicyReject)
	}
}

// Conflict describes a row dropped because an earlier row had the same key.
type Conflict struct {
	Table   string
	Key     string
	Kept    Row
	Dropped Row
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s key %q: kept %v, dropped %v", c.Table, c.Key, c.Kept, c.Dropped)
}

// ResolveConflicts keeps the first row per natural key and reports every
// later row with the same key.
func ResolveConflicts(t Table, rows []Row) ([]Row, []Conflict) {
	first := make(map[string]int, len(rows))
	kept := make([]Row, 0, len(rows))
	var conflicts []Conflict
	for _, r := range rows {
		k := t.KeyOf(r)
		if i, ok := first[k]; ok {
			conflicts = append(conflicts, Conflict{Table: t.Name, Key: k, Kept: kept[i], Dropped: r})
			continue
		}
		first[k] = len(kept)
		kept = append(kept, r)
	}
	return kept, conflicts
}
