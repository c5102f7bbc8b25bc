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
	"strconv"
	"time"
)

// DateResolver maps calendar dates to date dimension surrogate keys.
// It is built once per load run and never shared between runs.
type DateResolver struct {
	ids    map[Date]int64
	misses int
}

// NewDateResolver returns a resolver over a fixed mapping.
func NewDateResolver(ids map[Date]int64) *DateResolver {
	cp := make(map[Date]int64, len(ids))
	for d, id := range ids {
		cp[d] = id
	}
	return &DateResolver{ids: cp}
}

// BuildDateResolver reads the whole date dimension through gw in a single
// call and indexes it by the stored year, month and day.
func BuildDateResolver(ctx context.Context, gw Gateway) (*DateResolver, error) {
	rows, err := gw.FetchAll(ctx, Dates)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", Dates.Name, err)
	}

	// date_id, date, year, month, day, weekday
	ids := make(map[Date]int64, len(rows))
	for n, row := range rows {
		if len(row) < 5 {
			return nil, fmt.Errorf("%s row %d: expected at least 5 columns, got %d", Dates.Name, n, len(row))
		}
		id, err := toInt64(row[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d date_id: %w", Dates.Name, n, err)
		}
		y, err := toInt64(row[2])
		if err != nil {
			return nil, fmt.Errorf("%s row %d year: %w", Dates.Name, n, err)
		}
		m, err := toInt64(row[3])
		if err != nil {
			return nil, fmt.Errorf("%s row %d month: %w", Dates.Name, n, err)
		}
		d, err := toInt64(row[4])
		if err != nil {
			return nil, fmt.Errorf("%s row %d day: %w", Dates.Name, n, err)
		}
		ids[Date{Year: int(y), Month: time.Month(m), Day: int(d)}] = id
	}
	return &DateResolver{ids: ids}, nil
}

// Resolve returns the surrogate key for the calendar date of ts. It returns
// nil when ts is nil or when no date row matches; the latter is counted as
// a miss.
func (r *DateResolver) Resolve(ts *time.Time) *int64 {
	if ts == nil {
		return nil
	}
	id, ok := r.ids[DateOf(*ts)]
	if !ok {
		r.misses++
		return nil
	}
	return &id
}

// Len returns the number of mapped dates.
func (r *DateResolver) Len() int {
	return len(r.ids)
}

// Misses returns how many present timestamps had no matching date row.
func (r *DateResolver) Misses() int {
	return r.misses
}

// toInt64 normalises the integer representations returned by the drivers.
func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int32:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		return int64(t), nil
	case float64:
		return int64(t), nil
	case []byte:
		return strconv.ParseInt(string(t), 10, 64)
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected integer value %v (%T)", v, v)
	}
}
