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
	"fmt"
	"sort"
	"time"

	"github.com/pgEdge/pgedge-starload/internal/record"
)

// Date is a calendar date with no time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the day of the week of the date.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// DateRow is one date dimension candidate.
type DateRow struct {
	Date    Date
	Weekday string
}

// NewDateRow decomposes d into a date dimension row.
func NewDateRow(d Date) DateRow {
	return DateRow{Date: d, Weekday: d.Weekday().String()}
}

// Values returns the row in Dates column order.
func (r DateRow) Values() Row {
	return Row{
		r.Date.String(),
		int64(r.Date.Year),
		int64(r.Date.Month),
		int64(r.Date.Day),
		r.Weekday,
	}
}

// CollectDates gathers the distinct calendar dates found in any of the given
// timestamp roles across all records, in ascending order.
func CollectDates(records []record.Record, roles []record.Role) []DateRow {
	seen := make(map[Date]struct{})
	for i := range records {
		for _, role := range roles {
			ts := records[i].Timestamp(role)
			if ts == nil {
				continue
			}
			seen[DateOf(*ts)] = struct{}{}
		}
	}

	dates := make([]Date, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]DateRow, len(dates))
	for i, d := range dates {
		out[i] = NewDateRow(d)
	}
	return out
}
