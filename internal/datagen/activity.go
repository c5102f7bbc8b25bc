//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// peakLevel bounds Pattern.Level and scales acceptance when sampling.
const peakLevel = 1.2

// maxDraws caps rejection sampling of one purchase timestamp.
const maxDraws = 32

// brt is the marketplace's local time. A fixed zone avoids depending on the
// host's tz database.
var brt = time.FixedZone("BRT", -3*60*60)

// Pattern shapes when purchases happen over the day and week.
type Pattern interface {
	// Name returns the pattern name.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Level returns the relative purchase activity at t, between 0 and
	// peakLevel.
	Level(t time.Time) float64
}

var patterns = make(map[string]Pattern)

// RegisterPattern adds a pattern under its name.
func RegisterPattern(p Pattern) {
	patterns[p.Name()] = p
}

// GetPattern returns the pattern registered under name.
func GetPattern(name string) (Pattern, error) {
	p, ok := patterns[name]
	if !ok {
		return nil, fmt.Errorf("unknown purchase pattern: %s (available: %v)", name, PatternNames())
	}
	return p, nil
}

// PatternNames returns the registered pattern names, sorted.
func PatternNames() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Uniform spreads purchases evenly.
type Uniform struct{}

func (Uniform) Name() string        { return "uniform" }
func (Uniform) Description() string { return "Purchases spread evenly over day and week" }
func (Uniform) Level(time.Time) float64 { return 1.0 }

// Regional follows a single-country marketplace.
// Night: 12AM - 6AM (15%)
// Morning: 6AM - 12PM (40%)
// Afternoon: 12PM - 5PM (60%)
// Evening peak: 5PM - 10PM (100%)
// Late night: 10PM - 12AM (70%)
// Weekend: 120% of weekday
type Regional struct{}

func (Regional) Name() string        { return "regional" }
func (Regional) Description() string { return "Single-country marketplace with an evening peak" }

func (Regional) Level(t time.Time) float64 {
	t = t.In(brt)
	hour := t.Hour()

	var level float64
	switch {
	case hour < 6:
		level = 0.15
	case hour < 12:
		level = 0.40
	case hour < 17:
		level = 0.60
	case hour < 22:
		level = 1.0
	default:
		level = 0.70
	}

	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		level *= 1.20
	}
	return level
}

// Global overlaps the evening peaks of three markets and never drops below
// 40% of peak. Weekends run at 110% of weekdays.
type Global struct{}

func (Global) Name() string        { return "global" }
func (Global) Description() string { return "Cross-border marketplace, active around the clock" }

func (Global) Level(t time.Time) float64 {
	utc := t.UTC()
	hour := utc.Hour()

	// Evening peaks as UTC hours: Americas 22-03, Europe 16-21, Asia 08-13.
	peak := math.Max(peakContribution(hour, 22, 3),
		math.Max(peakContribution(hour, 16, 21), peakContribution(hour, 8, 13)))
	level := 0.40 + 0.60*peak

	if wd := utc.Weekday(); wd == time.Saturday || wd == time.Sunday {
		level *= 1.10
	}
	return level
}

// peakContribution returns 1 inside [start, end), ramping down over the two
// hours on either side. Windows may wrap midnight.
func peakContribution(hour, start, end int) float64 {
	dist := func(a, b int) int { return ((b-a)%24 + 24) % 24 }

	inside := false
	if start > end {
		inside = hour >= start || hour < end
	} else {
		inside = hour >= start && hour < end
	}
	if inside {
		return 1.0
	}

	switch min(dist(hour, start), dist(end, hour)+1) {
	case 1:
		return 0.6
	case 2:
		return 0.3
	default:
		return 0.0
	}
}

// purchaseTime draws a purchase timestamp in [start, end] weighted by p.
func purchaseTime(f *Faker, p Pattern, start, end time.Time) time.Time {
	t := f.Between(start, end)
	if p == nil {
		return t
	}
	for i := 1; i < maxDraws; i++ {
		if f.Chance(p.Level(t) / peakLevel) {
			break
		}
		t = f.Between(start, end)
	}
	return t
}

func init() {
	RegisterPattern(Uniform{})
	RegisterPattern(Regional{})
	RegisterPattern(Global{})
}
