//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen generates synthetic order exports.
package datagen

import (
	"math"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

var states = []string{
	"SP", "RJ", "MG", "RS", "PR", "SC", "BA", "DF", "ES", "GO",
	"PE", "CE", "PA", "MT", "MA", "MS", "PB", "PI", "RN", "AL",
}

// Faker draws marketplace values from a seeded gofakeit source.
type Faker struct {
	src *gofakeit.Faker
}

// NewFaker returns a Faker. The same non-zero seed yields the same
// sequence; zero picks a random seed.
func NewFaker(seed uint64) *Faker {
	return &Faker{src: gofakeit.New(seed)}
}

// Place is the location of a customer or seller.
type Place struct {
	ZipPrefix string
	City      string
	State     string
}

// Place draws a five digit zip prefix, a city and a state.
func (f *Faker) Place() Place {
	return Place{
		ZipPrefix: f.src.DigitN(5),
		City:      f.src.City(),
		State:     Choose(f, states),
	}
}

// HexID returns a 32 character lowercase hex identifier, the shape of every
// id in the export.
func (f *Faker) HexID() string {
	return strings.ReplaceAll(f.src.UUID(), "-", "")
}

// Between returns a UTC time in [start, end], truncated to the second.
func (f *Faker) Between(start, end time.Time) time.Time {
	return f.src.DateRange(start, end).UTC().Truncate(time.Second)
}

// Int returns an integer in [lo, hi].
func (f *Faker) Int(lo, hi int) int {
	return f.src.IntRange(lo, hi)
}

// Float64 returns a float in [lo, hi].
func (f *Faker) Float64(lo, hi float64) float64 {
	return f.src.Float64Range(lo, hi)
}

// Money returns an amount in [lo, hi] rounded to cents.
func (f *Faker) Money(lo, hi float64) float64 {
	return math.Round(f.src.Float64Range(lo, hi)*100) / 100
}

// Chance returns true with probability p.
func (f *Faker) Chance(p float64) bool {
	return f.Float64(0, 1) < p
}

// Choose returns a random element, or the zero value of an empty slice.
func Choose[T any](f *Faker, items []T) T {
	if len(items) == 0 {
		var zero T
		return zero
	}
	return items[f.Int(0, len(items)-1)]
}

// ChooseWeighted returns an element with probability proportional to its
// weight. weights must be as long as items.
func ChooseWeighted[T any](f *Faker, items []T, weights []int) T {
	if len(items) == 0 || len(weights) == 0 {
		var zero T
		return zero
	}

	total := 0
	for _, w := range weights {
		total += w
	}

	r := f.Int(1, total)
	for i, w := range weights {
		if r -= w; r <= 0 {
			return items[i]
		}
	}
	return items[len(items)-1]
}
