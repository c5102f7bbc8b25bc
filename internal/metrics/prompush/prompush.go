//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package prompush implements a Prometheus Pushgateway backend for
// internal/metrics. A load is a short-lived batch job, so metrics are pushed
// rather than scraped.
package prompush

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/pgEdge/pgedge-starload/internal/metrics"
)

// pushTimeout bounds a single push.
const pushTimeout = 10 * time.Second

// durationBuckets cover sub-second steps up to multi-minute loads.
var durationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 300}

// Backend collects observations in a private registry and pushes them to a
// Pushgateway on Flush.
type Backend struct {
	url string
	job string

	reg *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// NewBackend returns a backend pushing to url under job.
func NewBackend(job, url string) (*Backend, error) {
	job = strings.TrimSpace(job)
	url = strings.TrimSpace(url)
	if job == "" {
		return nil, errors.New("prompush: job name is required")
	}
	if url == "" {
		return nil, errors.New("prompush: pushgateway url is required")
	}
	return &Backend{
		url:        url,
		job:        job,
		reg:        prometheus.NewRegistry(),
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}, nil
}

// Registry returns the registry metrics are collected in.
func (b *Backend) Registry() *prometheus.Registry { return b.reg }

// IncCounter implements metrics.Backend. The label names of the first call
// fix the label set of a metric; later calls with other names are dropped.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if delta < 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	vec, ok := b.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: name,
			Help: "pgedge-starload counter " + name,
		}, labelNames(labels))
		if err := b.reg.Register(vec); err != nil {
			return
		}
		b.counters[name] = vec
	}
	c, err := vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		return
	}
	c.Add(delta)
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	b.mu.Lock()
	defer b.mu.Unlock()

	vec, ok := b.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    name,
			Help:    "pgedge-starload histogram " + name,
			Buckets: durationBuckets,
		}, labelNames(labels))
		if err := b.reg.Register(vec); err != nil {
			return
		}
		b.histograms[name] = vec
	}
	h, err := vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		return
	}
	h.Observe(value)
}

// Flush pushes every collected metric, replacing the job's previous push.
func (b *Backend) Flush() error {
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	return push.New(b.url, b.job).Gatherer(b.reg).PushContext(ctx)
}

// Close implements metrics.Backend.
func (b *Backend) Close() error {
	return b.Flush()
}

func labelNames(labels metrics.Labels) []string {
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var _ metrics.Backend = (*Backend)(nil)
