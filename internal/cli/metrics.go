//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-starload/internal/config"
	"github.com/pgEdge/pgedge-starload/internal/logging"
	"github.com/pgEdge/pgedge-starload/internal/metrics"
	"github.com/pgEdge/pgedge-starload/internal/metrics/datadog"
	"github.com/pgEdge/pgedge-starload/internal/metrics/prompush"
)

// setupMetrics installs the configured metrics backend. The returned
// function flushes it and restores the no-op backend.
func setupMetrics(ctx context.Context, mc config.MetricsConfig) (func(), error) {
	var b metrics.Backend
	switch mc.Backend {
	case "", "none":
		return func() {}, nil
	case "datadog":
		dd, err := datadog.NewBackend(ctx, datadog.Options{
			JobName:    mc.JobName,
			Tags:       mc.Tags,
			FlushEvery: time.Duration(mc.FlushInterval) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create datadog backend: %w", err)
		}
		b = dd
	case "prometheus":
		pb, err := prompush.NewBackend(mc.JobName, mc.PushgatewayURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus backend: %w", err)
		}
		b = pb
	default:
		return nil, fmt.Errorf("unknown metrics backend %q", mc.Backend)
	}

	metrics.SetBackend(b)
	logging.Debug().Str("metrics_backend", mc.Backend).Msg("Metrics enabled")

	return func() {
		metrics.SetBackend(nil)
		if err := b.Close(); err != nil {
			logging.Warn().Err(err).Str("metrics_backend", mc.Backend).Msg("Failed to flush metrics")
		}
	}, nil
}
