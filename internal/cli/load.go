//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-starload/internal/logging"
	"github.com/pgEdge/pgedge-starload/internal/metrics/datadog"
	"github.com/pgEdge/pgedge-starload/internal/record"
	"github.com/pgEdge/pgedge-starload/internal/storage"
	"github.com/pgEdge/pgedge-starload/internal/storage/memory"
	"github.com/pgEdge/pgedge-starload/internal/warehouse"
)

var (
	loadInput          string
	loadDelimiter      string
	loadConflictPolicy string
	loadBatchSize      int
	loadDryRun         bool
	loadMetrics        string
	loadPushgatewayURL string
	loadMetricsTags    string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load an order export into the star schema",
	Long: `Load a flat order export into a warehouse that was previously
initialized with the 'init' command. Dimensions are written first, then
the date dimension, then the order facts, and the run commits once.

Rows whose natural key already exists are skipped, so loading the same
file twice leaves the warehouse unchanged.

Conflict Policies:
  first-wins - Keep the first attributes seen for a key and log the rest (default)
  reject     - Fail the load before writing anything

Example:
  pgedge-starload load --input orders.csv --connection "postgres://..."
  pgedge-starload load --input orders.csv --dry-run
  pgedge-starload load --input orders.csv --metrics prometheus --pushgateway-url http://localhost:9091`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadInput, "input", "",
		"CSV order export to load")
	loadCmd.Flags().StringVar(&loadDelimiter, "delimiter", "",
		"CSV field delimiter (default: ,)")
	loadCmd.Flags().StringVar(&loadConflictPolicy, "conflict-policy", "",
		"conflict policy: first-wins, reject")
	loadCmd.Flags().IntVar(&loadBatchSize, "batch-size", 0,
		"rows per insert call")
	loadCmd.Flags().BoolVar(&loadDryRun, "dry-run", false,
		"load into an in-memory warehouse and report what would be written")
	loadCmd.Flags().StringVar(&loadMetrics, "metrics", "",
		"metrics backend: none, datadog, prometheus")
	loadCmd.Flags().StringVar(&loadPushgatewayURL, "pushgateway-url", "",
		"Prometheus Pushgateway URL (prometheus metrics only)")
	loadCmd.Flags().StringVar(&loadMetricsTags, "metrics-tags", "",
		"comma separated Datadog tags, e.g. env:prod,team:data")
}

func runLoad(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if loadInput != "" {
		cfg.Load.Input = loadInput
	}
	if loadDelimiter != "" {
		cfg.Load.Delimiter = loadDelimiter
	}
	if loadConflictPolicy != "" {
		cfg.Load.ConflictPolicy = loadConflictPolicy
	}
	if loadBatchSize > 0 {
		cfg.Load.BatchSize = loadBatchSize
	}
	if loadDryRun {
		cfg.Load.DryRun = true
	}
	if loadMetrics != "" {
		cfg.Metrics.Backend = loadMetrics
	}
	if loadPushgatewayURL != "" {
		cfg.Metrics.PushgatewayURL = loadPushgatewayURL
	}
	if loadMetricsTags != "" {
		cfg.Metrics.Tags = datadog.ParseTags(loadMetricsTags)
	}

	// An in-memory warehouse is gone when the process exits.
	if cfg.Backend == "memory" && !cfg.Load.DryRun {
		logging.Info().Msg("The memory backend always loads as a dry run")
		cfg.Load.DryRun = true
	}

	// Validate configuration
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}
	policy, err := warehouse.ParseConflictPolicy(cfg.Load.ConflictPolicy)
	if err != nil {
		return err
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal; rolling back load")
			cancel()
		case <-ctx.Done():
		}
	}()

	stopMetrics, err := setupMetrics(ctx, cfg.Metrics)
	if err != nil {
		return err
	}
	defer stopMetrics()

	records, err := readInput(ctx, cfg.Load.Input, cfg.Load.Delimiter)
	if err != nil {
		return err
	}
	logging.Info().
		Str("input", cfg.Load.Input).
		Int("records", len(records)).
		Msg("Read order export")

	store, err := openLoadStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	logging.Info().
		Str("backend", store.Kind()).
		Str("conflict_policy", string(policy)).
		Int("batch_size", cfg.Load.BatchSize).
		Bool("dry_run", cfg.Load.DryRun).
		Msg("Starting load")

	loader := warehouse.NewLoader(policy, cfg.Load.BatchSize)
	summary, err := loader.Run(ctx, store, records)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("load cancelled; nothing was committed")
		}
		return fmt.Errorf("load failed; nothing was committed: %w", err)
	}
	summary.Log()

	if cfg.Load.DryRun {
		logging.Info().Msg("Dry run complete; nothing was written")
		return nil
	}

	if err := store.SaveMetadata(ctx, map[string]string{
		"last_load_at":      time.Now().UTC().Format(time.RFC3339),
		"last_load_source":  filepath.Base(cfg.Load.Input),
		"last_load_records": strconv.Itoa(summary.Records),
	}); err != nil {
		// The load itself is committed at this point.
		logging.Warn().Err(err).Msg("Failed to record load metadata")
	}

	logging.Info().
		Str("backend", store.Kind()).
		Dur("duration", summary.Duration).
		Msg("Load complete")

	return nil
}

// readInput decodes the order export at path.
func readInput(ctx context.Context, path, delimiter string) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	opt := record.DefaultReadOptions()
	if delimiter != "" {
		opt.Comma, _ = utf8.DecodeRuneInString(delimiter)
	}

	records, err := record.ReadCSV(ctx, f, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return records, nil
}

// openLoadStore returns the warehouse to load into. A dry run, which
// includes every load on the memory backend, gets a fresh in-memory
// warehouse; otherwise the configured backend must have been initialized.
func openLoadStore(ctx context.Context) (storage.Store, error) {
	if cfg.Load.DryRun {
		store := memory.New()
		if err := store.CreateSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	schemaVersion, err := store.GetMetadata(ctx, "schema_version")
	if err != nil {
		store.Close()
		if errors.Is(err, storage.ErrNoMetadata) {
			return nil, fmt.Errorf(
				"warehouse has not been initialized; run 'pgedge-starload init' first")
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	if schemaVersion != storage.SchemaVersion {
		store.Close()
		return nil, fmt.Errorf(
			"warehouse has schema version '%s' but this build uses '%s'; "+
				"run 'pgedge-starload init --drop-existing' to reinitialize",
			schemaVersion, storage.SchemaVersion)
	}
	return store, nil
}
