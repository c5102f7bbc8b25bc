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
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-starload/internal/logging"
	"github.com/pgEdge/pgedge-starload/internal/storage"
	"github.com/pgEdge/pgedge-starload/pkg/version"
)

var initDropExisting bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the star schema",
	Long: `Create the dimension, fact and metadata tables in the target backend.
Existing tables are kept unless --drop-existing is given.

Example:
  pgedge-starload init --backend postgres --connection "postgres://..."
  pgedge-starload init --backend sqlite --connection ./warehouse.db`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing schema before initialization")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if initDropExisting {
		cfg.Init.DropExisting = true
	}

	// Validate configuration
	if err := cfg.ValidateInit(); err != nil {
		return err
	}

	logging.Info().
		Str("backend", cfg.Backend).
		Msg("Initializing warehouse")

	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	// Refuse to mix schema versions
	existing, err := store.GetMetadata(ctx, "schema_version")
	switch {
	case err == nil && existing != storage.SchemaVersion && !cfg.Init.DropExisting:
		return fmt.Errorf(
			"warehouse has schema version '%s' but this build uses '%s'; "+
				"use --drop-existing to reinitialize",
			existing, storage.SchemaVersion)
	case err != nil && !errors.Is(err, storage.ErrNoMetadata):
		return fmt.Errorf("failed to read metadata: %w", err)
	}

	// Drop existing schema if requested
	if cfg.Init.DropExisting {
		logging.Info().Msg("Dropping existing schema")
		if err := store.DropSchema(ctx); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	logging.Info().Msg("Creating schema")
	if err := store.CreateSchema(ctx); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	meta := version.Metadata()
	meta["schema_version"] = storage.SchemaVersion
	meta["initialized_at"] = time.Now().UTC().Format(time.RFC3339)
	if err := store.SaveMetadata(ctx, meta); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().
		Str("backend", cfg.Backend).
		Str("schema_version", storage.SchemaVersion).
		Msg("Warehouse initialization complete")

	return nil
}
