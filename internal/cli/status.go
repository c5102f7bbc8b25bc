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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-starload/internal/storage"
)

// statusKeys are the metadata keys init and load record, in display order.
var statusKeys = []string{
	"schema_version",
	"version",
	"commit",
	"initialized_at",
	"last_load_at",
	"last_load_source",
	"last_load_records",
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show warehouse initialization and last load",
	Long: `Show the metadata recorded by 'init' and 'load' in the configured
warehouse: schema version, the loader version that created it, and the
source and size of the last committed load.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	values, err := readStatus(ctx, store)
	if err != nil {
		return err
	}
	if values["schema_version"] == "" {
		cmd.Printf("%s warehouse is not initialized\n", store.Kind())
		return nil
	}

	cmd.Printf("Backend: %s\n", store.Kind())
	for _, key := range statusKeys {
		v := values[key]
		if v == "" {
			v = "-"
		}
		cmd.Printf("  %-18s %s\n", key+":", v)
	}
	return nil
}

// readStatus returns the statusKeys that are set.
func readStatus(ctx context.Context, store storage.Store) (map[string]string, error) {
	values := make(map[string]string, len(statusKeys))
	for _, key := range statusKeys {
		v, err := store.GetMetadata(ctx, key)
		if errors.Is(err, storage.ErrNoMetadata) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read metadata %s: %w", key, err)
		}
		values[key] = v
	}
	return values, nil
}
