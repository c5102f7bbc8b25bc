//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-starload/internal/logging"
)

// MetadataTable is the key/value table written by init and load.
const MetadataTable = "starload_metadata"

// ErrMetadataNotFound is returned when a key is not set or the metadata
// table does not exist.
var ErrMetadataNotFound = errors.New("metadata not found")

// createMetadataTableSQL creates the metadata table if it doesn't exist.
const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS starload_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// CreateMetadataTable creates the metadata table if it doesn't exist.
func CreateMetadataTable(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, createMetadataTableSQL); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}
	return nil
}

// SaveMetadata upserts the given keys in one transaction.
func SaveMetadata(ctx context.Context, pool *pgxpool.Pool, values map[string]string) error {
	if err := CreateMetadataTable(ctx, pool); err != nil {
		return err
	}

	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for key, value := range values {
			_, err := tx.Exec(ctx, `
                INSERT INTO starload_metadata (key, value) VALUES ($1, $2)
                ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
            `, key, value)
			if err != nil {
				return fmt.Errorf("failed to save metadata %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.Debug().
		Int("keys", len(values)).
		Msg("Saved metadata")

	return nil
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, pool *pgxpool.Pool, key string) (string, error) {
	exists, err := MetadataExists(ctx, pool)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrMetadataNotFound
	}

	var value string
	err = pool.QueryRow(ctx, `
        SELECT value FROM starload_metadata WHERE key = $1
    `, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrMetadataNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", MetadataTable))
	return err
}

// MetadataExists checks if the metadata table exists.
func MetadataExists(ctx context.Context, pool *pgxpool.Pool) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_schema = current_schema() AND table_name = $1
        )
    `, MetadataTable).Scan(&exists)
	return exists, err
}
