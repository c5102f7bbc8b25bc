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
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-starload/internal/datagen"
	"github.com/pgEdge/pgedge-starload/internal/logging"
	"github.com/pgEdge/pgedge-starload/internal/record"
)

var (
	genOutput  string
	genOrders  int
	genSeed    int64
	genStart   string
	genEnd     string
	genPattern string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic order export",
	Long: `Generate a synthetic order export in the layout 'load' reads. Customers,
products and sellers repeat across orders, and timestamps an order status
has not reached yet are left empty.

Example:
  pgedge-starload generate --output orders.csv --orders 50000 --seed 42`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genOutput, "output", "",
		"CSV file to write (default: orders.csv)")
	generateCmd.Flags().IntVar(&genOrders, "orders", 0,
		"number of orders to generate")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0,
		"random seed for reproducible output (0 = random)")
	generateCmd.Flags().StringVar(&genStart, "start-date", "",
		"earliest purchase date (YYYY-MM-DD)")
	generateCmd.Flags().StringVar(&genEnd, "end-date", "",
		"latest purchase date (YYYY-MM-DD)")
	generateCmd.Flags().StringVar(&genPattern, "pattern", "",
		"purchase time pattern: "+strings.Join(datagen.PatternNames(), ", "))
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if genOutput != "" {
		cfg.Generate.Output = genOutput
	}
	if genOrders > 0 {
		cfg.Generate.Orders = genOrders
	}
	if genSeed != 0 {
		cfg.Generate.Seed = genSeed
	}
	if genStart != "" {
		cfg.Generate.StartDate = genStart
	}
	if genEnd != "" {
		cfg.Generate.EndDate = genEnd
	}
	if genPattern != "" {
		cfg.Generate.Pattern = genPattern
	}

	// Validate configuration
	if err := cfg.ValidateGenerate(); err != nil {
		return err
	}
	start, end, err := cfg.Generate.Range()
	if err != nil {
		return err
	}
	var pattern datagen.Pattern
	if cfg.Generate.Pattern != "" {
		if pattern, err = datagen.GetPattern(cfg.Generate.Pattern); err != nil {
			return err
		}
	}

	logging.Info().
		Int("orders", cfg.Generate.Orders).
		Str("start_date", cfg.Generate.StartDate).
		Str("end_date", cfg.Generate.EndDate).
		Str("pattern", cfg.Generate.Pattern).
		Msg("Generating order export")

	gen, err := datagen.NewOrderGenerator(datagen.OrderOptions{
		Orders:  cfg.Generate.Orders,
		Seed:    cfg.Generate.Seed,
		Start:   start,
		End:     end,
		Pattern: pattern,
	})
	if err != nil {
		return err
	}
	records, err := gen.Generate(context.Background())
	if err != nil {
		return fmt.Errorf("failed to generate orders: %w", err)
	}

	f, err := os.Create(cfg.Generate.Output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := record.WriteCSV(w, records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", cfg.Generate.Output, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", cfg.Generate.Output, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.Generate.Output, err)
	}

	size := int64(0)
	if fi, err := os.Stat(cfg.Generate.Output); err == nil {
		size = fi.Size()
	}
	logging.Info().
		Str("output", cfg.Generate.Output).
		Int("records", len(records)).
		Str("size", datagen.FormatSize(size)).
		Msg("Order export written")

	return nil
}
