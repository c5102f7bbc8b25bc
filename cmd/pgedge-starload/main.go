// Package main is the entry point for pgedge-starload.
package main

import (
	"fmt"
	"os"

	"github.com/pgEdge/pgedge-starload/internal/cli"

	// Register storage backends
	_ "github.com/pgEdge/pgedge-starload/internal/storage/memory"
	_ "github.com/pgEdge/pgedge-starload/internal/storage/postgres"
	_ "github.com/pgEdge/pgedge-starload/internal/storage/sqlstore"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
