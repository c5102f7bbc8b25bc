//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Drivers for the dialects below.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// insertMode selects how a dialect expresses insert-if-absent.
type insertMode int

const (
	// insertIgnore prefixes a plain multi-row INSERT with a dialect verb
	// that skips rows violating a unique constraint.
	insertIgnore insertMode = iota

	// insertNotExists selects from a VALUES list the rows whose key is not
	// yet present.
	insertNotExists
)

// Dialect holds the SQL differences between database/sql backends.
type Dialect struct {
	// Kind is the registry name.
	Kind string

	// Driver is the database/sql driver name.
	Driver string

	// MaxParams is the bind parameter limit per statement.
	MaxParams int

	mode       insertMode
	insertVerb string

	quote       func(string) string
	placeholder func(int) string

	// Column types by logical type.
	types  map[colType]string
	serial string

	createTable func(name, body string) string
	tableSuffix string

	upsertMetadata string
	tableExists    string

	// setup runs once after the pool is opened.
	setup func(ctx context.Context, db *sql.DB) error
}

// Dialects supported by this package.
var (
	SQLite = &Dialect{
		Kind:       "sqlite",
		Driver:     "sqlite",
		MaxParams:  32766,
		mode:       insertIgnore,
		insertVerb: "INSERT OR IGNORE INTO",
		quote:      doubleQuote,
		placeholder: func(int) string {
			return "?"
		},
		types: map[colType]string{
			colID:      "TEXT",
			colZip:     "TEXT",
			colName:    "TEXT",
			colState:   "TEXT",
			colInt:     "INTEGER",
			colFloat:   "REAL",
			colMoney:   "REAL",
			colDate:    "TEXT",
			colWeekday: "TEXT",
			colStatus:  "TEXT",
		},
		serial: "INTEGER PRIMARY KEY AUTOINCREMENT",
		createTable: func(name, body string) string {
			return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", doubleQuote(name), body)
		},
		upsertMetadata: `INSERT INTO starload_metadata ("key", "value") VALUES (?, ?)
ON CONFLICT ("key") DO UPDATE SET "value" = excluded."value"`,
		tableExists: `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
		setup: func(ctx context.Context, db *sql.DB) error {
			// One connection keeps the pragma in force and lets
			// ":memory:" databases survive between statements.
			db.SetMaxOpenConns(1)
			_, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON")
			return err
		},
	}

	MySQL = &Dialect{
		Kind:       "mysql",
		Driver:     "mysql",
		MaxParams:  65535,
		mode:       insertIgnore,
		insertVerb: "INSERT IGNORE INTO",
		quote:      backQuote,
		placeholder: func(int) string {
			return "?"
		},
		types: map[colType]string{
			colID:      "VARCHAR(64)",
			colZip:     "VARCHAR(10)",
			colName:    "VARCHAR(100)",
			colState:   "VARCHAR(4)",
			colInt:     "INT",
			colFloat:   "DOUBLE",
			colMoney:   "DECIMAL(12,2)",
			colDate:    "DATE",
			colWeekday: "VARCHAR(9)",
			colStatus:  "VARCHAR(20)",
		},
		serial: "INT AUTO_INCREMENT PRIMARY KEY",
		createTable: func(name, body string) string {
			return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", backQuote(name), body)
		},
		tableSuffix: " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
		upsertMetadata: "INSERT INTO starload_metadata (`key`, `value`) VALUES (?, ?)\n" +
			"ON DUPLICATE KEY UPDATE `value` = VALUES(`value`)",
		tableExists: `SELECT COUNT(*) FROM information_schema.tables
WHERE table_schema = DATABASE() AND table_name = ?`,
	}

	SQLServer = &Dialect{
		Kind:      "sqlserver",
		Driver:    "sqlserver",
		MaxParams: 2000,
		mode:      insertNotExists,
		quote:     bracketQuote,
		placeholder: func(n int) string {
			return fmt.Sprintf("@p%d", n)
		},
		types: map[colType]string{
			colID:      "VARCHAR(64)",
			colZip:     "VARCHAR(10)",
			colName:    "NVARCHAR(100)",
			colState:   "VARCHAR(4)",
			colInt:     "INT",
			colFloat:   "FLOAT",
			colMoney:   "DECIMAL(12,2)",
			colDate:    "DATE",
			colWeekday: "VARCHAR(9)",
			colStatus:  "VARCHAR(20)",
		},
		serial: "INT IDENTITY(1,1) PRIMARY KEY",
		createTable: func(name, body string) string {
			return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL BEGIN CREATE TABLE %s (%s); END;",
				name, bracketQuote(name), body)
		},
		upsertMetadata: `UPDATE starload_metadata SET [value] = @p2 WHERE [key] = @p1;
IF @@ROWCOUNT = 0 INSERT INTO starload_metadata ([key], [value]) VALUES (@p1, @p2);`,
		tableExists: `SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_NAME = @p1`,
	}
)

// Dialects lists every dialect this package registers.
var Dialects = []*Dialect{SQLite, MySQL, SQLServer}

// Quote quotes an identifier.
func (d *Dialect) Quote(ident string) string {
	return d.quote(ident)
}

func doubleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func backQuote(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func bracketQuote(s string) string {
	return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
}
