//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse turns flat order records into star schema rows and
// loads them through an idempotent persistence gateway.
package warehouse

import (
	"fmt"
	"strings"
)

// Row is one table row. Values follow the column order of its Table and are
// limited to nil, string, int64 and float64.
type Row []any

// Table describes a warehouse table as seen by the loader.
type Table struct {
	// Name is the table name.
	Name string

	// Generated is the surrogate key column assigned by the store, or empty.
	Generated string

	// Columns are the insertable columns, in Row order.
	Columns []string

	// Key are the natural key columns used for insert-if-absent.
	Key []string
}

// Warehouse tables.
var (
	Customers = Table{
		Name: "dim_customers",
		Columns: []string{
			"customer_id", "customer_unique_id", "customer_zip_code_prefix",
			"customer_city", "customer_state",
		},
		Key: []string{"customer_id"},
	}

	Products = Table{
		Name: "dim_products",
		Columns: []string{
			"product_id", "product_category_name", "product_name_length",
			"product_description_length", "product_photos_qty", "product_weight_g",
			"product_length_cm", "product_height_cm", "product_width_cm",
		},
		Key: []string{"product_id"},
	}

	Sellers = Table{
		Name: "dim_sellers",
		Columns: []string{
			"seller_id", "seller_zip_code_prefix", "seller_city", "seller_state",
		},
		Key: []string{"seller_id"},
	}

	Payments = Table{
		Name:      "dim_payments",
		Generated: "payment_id",
		Columns: []string{
			"order_id", "payment_type", "payment_installments", "payment_value",
		},
		Key: []string{"order_id", "payment_type", "payment_installments", "payment_value"},
	}

	Dates = Table{
		Name:      "dim_dates",
		Generated: "date_id",
		Columns:   []string{"date", "year", "month", "day", "weekday"},
		Key:       []string{"date"},
	}

	Orders = Table{
		Name: "fact_orders",
		Columns: []string{
			"order_id", "customer_id", "order_status",
			"purchase_date_id", "approved_date_id", "delivered_carrier_date_id",
			"delivered_customer_date_id", "estimated_delivery_date_id",
			"product_id", "seller_id", "price", "freight_value",
		},
		Key: []string{"order_id"},
	}
)

// Tables lists every table in load order: dimensions first, the fact last.
var Tables = []Table{Customers, Products, Sellers, Payments, Dates, Orders}

// FetchColumns returns the columns FetchAll yields: the generated key first
// (if any), then Columns.
func (t Table) FetchColumns() []string {
	if t.Generated == "" {
		return t.Columns
	}
	return append([]string{t.Generated}, t.Columns...)
}

// KeyIndexes returns the positions of the key columns within Columns.
func (t Table) KeyIndexes() []int {
	ix := make([]int, 0, len(t.Key))
	for _, k := range t.Key {
		for i, c := range t.Columns {
			if c == k {
				ix = append(ix, i)
				break
			}
		}
	}
	return ix
}

// KeyOf returns a canonical string for the natural key of row.
func (t Table) KeyOf(row Row) string {
	var b strings.Builder
	for n, i := range t.KeyIndexes() {
		if n > 0 {
			b.WriteByte(0x1f)
		}
		if i < len(row) {
			fmt.Fprint(&b, row[i])
		}
	}
	return b.String()
}

// UniqueByKey drops rows whose natural key repeats an earlier row in the
// same slice. The first occurrence wins.
func UniqueByKey(t Table, rows []Row) []Row {
	seen := make(map[string]struct{}, len(rows))
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		k := t.KeyOf(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
