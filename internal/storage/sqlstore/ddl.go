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
	"fmt"
	"slices"
	"strings"

	"github.com/pgEdge/pgedge-starload/internal/storage"
	"github.com/pgEdge/pgedge-starload/internal/warehouse"
)

// colType is a dialect independent column type.
type colType int

const (
	colID colType = iota
	colZip
	colName
	colState
	colInt
	colFloat
	colMoney
	colDate
	colWeekday
	colStatus
)

// columnTypes maps every warehouse column to its logical type.
var columnTypes = map[string]colType{
	"customer_id":                colID,
	"customer_unique_id":         colID,
	"customer_zip_code_prefix":   colZip,
	"customer_city":              colName,
	"customer_state":             colState,
	"product_id":                 colID,
	"product_category_name":      colName,
	"product_name_length":        colInt,
	"product_description_length": colInt,
	"product_photos_qty":         colInt,
	"product_weight_g":           colFloat,
	"product_length_cm":          colFloat,
	"product_height_cm":          colFloat,
	"product_width_cm":           colFloat,
	"seller_id":                  colID,
	"seller_zip_code_prefix":     colZip,
	"seller_city":                colName,
	"seller_state":               colState,
	"order_id":                   colID,
	"payment_type":               colStatus,
	"payment_installments":       colInt,
	"payment_value":              colMoney,
	"date":                       colDate,
	"year":                       colInt,
	"month":                      colInt,
	"day":                        colInt,
	"weekday":                    colWeekday,
	"order_status":               colStatus,
	"purchase_date_id":           colInt,
	"approved_date_id":           colInt,
	"delivered_carrier_date_id":  colInt,
	"delivered_customer_date_id": colInt,
	"estimated_delivery_date_id": colInt,
	"price":                      colMoney,
	"freight_value":              colMoney,
}

// notNull lists columns declared NOT NULL besides primary keys.
var notNull = map[string][]string{
	warehouse.Payments.Name: warehouse.Payments.Columns,
	warehouse.Dates.Name:    warehouse.Dates.Columns,
}

// foreignKeys maps fact columns to the dimension column they reference.
var foreignKeys = map[string][2]string{
	"customer_id":                {warehouse.Customers.Name, "customer_id"},
	"product_id":                 {warehouse.Products.Name, "product_id"},
	"seller_id":                  {warehouse.Sellers.Name, "seller_id"},
	"purchase_date_id":           {warehouse.Dates.Name, "date_id"},
	"approved_date_id":           {warehouse.Dates.Name, "date_id"},
	"delivered_carrier_date_id":  {warehouse.Dates.Name, "date_id"},
	"delivered_customer_date_id": {warehouse.Dates.Name, "date_id"},
	"estimated_delivery_date_id": {warehouse.Dates.Name, "date_id"},
}

// createTableSQL returns the CREATE TABLE statement of t for d.
func createTableSQL(d *Dialect, t warehouse.Table) (string, error) {
	defs := make([]string, 0, len(t.Columns)+4)
	if t.Generated != "" {
		defs = append(defs, d.Quote(t.Generated)+" "+d.serial)
	}

	for _, c := range t.Columns {
		ct, ok := columnTypes[c]
		if !ok {
			return "", fmt.Errorf("no column type for %s.%s", t.Name, c)
		}
		def := d.Quote(c) + " " + d.types[ct]
		if slices.Contains(notNull[t.Name], c) || (t.Generated == "" && slices.Contains(t.Key, c)) {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}

	keys := make([]string, len(t.Key))
	for i, k := range t.Key {
		keys[i] = d.Quote(k)
	}
	if t.Generated == "" {
		defs = append(defs, "PRIMARY KEY ("+strings.Join(keys, ", ")+")")
	} else {
		defs = append(defs, "UNIQUE ("+strings.Join(keys, ", ")+")")
	}

	if t.Name == warehouse.Orders.Name {
		for _, c := range t.Columns {
			ref, ok := foreignKeys[c]
			if !ok {
				continue
			}
			defs = append(defs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
				d.Quote(c), d.Quote(ref[0]), d.Quote(ref[1])))
		}
	}

	return d.createTable(t.Name, strings.Join(defs, ", ")) + d.tableSuffix, nil
}

// createStatements returns the DDL of the star schema and metadata table,
// dimensions first.
func createStatements(d *Dialect) ([]string, error) {
	stmts := make([]string, 0, len(warehouse.Tables)+1)
	for _, t := range warehouse.Tables {
		s, err := createTableSQL(d, t)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}

	meta := fmt.Sprintf("%s VARCHAR(64) NOT NULL PRIMARY KEY, %s VARCHAR(1024) NOT NULL",
		d.Quote("key"), d.Quote("value"))
	stmts = append(stmts, d.createTable(storage.MetadataTable, meta)+d.tableSuffix)
	return stmts, nil
}

// dropStatements returns DROP statements, fact table first.
func dropStatements(d *Dialect) []string {
	stmts := []string{"DROP TABLE IF EXISTS " + d.Quote(storage.MetadataTable)}
	for i := len(warehouse.Tables) - 1; i >= 0; i-- {
		stmts = append(stmts, "DROP TABLE IF EXISTS "+d.Quote(warehouse.Tables[i].Name))
	}
	return stmts
}
