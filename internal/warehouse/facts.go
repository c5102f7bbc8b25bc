//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"database/sql"

	"github.com/pgEdge/pgedge-starload/internal/record"
)

// OrderFact is one fact_orders candidate.
type OrderFact struct {
	OrderID     string
	CustomerID  string
	OrderStatus string

	// DateIDs holds one date surrogate per timestamp role, indexed by
	// record.Role. A nil entry is stored as NULL.
	DateIDs [5]*int64

	ProductID    string
	SellerID     string
	Price        sql.NullFloat64
	FreightValue sql.NullFloat64
}

// DateID returns the date surrogate of role, or nil.
func (f OrderFact) DateID(role record.Role) *int64 {
	if int(role) < 0 || int(role) >= len(f.DateIDs) {
		return nil
	}
	return f.DateIDs[role]
}

// Values returns the row in Orders column order. Empty dimension keys are
// stored as NULL so that the foreign keys stay valid.
func (f OrderFact) Values() Row {
	row := make(Row, 0, len(Orders.Columns))
	row = append(row, f.OrderID, optional(f.CustomerID), f.OrderStatus)
	for _, id := range f.DateIDs {
		if id == nil {
			row = append(row, nil)
		} else {
			row = append(row, *id)
		}
	}
	return append(row, optional(f.ProductID), optional(f.SellerID), nullFloat(f.Price), nullFloat(f.FreightValue))
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// AssembleFacts builds one fact candidate per record, resolving every
// timestamp role independently. Records without an order_id are skipped.
func AssembleFacts(records []record.Record, dates *DateResolver) []OrderFact {
	out := make([]OrderFact, 0, len(records))
	for i := range records {
		r := &records[i]
		if r.OrderID == "" {
			continue
		}
		f := OrderFact{
			OrderID:      r.OrderID,
			CustomerID:   r.CustomerID,
			OrderStatus:  r.OrderStatus,
			ProductID:    r.ProductID,
			SellerID:     r.SellerID,
			Price:        r.Price,
			FreightValue: r.FreightValue,
		}
		for _, role := range record.AllRoles {
			f.DateIDs[role] = dates.Resolve(r.Timestamp(role))
		}
		out = append(out, f)
	}
	return out
}
