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
	"math"

	"github.com/pgEdge/pgedge-starload/internal/record"
)

// Customer is a customer dimension candidate.
type Customer struct {
	ID        string
	UniqueID  string
	ZipPrefix string
	City      string
	State     string
}

// Values returns the row in Customers column order.
func (c Customer) Values() Row {
	return Row{c.ID, c.UniqueID, c.ZipPrefix, c.City, c.State}
}

// Product is a product dimension candidate.
type Product struct {
	ID                string
	Category          sql.NullString
	NameLength        sql.NullInt64
	DescriptionLength sql.NullInt64
	PhotosQty         sql.NullInt64
	WeightG           sql.NullFloat64
	LengthCm          sql.NullFloat64
	HeightCm          sql.NullFloat64
	WidthCm           sql.NullFloat64
}

// Values returns the row in Products column order.
func (p Product) Values() Row {
	return Row{
		p.ID,
		nullString(p.Category),
		nullInt(p.NameLength),
		nullInt(p.DescriptionLength),
		nullInt(p.PhotosQty),
		nullFloat(p.WeightG),
		nullFloat(p.LengthCm),
		nullFloat(p.HeightCm),
		nullFloat(p.WidthCm),
	}
}

// Seller is a seller dimension candidate.
type Seller struct {
	ID        string
	ZipPrefix string
	City      string
	State     string
}

// Values returns the row in Sellers column order.
func (s Seller) Values() Row {
	return Row{s.ID, s.ZipPrefix, s.City, s.State}
}

// Payment is one payment detail of an order. An order paid in several
// parts has several payments.
type Payment struct {
	OrderID      string
	Type         string
	Installments sql.NullInt64
	Value        sql.NullFloat64
}

// Values returns the row in Payments column order.
func (p Payment) Values() Row {
	return Row{p.OrderID, p.Type, nullInt(p.Installments), nullFloat(p.Value)}
}

// ExtractCustomers projects the customer attributes of every record and
// returns the distinct tuples in first-seen order.
func ExtractCustomers(records []record.Record) []Customer {
	out := make([]Customer, 0, len(records))
	for i := range records {
		r := &records[i]
		if r.CustomerID == "" {
			continue
		}
		out = append(out, Customer{
			ID:        r.CustomerID,
			UniqueID:  r.CustomerUniqueID,
			ZipPrefix: r.CustomerZipPrefix,
			City:      r.CustomerCity,
			State:     r.CustomerState,
		})
	}
	return distinct(out)
}

// ExtractProducts projects the product attributes of every record and
// returns the distinct tuples in first-seen order.
func ExtractProducts(records []record.Record) []Product {
	out := make([]Product, 0, len(records))
	for i := range records {
		r := &records[i]
		if r.ProductID == "" {
			continue
		}
		out = append(out, Product{
			ID:                r.ProductID,
			Category:          r.ProductCategory,
			NameLength:        r.ProductNameLength,
			DescriptionLength: r.ProductDescriptionLength,
			PhotosQty:         r.ProductPhotosQty,
			WeightG:           r.ProductWeightG,
			LengthCm:          r.ProductLengthCm,
			HeightCm:          r.ProductHeightCm,
			WidthCm:           r.ProductWidthCm,
		})
	}
	return distinct(out)
}

// ExtractSellers projects the seller attributes of every record and returns
// the distinct tuples in first-seen order.
func ExtractSellers(records []record.Record) []Seller {
	out := make([]Seller, 0, len(records))
	for i := range records {
		r := &records[i]
		if r.SellerID == "" {
			continue
		}
		out = append(out, Seller{
			ID:        r.SellerID,
			ZipPrefix: r.SellerZipPrefix,
			City:      r.SellerCity,
			State:     r.SellerState,
		})
	}
	return distinct(out)
}

// ExtractPayments returns the distinct payment tuples. Only complete tuples
// are kept: SQL unique constraints treat NULLs as distinct, so a tuple with
// a missing part would be inserted again on every run. Values are rounded
// to cents before deduplication so that the key matches what a DECIMAL
// column stores.
func ExtractPayments(records []record.Record) []Payment {
	out := make([]Payment, 0, len(records))
	for i := range records {
		r := &records[i]
		if r.OrderID == "" {
			continue
		}
		if r.PaymentType == "" || !r.PaymentInstallments.Valid || !r.PaymentValue.Valid {
			continue
		}
		out = append(out, Payment{
			OrderID:      r.OrderID,
			Type:         r.PaymentType,
			Installments: r.PaymentInstallments,
			Value:        sql.NullFloat64{Float64: roundCents(r.PaymentValue.Float64), Valid: true},
		})
	}
	return distinct(out)
}

// roundCents rounds half away from zero to two decimals.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// distinct keeps the first occurrence of every value.
func distinct[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	out := items[:0]
	for _, it := range items {
		if _, dup := seen[it]; dup {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// rowsOf converts candidates to rows.
func rowsOf[T interface{ Values() Row }](items []T) []Row {
	out := make([]Row, len(items))
	for i, it := range items {
		out[i] = it.Values()
	}
	return out
}

func nullString(v sql.NullString) any {
	if !v.Valid {
		return nil
	}
	return v.String
}

func nullInt(v sql.NullInt64) any {
	if !v.Valid {
		return nil
	}
	return v.Int64
}

func nullFloat(v sql.NullFloat64) any {
	if !v.Valid {
		return nil
	}
	return v.Float64
}
