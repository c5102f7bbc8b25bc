//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package record

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the layout used by order exports and by WriteCSV.
const TimestampLayout = "2006-01-02 15:04:05"

var timestampLayouts = []string{
	TimestampLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseError reports a cell that could not be decoded.
type ParseError struct {
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ReadOptions configures ReadCSV.
type ReadOptions struct {
	// Comma is the field delimiter.
	Comma rune

	// TrimSpace trims leading and trailing whitespace from every cell.
	TrimSpace bool
}

// DefaultReadOptions returns the options for a standard comma separated export.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Comma:     ',',
		TrimSpace: true,
	}
}

// field binds a canonical column name to its accessors on Record.
type field struct {
	name string
	get  func(r *Record) string
	set  func(r *Record, v string) error
}

// requiredColumns must be present in the header of every export.
var requiredColumns = []string{"order_id", "customer_id", "product_id", "seller_id"}

// headerAliases maps alternative header spellings to canonical columns.
// The export ships both the Portuguese and the translated category name;
// the translated one wins when both are present.
var headerAliases = map[string]string{
	"product_category_name_english": "product_category_name",
	"product_name_lenght":           "product_name_length",
	"product_description_lenght":    "product_description_length",
}

var fields = []field{
	strField("order_id", func(r *Record) *string { return &r.OrderID }),
	strField("customer_id", func(r *Record) *string { return &r.CustomerID }),
	strField("customer_unique_id", func(r *Record) *string { return &r.CustomerUniqueID }),
	strField("customer_zip_code_prefix", func(r *Record) *string { return &r.CustomerZipPrefix }),
	strField("customer_city", func(r *Record) *string { return &r.CustomerCity }),
	strField("customer_state", func(r *Record) *string { return &r.CustomerState }),
	strField("order_status", func(r *Record) *string { return &r.OrderStatus }),
	tsField(RolePurchase),
	tsField(RoleApproved),
	tsField(RoleDeliveredCarrier),
	tsField(RoleDeliveredCustomer),
	tsField(RoleEstimatedDelivery),
	strField("product_id", func(r *Record) *string { return &r.ProductID }),
	nullStrField("product_category_name", func(r *Record) *sql.NullString { return &r.ProductCategory }),
	intField("product_name_length", func(r *Record) *sql.NullInt64 { return &r.ProductNameLength }),
	intField("product_description_length", func(r *Record) *sql.NullInt64 { return &r.ProductDescriptionLength }),
	intField("product_photos_qty", func(r *Record) *sql.NullInt64 { return &r.ProductPhotosQty }),
	floatField("product_weight_g", func(r *Record) *sql.NullFloat64 { return &r.ProductWeightG }),
	floatField("product_length_cm", func(r *Record) *sql.NullFloat64 { return &r.ProductLengthCm }),
	floatField("product_height_cm", func(r *Record) *sql.NullFloat64 { return &r.ProductHeightCm }),
	floatField("product_width_cm", func(r *Record) *sql.NullFloat64 { return &r.ProductWidthCm }),
	strField("seller_id", func(r *Record) *string { return &r.SellerID }),
	strField("seller_zip_code_prefix", func(r *Record) *string { return &r.SellerZipPrefix }),
	strField("seller_city", func(r *Record) *string { return &r.SellerCity }),
	strField("seller_state", func(r *Record) *string { return &r.SellerState }),
	floatField("price", func(r *Record) *sql.NullFloat64 { return &r.Price }),
	floatField("freight_value", func(r *Record) *sql.NullFloat64 { return &r.FreightValue }),
	strField("payment_type", func(r *Record) *string { return &r.PaymentType }),
	intField("payment_installments", func(r *Record) *sql.NullInt64 { return &r.PaymentInstallments }),
	floatField("payment_value", func(r *Record) *sql.NullFloat64 { return &r.PaymentValue }),
}

// Columns returns the canonical column names in export order.
func Columns() []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.name
	}
	return out
}

// ReadCSV reads every record of an order export. The first row must be a
// header. Unknown columns are ignored; empty cells decode as absent values.
// Record.Line and ParseError.Line are physical line numbers of the input.
func ReadCSV(ctx context.Context, src io.Reader, opt ReadOptions) ([]Record, error) {
	cr := csv.NewReader(src)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	hdr, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ix, err := mapHeader(hdr)
	if err != nil {
		return nil, err
	}

	var out []Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			// csv.ParseError carries its own line numbers.
			return nil, fmt.Errorf("read record: %w", err)
		}

		// Quoted cells may span lines, so positions come from the reader.
		line, _ := cr.FieldPos(0)
		r := Record{Line: line}
		for fi, si := range ix {
			if si < 0 || si >= len(rec) {
				continue
			}
			v := rec[si]
			if opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			if v == "" {
				continue
			}
			if err := fields[fi].set(&r, v); err != nil {
				cellLine, _ := cr.FieldPos(si)
				return nil, &ParseError{Line: cellLine, Column: fields[fi].name, Err: err}
			}
		}
		out = append(out, r)
	}
}

// mapHeader returns, for every field, the index of its source column or -1.
func mapHeader(hdr []string) ([]int, error) {
	pos := make(map[string]int, len(hdr))
	aliased := make(map[string]bool)
	for i, h := range hdr {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		h = strings.ReplaceAll(strings.ToLower(h), " ", "_")
		if canon, ok := headerAliases[h]; ok {
			pos[canon] = i
			aliased[canon] = true
			continue
		}
		if _, taken := pos[h]; taken && aliased[h] {
			continue
		}
		pos[h] = i
	}

	for _, c := range requiredColumns {
		if _, ok := pos[c]; !ok {
			return nil, fmt.Errorf("missing required column %q", c)
		}
	}

	ix := make([]int, len(fields))
	for i, f := range fields {
		if si, ok := pos[f.name]; ok {
			ix[i] = si
		} else {
			ix[i] = -1
		}
	}
	return ix, nil
}

// WriteCSV writes records in the canonical export layout.
func WriteCSV(dst io.Writer, records []Record) error {
	cw := csv.NewWriter(dst)
	if err := cw.Write(Columns()); err != nil {
		return err
	}

	row := make([]string, len(fields))
	for i := range records {
		for fi, f := range fields {
			row[fi] = f.get(&records[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseTimestamp decodes a timestamp cell. The calendar fields are kept as
// written; the value is interpreted in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func parseInt(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	// Exports produced by dataframe tools write integer columns as "40.0".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return int64(f), nil
}

func strField(name string, ptr func(r *Record) *string) field {
	return field{
		name: name,
		get:  func(r *Record) string { return *ptr(r) },
		set: func(r *Record, v string) error {
			*ptr(r) = v
			return nil
		},
	}
}

func nullStrField(name string, ptr func(r *Record) *sql.NullString) field {
	return field{
		name: name,
		get: func(r *Record) string {
			if p := ptr(r); p.Valid {
				return p.String
			}
			return ""
		},
		set: func(r *Record, v string) error {
			*ptr(r) = sql.NullString{String: v, Valid: true}
			return nil
		},
	}
}

func intField(name string, ptr func(r *Record) *sql.NullInt64) field {
	return field{
		name: name,
		get: func(r *Record) string {
			if p := ptr(r); p.Valid {
				return strconv.FormatInt(p.Int64, 10)
			}
			return ""
		},
		set: func(r *Record, v string) error {
			if strings.EqualFold(v, "nan") {
				return nil
			}
			n, err := parseInt(v)
			if err != nil {
				return err
			}
			*ptr(r) = sql.NullInt64{Int64: n, Valid: true}
			return nil
		},
	}
}

func floatField(name string, ptr func(r *Record) *sql.NullFloat64) field {
	return field{
		name: name,
		get: func(r *Record) string {
			if p := ptr(r); p.Valid {
				return strconv.FormatFloat(p.Float64, 'f', -1, 64)
			}
			return ""
		},
		set: func(r *Record, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid number %q", v)
			}
			if math.IsNaN(f) {
				return nil
			}
			if math.IsInf(f, 0) {
				return fmt.Errorf("invalid number %q", v)
			}
			*ptr(r) = sql.NullFloat64{Float64: f, Valid: true}
			return nil
		},
	}
}

func tsField(role Role) field {
	return field{
		name: role.Column(),
		get: func(r *Record) string {
			if ts := r.Timestamp(role); ts != nil {
				return ts.Format(TimestampLayout)
			}
			return ""
		},
		set: func(r *Record, v string) error {
			ts, err := ParseTimestamp(v)
			if err != nil {
				return err
			}
			r.SetTimestamp(role, &ts)
			return nil
		},
	}
}
