package record

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

const sampleCSV = `order_id,customer_id,customer_unique_id,customer_zip_code_prefix,customer_city,customer_state,order_status,order_purchase_timestamp,order_approved_at,order_delivered_carrier_date,order_delivered_customer_date,order_estimated_delivery_date,product_id,product_category_name,product_name_lenght,product_description_lenght,product_photos_qty,product_weight_g,product_length_cm,product_height_cm,product_width_cm,seller_id,seller_zip_code_prefix,seller_city,seller_state,price,freight_value,payment_type,payment_installments,payment_value
o1,c1,u1,03149,sao paulo,SP,delivered,2017-10-02 10:56:33,2017-10-02 11:07:15,2017-10-04 19:55:00,2017-10-10 21:25:13,2017-10-18 00:00:00,p1,housewares,40.0,268,4,500,19,8,13,s1,09350,maua,SP,29.99,8.72,credit_card,1,18.12
o2,c2,u2,47813,barreiras,BA,created,2017-10-04 08:00:00,,,,2017-10-20 00:00:00,p2,,,,,,,,,s2,31570,belo horizonte,MG,60,10,,,
`

func TestReadCSV(t *testing.T) {
	recs, err := ReadCSV(context.Background(), strings.NewReader(sampleCSV), DefaultReadOptions())
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(recs))
	}

	r := recs[0]
	if r.Line != 2 {
		t.Errorf("Expected Line 2, got %d", r.Line)
	}
	if r.OrderID != "o1" || r.CustomerID != "c1" || r.ProductID != "p1" || r.SellerID != "s1" {
		t.Errorf("Unexpected ids: %+v", r)
	}
	if r.CustomerZipPrefix != "03149" {
		t.Errorf("Zip prefix must keep its leading zero, got %q", r.CustomerZipPrefix)
	}
	want := time.Date(2017, 10, 2, 10, 56, 33, 0, time.UTC)
	if r.Purchase == nil || !r.Purchase.Equal(want) {
		t.Errorf("Expected purchase %v, got %v", want, r.Purchase)
	}
	if !r.ProductNameLength.Valid || r.ProductNameLength.Int64 != 40 {
		t.Errorf("Expected name length 40 from misspelled header, got %+v", r.ProductNameLength)
	}
	if !r.PaymentValue.Valid || r.PaymentValue.Float64 != 18.12 {
		t.Errorf("Expected payment value 18.12, got %+v", r.PaymentValue)
	}

	r = recs[1]
	if r.Approved != nil || r.DeliveredCarrier != nil || r.DeliveredCustomer != nil {
		t.Error("Empty timestamp cells must decode as nil")
	}
	if r.ProductCategory.Valid || r.ProductWeightG.Valid {
		t.Error("Empty product cells must decode as invalid")
	}
	if r.PaymentType != "" || r.PaymentInstallments.Valid || r.PaymentValue.Valid {
		t.Error("Empty payment cells must decode as absent")
	}
}

func TestReadCSVHeaderVariants(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opt      ReadOptions
		category string
	}{
		{
			name:  "byte order mark and spaces",
			input: "\uFEFFOrder ID,customer_id,product_id,seller_id\no1,c1,p1,s1\n",
			opt:   DefaultReadOptions(),
		},
		{
			name:     "translated category wins",
			input:    "order_id,customer_id,product_id,seller_id,product_category_name,product_category_name_english\no1,c1,p1,s1,utilidades_domesticas,housewares\n",
			opt:      DefaultReadOptions(),
			category: "housewares",
		},
		{
			name:     "translated category wins when first",
			input:    "order_id,customer_id,product_id,seller_id,product_category_name_english,product_category_name\no1,c1,p1,s1,housewares,utilidades_domesticas\n",
			opt:      DefaultReadOptions(),
			category: "housewares",
		},
		{
			name:  "semicolon delimiter",
			input: "order_id;customer_id;product_id;seller_id\no1;c1;p1;s1\n",
			opt:   ReadOptions{Comma: ';', TrimSpace: true},
		},
		{
			name:  "unknown columns ignored",
			input: "order_id,customer_id,product_id,seller_id,review_score\no1,c1,p1,s1,5\n",
			opt:   DefaultReadOptions(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := ReadCSV(context.Background(), strings.NewReader(tt.input), tt.opt)
			if err != nil {
				t.Fatalf("ReadCSV failed: %v", err)
			}
			if len(recs) != 1 {
				t.Fatalf("Expected 1 record, got %d", len(recs))
			}
			if recs[0].OrderID != "o1" || recs[0].SellerID != "s1" {
				t.Errorf("Unexpected record: %+v", recs[0])
			}
			if tt.category != "" && recs[0].ProductCategory.String != tt.category {
				t.Errorf("Expected category %q, got %q", tt.category, recs[0].ProductCategory.String)
			}
		})
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		column  string
		wantMsg string
	}{
		{
			name:    "empty input",
			input:   "",
			wantMsg: "empty input",
		},
		{
			name:    "missing required column",
			input:   "order_id,customer_id,product_id\no1,c1,p1\n",
			wantMsg: `missing required column "seller_id"`,
		},
		{
			name:   "bad timestamp",
			input:  "order_id,customer_id,product_id,seller_id,order_purchase_timestamp\no1,c1,p1,s1,yesterday\n",
			column: "order_purchase_timestamp",
		},
		{
			name:   "fractional integer",
			input:  "order_id,customer_id,product_id,seller_id,product_photos_qty\no1,c1,p1,s1,1.5\n",
			column: "product_photos_qty",
		},
		{
			name:   "bad number",
			input:  "order_id,customer_id,product_id,seller_id,price\no1,c1,p1,s1,cheap\n",
			column: "price",
		},
		{
			name:   "infinite number",
			input:  "order_id,customer_id,product_id,seller_id,price\no1,c1,p1,s1,Inf\n",
			column: "price",
		},
		{
			name:   "signed infinite number",
			input:  "order_id,customer_id,product_id,seller_id,payment_value\no1,c1,p1,s1,+Inf\n",
			column: "payment_value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(context.Background(), strings.NewReader(tt.input), DefaultReadOptions())
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.wantMsg, err.Error())
			}
			if tt.column != "" {
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("Expected *ParseError, got %T", err)
				}
				if pe.Column != tt.column || pe.Line != 2 {
					t.Errorf("Expected %s on line 2, got %s on line %d", tt.column, pe.Column, pe.Line)
				}
			}
		})
	}
}

func TestReadCSVMultilineCell(t *testing.T) {
	input := "order_id,customer_id,product_id,seller_id,customer_city,price\n" +
		"o1,c1,p1,s1,\"sao\npaulo\",10\n" +
		"o2,c2,p2,s2,maua,cheap\n"

	_, err := ReadCSV(context.Background(), strings.NewReader(input), DefaultReadOptions())
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}
	if pe.Line != 4 || pe.Column != "price" {
		t.Errorf("Expected price on line 4, got %s on line %d", pe.Column, pe.Line)
	}

	input = strings.Replace(input, "cheap", "20", 1)
	recs, err := ReadCSV(context.Background(), strings.NewReader(input), DefaultReadOptions())
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if recs[0].Line != 2 || recs[1].Line != 4 {
		t.Errorf("Expected lines 2 and 4, got %d and %d", recs[0].Line, recs[1].Line)
	}
	if recs[0].CustomerCity != "sao\npaulo" {
		t.Errorf("Expected embedded newline, got %q", recs[0].CustomerCity)
	}
}

func TestReadCSVNaN(t *testing.T) {
	input := "order_id,customer_id,product_id,seller_id,product_photos_qty,product_weight_g\no1,c1,p1,s1,NaN,NaN\n"
	recs, err := ReadCSV(context.Background(), strings.NewReader(input), DefaultReadOptions())
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if recs[0].ProductPhotosQty.Valid || recs[0].ProductWeightG.Valid {
		t.Error("NaN cells must decode as absent")
	}
}

func TestReadCSVCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadCSV(ctx, strings.NewReader(sampleCSV), DefaultReadOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestWriteCSVReadBack(t *testing.T) {
	in, err := ReadCSV(context.Background(), strings.NewReader(sampleCSV), DefaultReadOptions())
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, in); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	header, _, _ := strings.Cut(buf.String(), "\n")
	if header != strings.Join(Columns(), ",") {
		t.Errorf("Unexpected header: %s", header)
	}

	out, err := ReadCSV(context.Background(), &buf, DefaultReadOptions())
	if err != nil {
		t.Fatalf("ReadCSV of written output failed: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("Expected %d records, got %d", len(in), len(out))
	}
	for i := range in {
		a, b := in[i], out[i]
		if a.OrderID != b.OrderID || a.ProductCategory != b.ProductCategory || a.PaymentValue != b.PaymentValue {
			t.Errorf("Record %d changed: %+v != %+v", i, a, b)
		}
		for _, role := range AllRoles {
			ta, tb := a.Timestamp(role), b.Timestamp(role)
			if (ta == nil) != (tb == nil) || (ta != nil && !ta.Equal(*tb)) {
				t.Errorf("Record %d %s changed: %v != %v", i, role, ta, tb)
			}
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"2017-10-02 10:56:33", time.Date(2017, 10, 2, 10, 56, 33, 0, time.UTC), false},
		{"2017-10-02T10:56:33", time.Date(2017, 10, 2, 10, 56, 33, 0, time.UTC), false},
		{"2017-10-02", time.Date(2017, 10, 2, 0, 0, 0, 0, time.UTC), false},
		{"2017-10-02T23:30:00-03:00", time.Date(2017, 10, 2, 23, 30, 0, 0, time.FixedZone("", -3*3600)), false},
		{"02/10/2017", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimestamp(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRoleAccessors(t *testing.T) {
	var r Record
	for i, role := range AllRoles {
		ts := time.Date(2018, 1, i+1, 0, 0, 0, 0, time.UTC)
		r.SetTimestamp(role, &ts)
	}
	for i, role := range AllRoles {
		got := r.Timestamp(role)
		if got == nil || got.Day() != i+1 {
			t.Errorf("%s: expected day %d, got %v", role, i+1, got)
		}
	}
	if RoleApproved.Column() != "order_approved_at" {
		t.Errorf("Unexpected column for RoleApproved: %s", RoleApproved.Column())
	}
	if Role(42).Column() != "unknown" {
		t.Error("Expected unknown column for invalid role")
	}
}
