package warehouse

import (
	"database/sql"
	"testing"

	"github.com/pgEdge/pgedge-starload/internal/record"
	"github.com/pgEdge/pgedge-starload/internal/testutil"
)

func TestExtractDimensions(t *testing.T) {
	recs := testutil.SampleOrders()

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"customers", len(ExtractCustomers(recs)), testutil.SampleCustomers},
		{"products", len(ExtractProducts(recs)), testutil.SampleProducts},
		{"sellers", len(ExtractSellers(recs)), testutil.SampleSellers},
		{"payments", len(ExtractPayments(recs)), testutil.SamplePayments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("Expected %d distinct rows, got %d", tt.want, tt.got)
			}
		})
	}

	if c := ExtractCustomers(recs); c[0].ID != "c1" || c[2].ID != "c3" {
		t.Errorf("Expected first-seen order c1..c3, got %+v", c)
	}
}

func TestExtractKeepsConflictingTuples(t *testing.T) {
	recs := testutil.SampleOrders()
	moved := recs[0]
	moved.CustomerCity = "campinas"
	recs = append(recs, moved)

	customers := ExtractCustomers(recs)
	if len(customers) != testutil.SampleCustomers+1 {
		t.Fatalf("Expected %d tuples, got %d", testutil.SampleCustomers+1, len(customers))
	}
	if customers[0].City != "sao paulo" {
		t.Errorf("Expected first tuple first, got %+v", customers[0])
	}
}

func TestExtractSkipsMissingKeys(t *testing.T) {
	recs := []record.Record{
		{OrderID: "o1"},
		{OrderID: "o2", CustomerID: "c2", ProductID: "p2", SellerID: "s2"},
	}

	if n := len(ExtractCustomers(recs)); n != 1 {
		t.Errorf("Expected 1 customer, got %d", n)
	}
	if n := len(ExtractProducts(recs)); n != 1 {
		t.Errorf("Expected 1 product, got %d", n)
	}
	if n := len(ExtractSellers(recs)); n != 1 {
		t.Errorf("Expected 1 seller, got %d", n)
	}
}

func TestExtractPaymentsRequiresCompleteTuple(t *testing.T) {
	full := record.Record{
		OrderID:             "o1",
		PaymentType:         "boleto",
		PaymentInstallments: sql.NullInt64{Int64: 1, Valid: true},
		PaymentValue:        sql.NullFloat64{Float64: 10, Valid: true},
	}
	noType := full
	noType.PaymentType = ""
	noInstallments := full
	noInstallments.PaymentInstallments = sql.NullInt64{}
	noValue := full
	noValue.PaymentValue = sql.NullFloat64{}
	noOrder := full
	noOrder.OrderID = ""

	payments := ExtractPayments([]record.Record{noType, noInstallments, noValue, noOrder, full, full})
	if len(payments) != 1 {
		t.Fatalf("Expected 1 payment, got %d: %+v", len(payments), payments)
	}
	row := payments[0].Values()
	want := Row{"o1", "boleto", int64(1), float64(10)}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("Column %s: expected %v, got %v", Payments.Columns[i], want[i], row[i])
		}
	}
}

func TestExtractPaymentsRoundsToCents(t *testing.T) {
	pay := func(v float64) record.Record {
		return record.Record{
			OrderID:             "o1",
			PaymentType:         "voucher",
			PaymentInstallments: sql.NullInt64{Int64: 1, Valid: true},
			PaymentValue:        sql.NullFloat64{Float64: v, Valid: true},
		}
	}

	payments := ExtractPayments([]record.Record{pay(10.001), pay(10.004), pay(18.126)})
	if len(payments) != 2 {
		t.Fatalf("Expected 2 payments, got %d: %+v", len(payments), payments)
	}
	for i, want := range []float64{10.00, 18.13} {
		if got := payments[i].Value.Float64; got != want {
			t.Errorf("Payment %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestProductValuesNulls(t *testing.T) {
	row := Product{ID: "p9"}.Values()
	if len(row) != len(Products.Columns) {
		t.Fatalf("Expected %d values, got %d", len(Products.Columns), len(row))
	}
	if row[0] != "p9" {
		t.Errorf("Expected id p9, got %v", row[0])
	}
	for i := 1; i < len(row); i++ {
		if row[i] != nil {
			t.Errorf("Column %s: expected nil, got %v", Products.Columns[i], row[i])
		}
	}
}
