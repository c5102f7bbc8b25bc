package warehouse

import (
	"testing"
	"time"

	"github.com/pgEdge/pgedge-starload/internal/record"
	"github.com/pgEdge/pgedge-starload/internal/testutil"
)

func TestDateOf(t *testing.T) {
	// Late evening in Sao Paulo is already the next day in UTC; the date
	// is taken as written.
	ts := time.Date(2017, 10, 2, 23, 30, 0, 0, time.FixedZone("BRT", -3*3600))
	d := DateOf(ts)
	if d != (Date{Year: 2017, Month: time.October, Day: 2}) {
		t.Errorf("Expected 2017-10-02, got %s", d)
	}
	if d.String() != "2017-10-02" {
		t.Errorf("Expected String 2017-10-02, got %s", d.String())
	}
	if d.Weekday() != time.Monday {
		t.Errorf("Expected Monday, got %s", d.Weekday())
	}
}

func TestDateBefore(t *testing.T) {
	tests := []struct {
		a, b Date
		want bool
	}{
		{Date{2017, 10, 2}, Date{2017, 10, 3}, true},
		{Date{2017, 9, 30}, Date{2017, 10, 1}, true},
		{Date{2016, 12, 31}, Date{2017, 1, 1}, true},
		{Date{2017, 10, 2}, Date{2017, 10, 2}, false},
		{Date{2018, 1, 1}, Date{2017, 12, 31}, false},
	}
	for _, tt := range tests {
		if got := tt.a.Before(tt.b); got != tt.want {
			t.Errorf("%s.Before(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNewDateRow(t *testing.T) {
	row := NewDateRow(Date{Year: 2018, Month: time.February, Day: 28}).Values()
	want := Row{"2018-02-28", int64(2018), int64(2), int64(28), "Wednesday"}
	if len(row) != len(Dates.Columns) {
		t.Fatalf("Expected %d values, got %d", len(Dates.Columns), len(row))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("Column %s: expected %v, got %v", Dates.Columns[i], want[i], row[i])
		}
	}
}

func TestCollectDates(t *testing.T) {
	recs := testutil.SampleOrders()

	rows := CollectDates(recs, record.AllRoles)
	if len(rows) != testutil.SampleDates {
		t.Fatalf("Expected %d dates, got %d", testutil.SampleDates, len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if !rows[i-1].Date.Before(rows[i].Date) {
			t.Errorf("Dates not strictly ascending at %d: %s, %s", i, rows[i-1].Date, rows[i].Date)
		}
	}
	if rows[0].Date.String() != "2017-10-02" || rows[len(rows)-1].Date.String() != "2017-11-01" {
		t.Errorf("Unexpected range %s..%s", rows[0].Date, rows[len(rows)-1].Date)
	}
}

func TestCollectDatesRoles(t *testing.T) {
	recs := testutil.SampleOrders()

	rows := CollectDates(recs, []record.Role{record.RolePurchase})
	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.Date.String()
	}
	want := []string{"2017-10-02", "2017-10-04", "2017-10-18"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
			break
		}
	}

	if rows := CollectDates(nil, record.AllRoles); len(rows) != 0 {
		t.Errorf("Expected no dates for no records, got %d", len(rows))
	}
	if rows := CollectDates([]record.Record{{OrderID: "x"}}, record.AllRoles); len(rows) != 0 {
		t.Errorf("Expected no dates for absent timestamps, got %d", len(rows))
	}
}
