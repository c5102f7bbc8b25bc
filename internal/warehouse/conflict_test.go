package warehouse

import (
	"strings"
	"testing"
)

func TestParseConflictPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    ConflictPolicy
		wantErr bool
	}{
		{"", PolicyFirstWins, false},
		{"first-wins", PolicyFirstWins, false},
		{"reject", PolicyReject, false},
		{"last-wins", "", true},
	}
	for _, tt := range tests {
		got, err := ParseConflictPolicy(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseConflictPolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseConflictPolicy(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolveConflicts(t *testing.T) {
	rows := []Row{
		{"c1", "u1", "03149", "sao paulo", "SP"},
		{"c2", "u2", "47813", "barreiras", "BA"},
		{"c1", "u1", "13010", "campinas", "SP"},
		{"c1", "u1", "20000", "rio de janeiro", "RJ"},
	}

	kept, conflicts := ResolveConflicts(Customers, rows)
	if len(kept) != 2 {
		t.Fatalf("Expected 2 kept rows, got %d", len(kept))
	}
	if kept[0][3] != "sao paulo" {
		t.Errorf("Expected first tuple kept, got %v", kept[0])
	}
	if len(conflicts) != 2 {
		t.Fatalf("Expected 2 conflicts, got %d", len(conflicts))
	}
	for _, c := range conflicts {
		if c.Table != Customers.Name || c.Key != "c1" {
			t.Errorf("Unexpected conflict %+v", c)
		}
		if c.Kept[3] != "sao paulo" {
			t.Errorf("Conflict must quote the kept row, got %v", c.Kept)
		}
	}
	if s := conflicts[0].String(); !strings.Contains(s, "campinas") || !strings.Contains(s, "dim_customers") {
		t.Errorf("Unexpected conflict string %q", s)
	}
}

func TestResolveConflictsNone(t *testing.T) {
	rows := []Row{
		{"s1", "09350", "maua", "SP"},
		{"s2", "31570", "belo horizonte", "MG"},
	}
	kept, conflicts := ResolveConflicts(Sellers, rows)
	if len(kept) != 2 || len(conflicts) != 0 {
		t.Errorf("Expected 2 kept and no conflicts, got %d and %d", len(kept), len(conflicts))
	}
}
