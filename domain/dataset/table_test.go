package dataset

import (
	"math"
	"testing"

	"radonlab/domain/core"
)

func obs(group string, basement int, y float64) Observation {
	return Observation{Group: core.GroupLabel(group), Basement: basement, LogRadon: y}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		obs         []Observation
		expectError bool
	}{
		{
			name:        "valid table",
			obs:         []Observation{obs("AITKIN", 1, 0.8), obs("ANOKA", 0, 1.1)},
			expectError: false,
		},
		{
			name:        "empty table",
			obs:         nil,
			expectError: true,
		},
		{
			name:        "missing group label",
			obs:         []Observation{obs("AITKIN", 1, 0.8), obs("  ", 0, 1.1)},
			expectError: true,
		},
		{
			name:        "non-binary covariate",
			obs:         []Observation{obs("AITKIN", 2, 0.8)},
			expectError: true,
		},
		{
			name:        "negative covariate",
			obs:         []Observation{obs("AITKIN", -1, 0.8)},
			expectError: true,
		},
		{
			name:        "NaN response",
			obs:         []Observation{obs("AITKIN", 1, math.NaN())},
			expectError: true,
		},
		{
			name:        "infinite response",
			obs:         []Observation{obs("AITKIN", 1, math.Inf(1))},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.obs)
			if tt.expectError && err == nil {
				t.Errorf("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGroupIndex_Partition(t *testing.T) {
	table, err := New([]Observation{
		obs("ANOKA", 1, 0.8),
		obs("AITKIN", 0, 1.1),
		obs("ANOKA", 1, 0.2),
		obs("BELTRAMI", 1, 1.9),
		obs("ANOKA", 0, -0.3),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Groups() != 3 {
		t.Fatalf("expected 3 groups, got %d", table.Groups())
	}

	// Dense index follows sorted label order.
	idx := table.Index()
	want := []string{"AITKIN", "ANOKA", "BELTRAMI"}
	for i, w := range want {
		if idx.Label(i).String() != w {
			t.Errorf("label %d: expected %s, got %s", i, w, idx.Label(i))
		}
	}

	// Counts partition the observations exactly.
	total := 0
	for g := 0; g < idx.Len(); g++ {
		total += idx.Count(g)
		if len(table.RowsInGroup(g)) != idx.Count(g) {
			t.Errorf("group %d: rows and count disagree", g)
		}
	}
	if total != table.Len() {
		t.Errorf("counts sum to %d, expected %d", total, table.Len())
	}

	// Every observation resolves to its own group.
	for i := 0; i < table.Len(); i++ {
		g := table.GroupAt(i)
		if idx.Label(g) != table.Row(i).Group {
			t.Errorf("row %d mapped to wrong group", i)
		}
	}
}

func TestTable_HashStable(t *testing.T) {
	rows := []Observation{obs("ANOKA", 1, 0.8), obs("AITKIN", 0, 1.1)}

	t1, err := New(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t2, err := New(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !t1.Hash().Equals(t2.Hash()) {
		t.Errorf("same rows produced different hashes")
	}
}
