package freespace_test

import (
	"testing"

	"shorepull/internal/freespace"
)

func TestBudget(t *testing.T) {
	cases := []struct {
		name      string
		available uint64
		cushion   uint64
		want      uint64
		ok        bool
	}{
		{"room to spare", 100, 10, 90, true},
		{"exactly the cushion", 10, 10, 0, false},
		{"inside the cushion", 5, 10, 0, false},
		{"no cushion", 5, 0, 5, true},
		{"nothing available", 0, 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := freespace.Budget(tc.available, tc.cushion)
			if got != tc.want || ok != tc.ok {
				t.Fatalf("Budget(%d, %d) = (%d, %v), want (%d, %v)",
					tc.available, tc.cushion, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestStatfsProber(t *testing.T) {
	available, err := freespace.StatfsProber{}.AvailableBytes(t.TempDir())
	if err != nil {
		t.Fatalf("AvailableBytes failed: %v", err)
	}
	if available == 0 {
		t.Fatal("expected a writable temp dir to report free space")
	}

	if _, err := (freespace.StatfsProber{}).AvailableBytes("/definitely/not/a/path"); err == nil {
		t.Fatal("expected error for a missing path")
	}
}
