package selection_test

import (
	"testing"

	"shorepull/internal/inventory"
	"shorepull/internal/selection"
)

func sized(filesetID string, size int64) *inventory.Record {
	return &inventory.Record{FilesetID: filesetID, SizeBytes: size}
}

func TestPlanStopsBeforeBudget(t *testing.T) {
	records := []*inventory.Record{
		sized("1", 4_000_000_000),
		sized("2", 4_000_000_000),
		sized("3", 4_000_000_000),
	}

	batch := selection.Plan(records, 10_000_000_000)
	if len(batch.Records) != 2 {
		t.Fatalf("expected 2 records inside the budget, got %d", len(batch.Records))
	}
	if batch.TotalBytes != 8_000_000_000 {
		t.Fatalf("unexpected total: %d", batch.TotalBytes)
	}
	if batch.Records[0].FilesetID != "1" || batch.Records[1].FilesetID != "2" {
		t.Fatalf("expected store order to be preserved: %#v", batch.Records)
	}
}

func TestPlanExactBudgetIsExcluded(t *testing.T) {
	records := []*inventory.Record{sized("1", 100)}
	batch := selection.Plan(records, 100)
	if len(batch.Records) != 0 {
		t.Fatalf("a record landing exactly on the budget must not be taken, got %d", len(batch.Records))
	}
}

func TestPlanStopsAtFirstOversize(t *testing.T) {
	// A later small record is not considered once an earlier one overflows.
	records := []*inventory.Record{
		sized("1", 50),
		sized("2", 500),
		sized("3", 10),
	}
	batch := selection.Plan(records, 100)
	if len(batch.Records) != 1 || batch.Records[0].FilesetID != "1" {
		t.Fatalf("expected greedy prefix selection, got %#v", batch.Records)
	}
}

func TestPlanEmptyInput(t *testing.T) {
	batch := selection.Plan(nil, 1_000)
	if len(batch.Records) != 0 || batch.TotalBytes != 0 {
		t.Fatalf("expected empty batch, got %#v", batch)
	}
}

func TestPick(t *testing.T) {
	batch := selection.Plan([]*inventory.Record{
		sized("1", 1), sized("2", 1), sized("3", 1),
	}, 1_000)

	picked := batch.Pick([]int{1, 3})
	if len(picked) != 2 || picked[0].FilesetID != "1" || picked[1].FilesetID != "3" {
		t.Fatalf("unexpected pick: %#v", picked)
	}
}

func TestManifestPath(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"/archive/2023-04-01/RR2107_12345_01.tar.gz", "/archive/2023-04-01/RR2107_12345_01.tar.md5"},
		{"/archive/2023-04-01/RR2107_12345_01.tar", "/archive/2023-04-01/RR2107_12345_01.tar.md5"},
	}
	for _, tc := range cases {
		if got := selection.ManifestPath(tc.input); got != tc.want {
			t.Fatalf("ManifestPath(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
