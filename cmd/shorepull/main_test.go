package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"shorepull/internal/inventory"
	"shorepull/internal/selection"
)

func TestRequestedDataTypes(t *testing.T) {
	all, err := requestedDataTypes("")
	if err != nil {
		t.Fatalf("requestedDataTypes failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all data types, got %v", all)
	}

	one, err := requestedDataTypes("multibeam")
	if err != nil {
		t.Fatalf("requestedDataTypes failed: %v", err)
	}
	if len(one) != 1 || one[0] != inventory.DataTypeMultibeam {
		t.Fatalf("unexpected: %v", one)
	}

	if _, err := requestedDataTypes("sonar"); err == nil {
		t.Fatal("expected error for unknown data type")
	}
}

func TestChooseRecordsWithSelectFlag(t *testing.T) {
	batch := selection.Batch{Records: []*inventory.Record{
		{FilesetID: "1"}, {FilesetID: "2"}, {FilesetID: "3"},
	}}
	cmd := &cobra.Command{}

	records, err := chooseRecords(cmd, batch, "1,3", false)
	if err != nil {
		t.Fatalf("chooseRecords failed: %v", err)
	}
	if len(records) != 2 || records[0].FilesetID != "1" || records[1].FilesetID != "3" {
		t.Fatalf("unexpected selection: %#v", records)
	}

	if _, err := chooseRecords(cmd, batch, "1,9", false); err == nil {
		t.Fatal("expected out-of-range selection to fail whole")
	}

	records, err = chooseRecords(cmd, batch, "", true)
	if err != nil {
		t.Fatalf("chooseRecords --all failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected whole batch, got %d", len(records))
	}
}

func TestStagingDirArg(t *testing.T) {
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	body := `
[paths]
data_dir = "` + filepath.Join(base, "data") + `"
staging_dir = "` + filepath.Join(base, "staging") + `"
log_dir = "` + filepath.Join(base, "logs") + `"

[remote]
host = "archive.example.org"
user = "puller"
root = "/archive"

[landing]
wcsd_dir = "` + filepath.Join(base, "wcsd") + `"
multibeam_dir = "` + filepath.Join(base, "multibeam") + `"
trackline_dir = "` + filepath.Join(base, "trackline") + `"
`
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	ctx := newCommandContext(&configPath)

	dir, err := ctx.stagingDirArg(nil)
	if err != nil {
		t.Fatalf("stagingDirArg failed: %v", err)
	}
	if dir != filepath.Join(base, "staging") {
		t.Fatalf("expected configured staging dir, got %q", dir)
	}

	override := filepath.Join(base, "elsewhere")
	dir, err = ctx.stagingDirArg([]string{override})
	if err != nil {
		t.Fatalf("stagingDirArg with override failed: %v", err)
	}
	if dir != override {
		t.Fatalf("expected %q, got %q", override, dir)
	}
}

func TestRenderBatchTable(t *testing.T) {
	batch := selection.Batch{
		Records: []*inventory.Record{
			{
				CruiseID:       "EN680",
				PlatformName:   "Endeavor",
				InstrumentName: "Multibeam Sonar",
				FileCount:      12,
				SizeBytes:      4 << 30,
			},
		},
		TotalBytes: 4 << 30,
	}

	rendered := renderBatchTable(batch)
	for _, want := range []string{"CRUISE", "INSTRUMENT", "EN680", "Endeavor", "12", "4.0 GiB"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("rendered table missing %q:\n%s", want, rendered)
		}
	}
	if lines := strings.Split(rendered, "\n"); len(lines) < 4 {
		t.Fatalf("expected bordered table, got:\n%s", rendered)
	}
}

func TestFilterRecords(t *testing.T) {
	records := []*inventory.Record{
		{FilesetID: "1", DataType: inventory.DataTypeMultibeam, PulledStatus: inventory.StatusPending},
		{FilesetID: "2", DataType: inventory.DataTypeWCSD, PulledStatus: inventory.StatusPulled},
		{FilesetID: "3", DataType: inventory.DataTypeMultibeam, PulledStatus: inventory.StatusPulled},
	}

	pending, err := filterRecords(append([]*inventory.Record(nil), records...), "pending", "")
	if err != nil {
		t.Fatalf("filterRecords failed: %v", err)
	}
	if len(pending) != 1 || pending[0].FilesetID != "1" {
		t.Fatalf("unexpected pending filter: %#v", pending)
	}

	multibeamPulled, err := filterRecords(append([]*inventory.Record(nil), records...), "pulled", "multibeam")
	if err != nil {
		t.Fatalf("filterRecords failed: %v", err)
	}
	if len(multibeamPulled) != 1 || multibeamPulled[0].FilesetID != "3" {
		t.Fatalf("unexpected combined filter: %#v", multibeamPulled)
	}

	if _, err := filterRecords(records, "archived", ""); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
