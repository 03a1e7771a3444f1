package routing_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shorepull/internal/inventory"
	"shorepull/internal/logging"
	"shorepull/internal/routing"
	"shorepull/internal/testsupport"
)

type fakeProber struct {
	available uint64
	err       error
}

func (f fakeProber) AvailableBytes(string) (uint64, error) {
	return f.available, f.err
}

type fakeMover struct {
	extracted [][2]string
	synced    [][2]string
	err       error
}

func (f *fakeMover) Extract(_ context.Context, tarPath, destDir string) error {
	if f.err != nil {
		return f.err
	}
	f.extracted = append(f.extracted, [2]string{tarPath, destDir})
	return nil
}

func (f *fakeMover) Sync(_ context.Context, srcPath, destDir string) error {
	if f.err != nil {
		return f.err
	}
	f.synced = append(f.synced, [2]string{srcPath, destDir})
	return nil
}

func multibeamRecord(filesetID string) *inventory.Record {
	return &inventory.Record{
		FilesetID:      filesetID,
		CruiseID:       "EN680",
		PlatformName:   "Endeavor",
		InstrumentName: "Kongsberg EM122",
		InstrumentType: "Multibeam Sonar",
		SizeBytes:      1,
		FileCount:      1,
		PackagePath:    "/archive/2023-04-01/ENDEAVOR_" + filesetID + "_01.tar.gz",
		DateDir:        "2023-04-01",
		DataType:       inventory.DataTypeMultibeam,
	}
}

func TestSortDirExtractsMultibeam(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCushionGiB(0))
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewRecord(t, store, multibeamRecord("54321"))

	staging := cfg.Paths.StagingDir
	tarPath := filepath.Join(staging, "ENDEAVOR_54321_01.tar")
	testsupport.WriteContent(t, tarPath, []byte("tar payload"))
	testsupport.WriteContent(t, tarPath+".md5", []byte("manifest"))

	mover := &fakeMover{}
	router := routing.NewRouter(
		store,
		routing.DefaultRules(cfg.Landing),
		fakeProber{available: 1 << 40},
		mover,
		mover,
		cfg.CushionBytes(),
		logging.NewNop(),
	)

	ctx := context.Background()
	report, err := router.SortDir(ctx, staging)
	if err != nil {
		t.Fatalf("SortDir failed: %v", err)
	}
	if report.Routed != 1 {
		t.Fatalf("expected 1 routed, got %d (%s)", report.Routed, report.Summary())
	}

	wantDest := filepath.Join(cfg.Landing.MultibeamDir, "endeavor", "ENDEAVOR")
	if len(mover.extracted) != 1 || mover.extracted[0][1] != wantDest {
		t.Fatalf("unexpected extraction: %#v (want dest %s)", mover.extracted, wantDest)
	}
	if len(mover.synced) != 0 {
		t.Fatalf("multibeam package must be extracted, not synced: %#v", mover.synced)
	}
	if _, err := os.Stat(wantDest); err != nil {
		t.Fatalf("destination directory not created: %v", err)
	}

	for _, leftover := range []string{tarPath, tarPath + ".md5"} {
		if _, err := os.Stat(leftover); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be removed", leftover)
		}
	}

	stored, err := store.FindByFilesetID(ctx, "54321")
	if err != nil {
		t.Fatalf("FindByFilesetID failed: %v", err)
	}
	if stored.PulledStatus != inventory.StatusPulled {
		t.Fatalf("expected record pulled, got %s", stored.PulledStatus)
	}
}

func TestSortDirSyncsTrackline(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCushionGiB(0))
	store := testsupport.MustOpenStore(t, cfg)

	rec := multibeamRecord("77001")
	rec.InstrumentType = "Gravimeter"
	rec.InstrumentName = "BGM-3"
	rec.DataType = inventory.DataTypeTrackline
	rec.PackagePath = "/archive/2023-04-01/EN680_77001_01.tar.gz"
	testsupport.NewRecord(t, store, rec)

	staging := cfg.Paths.StagingDir
	tarPath := filepath.Join(staging, "EN680_77001_01.tar")
	testsupport.WriteContent(t, tarPath, []byte("tar payload"))
	testsupport.WriteContent(t, tarPath+".md5", []byte("manifest"))

	mover := &fakeMover{}
	router := routing.NewRouter(
		store,
		routing.DefaultRules(cfg.Landing),
		fakeProber{available: 1 << 40},
		mover,
		mover,
		cfg.CushionBytes(),
		logging.NewNop(),
	)

	report, err := router.SortDir(context.Background(), staging)
	if err != nil {
		t.Fatalf("SortDir failed: %v", err)
	}
	if report.Routed != 1 {
		t.Fatalf("expected 1 routed, got %d (%s)", report.Routed, report.Summary())
	}

	wantDest := filepath.Join(cfg.Landing.TracklineDir, "gravity", "endeavor", "EN680")
	if len(mover.synced) != 1 || mover.synced[0][1] != wantDest {
		t.Fatalf("unexpected sync: %#v (want dest %s)", mover.synced, wantDest)
	}
	if len(mover.extracted) != 0 {
		t.Fatalf("trackline package must be synced, not extracted: %#v", mover.extracted)
	}
}

func TestSortDirSkipsUnknownFileset(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCushionGiB(0))
	store := testsupport.MustOpenStore(t, cfg)

	staging := cfg.Paths.StagingDir
	tarPath := filepath.Join(staging, "EN680_99999_01.tar")
	testsupport.WriteContent(t, tarPath, []byte("tar payload"))

	mover := &fakeMover{}
	router := routing.NewRouter(
		store,
		routing.DefaultRules(cfg.Landing),
		fakeProber{available: 1 << 40},
		mover,
		mover,
		cfg.CushionBytes(),
		logging.NewNop(),
	)

	report, err := router.SortDir(context.Background(), staging)
	if err != nil {
		t.Fatalf("SortDir failed: %v", err)
	}
	if report.Routed != 0 || len(report.Diagnostics) != 1 {
		t.Fatalf("expected skip with diagnostic, got %s", report.Summary())
	}
	if _, err := os.Stat(tarPath); err != nil {
		t.Fatal("an unroutable package must stay in staging")
	}
}

func TestSortDirInsufficientSpaceLeavesPending(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewRecord(t, store, multibeamRecord("54400"))

	staging := cfg.Paths.StagingDir
	tarPath := filepath.Join(staging, "ENDEAVOR_54400_01.tar")
	testsupport.WriteContent(t, tarPath, []byte("tar payload"))

	mover := &fakeMover{}
	router := routing.NewRouter(
		store,
		routing.DefaultRules(cfg.Landing),
		fakeProber{available: 1}, // far inside the cushion
		mover,
		mover,
		cfg.CushionBytes(),
		logging.NewNop(),
	)

	ctx := context.Background()
	report, err := router.SortDir(ctx, staging)
	if err != nil {
		t.Fatalf("SortDir failed: %v", err)
	}
	if report.Routed != 0 || len(report.Diagnostics) != 1 {
		t.Fatalf("expected space failure diagnostic, got %s", report.Summary())
	}
	if len(mover.extracted) != 0 && len(mover.synced) != 0 {
		t.Fatal("nothing may move when the cushion is breached")
	}

	stored, err := store.FindByFilesetID(ctx, "54400")
	if err != nil {
		t.Fatalf("FindByFilesetID failed: %v", err)
	}
	if stored.PulledStatus != inventory.StatusPending {
		t.Fatalf("record must stay pending, got %s", stored.PulledStatus)
	}
}

func TestSortDirToolFailureLeavesSources(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCushionGiB(0))
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewRecord(t, store, multibeamRecord("54500"))

	staging := cfg.Paths.StagingDir
	tarPath := filepath.Join(staging, "ENDEAVOR_54500_01.tar")
	testsupport.WriteContent(t, tarPath, []byte("tar payload"))
	testsupport.WriteContent(t, tarPath+".md5", []byte("manifest"))

	mover := &fakeMover{err: errors.New("tar exploded")}
	router := routing.NewRouter(
		store,
		routing.DefaultRules(cfg.Landing),
		fakeProber{available: 1 << 40},
		mover,
		mover,
		cfg.CushionBytes(),
		logging.NewNop(),
	)

	ctx := context.Background()
	report, err := router.SortDir(ctx, staging)
	if err != nil {
		t.Fatalf("SortDir failed: %v", err)
	}
	if report.Routed != 0 || len(report.Diagnostics) != 1 {
		t.Fatalf("expected tool failure diagnostic, got %s", report.Summary())
	}
	if _, err := os.Stat(tarPath); err != nil {
		t.Fatal("tarball must survive a failed extraction")
	}
	if _, err := os.Stat(tarPath + ".md5"); err != nil {
		t.Fatal("manifest must survive a failed extraction")
	}

	stored, err := store.FindByFilesetID(ctx, "54500")
	if err != nil {
		t.Fatalf("FindByFilesetID failed: %v", err)
	}
	if stored.PulledStatus != inventory.StatusPending {
		t.Fatalf("record must stay pending, got %s", stored.PulledStatus)
	}
}
