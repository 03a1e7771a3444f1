package pull

import (
	"context"
	"fmt"

	"log/slog"

	"shorepull/internal/diag"
	"shorepull/internal/discovery"
	"shorepull/internal/enrich"
	"shorepull/internal/freespace"
	"shorepull/internal/inventory"
	"shorepull/internal/logging"
	"shorepull/internal/selection"
	"shorepull/internal/services"
)

// Fetcher retrieves a single remote file into a local directory.
type Fetcher interface {
	Fetch(ctx context.Context, remotePath, localDir string) error
}

// Orchestrator wires discovery, enrichment, planning, and retrieval into the
// pull workflow. Interactive decisions stay with the caller; the orchestrator
// only produces batches and executes the caller's picks.
type Orchestrator struct {
	engine     *discovery.Engine
	enricher   *enrich.Enricher
	store      *inventory.Store
	fetcher    Fetcher
	prober     freespace.Prober
	stagingDir string
	cushion    uint64
	logger     *slog.Logger
}

// New constructs the pull orchestrator.
func New(
	engine *discovery.Engine,
	enricher *enrich.Enricher,
	store *inventory.Store,
	fetcher Fetcher,
	prober freespace.Prober,
	stagingDir string,
	cushion uint64,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		engine:     engine,
		enricher:   enricher,
		store:      store,
		fetcher:    fetcher,
		prober:     prober,
		stagingDir: stagingDir,
		cushion:    cushion,
		logger:     logging.NewComponentLogger(logger, "pull"),
	}
}

// Refresh discovers new remote date directories and records their packages.
// Refreshing is idempotent: a second run against an unchanged remote and
// inventory records nothing new.
func (o *Orchestrator) Refresh(ctx context.Context) (diag.Report, error) {
	ctx = services.WithStage(ctx, "refresh")
	candidates, report, err := o.engine.Discover(ctx)
	if err != nil {
		return report, err
	}
	report.Merge(o.enricher.Enrich(ctx, candidates))
	return report, nil
}

// PlanBatch builds a candidate batch of pending records for one data type,
// sized to the staging filesystem's free space minus the cushion. An empty
// batch is a normal outcome, not an error.
func (o *Orchestrator) PlanBatch(ctx context.Context, dataType inventory.DataType) (selection.Batch, error) {
	ctx = services.WithStage(ctx, "selection")
	pending, err := o.store.PendingByDataType(ctx, dataType)
	if err != nil {
		return selection.Batch{}, services.Wrap(services.ErrPersistence, "selection", "load pending", string(dataType), err)
	}
	if len(pending) == 0 {
		return selection.Batch{}, nil
	}

	available, err := o.prober.AvailableBytes(o.stagingDir)
	if err != nil {
		return selection.Batch{}, err
	}
	budget, ok := freespace.Budget(available, o.cushion)
	if !ok {
		return selection.Batch{}, services.Wrap(services.ErrProbe, "selection", "space check", o.stagingDir,
			fmt.Errorf("free space %d is inside the %d byte cushion", available, o.cushion))
	}

	batch := selection.Plan(pending, budget)
	logging.WithContext(ctx, o.logger).InfoContext(ctx, "planned batch",
		logging.String("data_type", string(dataType)),
		logging.Int("pending", len(pending)),
		logging.Int("selected", len(batch.Records)),
		logging.Int64("total_bytes", batch.TotalBytes),
	)
	return batch, nil
}

// FetchRecords retrieves each record's package and its checksum manifest into
// the staging directory. A failed transfer is reported and skipped; the
// record stays pending and nothing about it changes in the inventory.
func (o *Orchestrator) FetchRecords(ctx context.Context, records []*inventory.Record) diag.Report {
	ctx = services.WithStage(ctx, "fetch")
	log := logging.WithContext(ctx, o.logger)

	var report diag.Report
	report.Selected = len(records)

	for _, rec := range records {
		if err := o.fetcher.Fetch(ctx, rec.PackagePath, o.stagingDir); err != nil {
			report.Add("fetch", rec.PackagePath, err)
			continue
		}
		manifest := selection.ManifestPath(rec.PackagePath)
		if err := o.fetcher.Fetch(ctx, manifest, o.stagingDir); err != nil {
			report.Add("fetch", manifest, err)
			continue
		}
		report.Fetched++
		log.InfoContext(ctx, "package staged",
			logging.String("fileset_id", rec.FilesetID),
			logging.String("package_path", rec.PackagePath),
		)
	}
	return report
}
