package enrich

import (
	"context"

	"log/slog"

	"shorepull/internal/diag"
	"shorepull/internal/discovery"
	"shorepull/internal/inventory"
	"shorepull/internal/logging"
	"shorepull/internal/services"
	"shorepull/internal/services/rvdata"
)

// MetadataProvider looks up fileset metadata by identifier.
type MetadataProvider interface {
	Lookup(ctx context.Context, filesetID string) (rvdata.Metadata, error)
}

// Enricher turns discovery candidates into persisted inventory records.
type Enricher struct {
	provider MetadataProvider
	store    *inventory.Store
	logger   *slog.Logger
}

// NewEnricher constructs the enrichment stage.
func NewEnricher(provider MetadataProvider, store *inventory.Store, logger *slog.Logger) *Enricher {
	return &Enricher{
		provider: provider,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "enrich"),
	}
}

// Enrich queries the metadata provider for every candidate, classifies it,
// and inserts a pending record. A provider failure skips the candidate
// without retry or persistence; since nothing was written, the candidate is
// re-discovered on the next run and the unique package_path keeps the
// eventual insert from duplicating.
func (e *Enricher) Enrich(ctx context.Context, candidates map[string][]discovery.Candidate) diag.Report {
	log := logging.WithContext(ctx, e.logger)

	var report diag.Report
	for date, group := range candidates {
		for _, candidate := range group {
			meta, err := e.provider.Lookup(ctx, candidate.FilesetID)
			if err != nil {
				report.Add("enrichment", candidate.PackagePath, err)
				log.WarnContext(ctx, "metadata lookup failed, candidate skipped",
					logging.String("fileset_id", candidate.FilesetID),
					logging.String("package_path", candidate.PackagePath),
					logging.Error(err),
				)
				continue
			}

			rec := &inventory.Record{
				FilesetID:      candidate.FilesetID,
				CruiseID:       meta.CruiseID,
				PlatformName:   meta.VesselName,
				InstrumentName: meta.InstrumentName,
				InstrumentType: meta.InstrumentType,
				SizeBytes:      meta.SizeBytes,
				FileCount:      meta.FileCount,
				PackagePath:    candidate.PackagePath,
				DateDir:        date,
				DataType:       Classify(meta.InstrumentType, meta.InstrumentName),
			}

			inserted, err := e.store.Insert(ctx, rec)
			if err != nil {
				report.Add("enrichment", candidate.PackagePath,
					services.Wrap(services.ErrPersistence, "enrichment", "insert record", candidate.PackagePath, err))
				continue
			}
			if !inserted {
				log.DebugContext(ctx, "package already known",
					logging.String("package_path", candidate.PackagePath),
				)
				continue
			}

			report.Enriched++
			log.InfoContext(ctx, "recorded dataset",
				logging.String("cruise_id", rec.CruiseID),
				logging.String("instrument", rec.InstrumentName),
				logging.String("data_type", string(rec.DataType)),
			)
		}
	}
	return report
}
