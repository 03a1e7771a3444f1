package routing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"shorepull/internal/diag"
	"shorepull/internal/discovery"
	"shorepull/internal/freespace"
	"shorepull/internal/inventory"
	"shorepull/internal/logging"
	"shorepull/internal/services"
)

// Extractor unpacks a tar container into a destination directory.
type Extractor interface {
	Extract(ctx context.Context, tarPath, destDir string) error
}

// Synchronizer copies an archive into a destination directory preserving
// attributes.
type Synchronizer interface {
	Sync(ctx context.Context, srcPath, destDir string) error
}

// Router moves validated tarballs into their landing zones and advances
// inventory state. A failure at any step leaves the record pending and the
// source in the staging directory, so the next sort pass retries it.
type Router struct {
	store     *inventory.Store
	rules     RuleSet
	prober    freespace.Prober
	extractor Extractor
	syncer    Synchronizer
	cushion   uint64
	logger    *slog.Logger
}

// NewRouter constructs the routing engine.
func NewRouter(
	store *inventory.Store,
	rules RuleSet,
	prober freespace.Prober,
	extractor Extractor,
	syncer Synchronizer,
	cushion uint64,
	logger *slog.Logger,
) *Router {
	return &Router{
		store:     store,
		rules:     rules,
		prober:    prober,
		extractor: extractor,
		syncer:    syncer,
		cushion:   cushion,
		logger:    logging.NewComponentLogger(logger, "routing"),
	}
}

// SortDir routes every validated tarball in a landing directory. Callers must
// only invoke it after the batch validated; a package that cannot be routed
// is skipped with a diagnostic and retried on a later pass.
func (r *Router) SortDir(ctx context.Context, landingDir string) (diag.Report, error) {
	ctx = services.WithStage(ctx, "routing")

	var report diag.Report

	tarballs, err := listTarballs(landingDir)
	if err != nil {
		return report, err
	}

	for _, tarball := range tarballs {
		if err := r.routeOne(ctx, landingDir, tarball); err != nil {
			if services.Fatal(err) {
				return report, err
			}
			report.Add("routing", tarball, err)
			continue
		}
		report.Routed++
	}
	return report, nil
}

func (r *Router) routeOne(ctx context.Context, landingDir, tarball string) error {
	log := logging.WithContext(ctx, r.logger)
	tarPath := filepath.Join(landingDir, tarball)

	name, err := discovery.ParsePackageName(tarball)
	if err != nil {
		return services.Wrap(services.ErrRouting, "routing", "parse name", tarball, err)
	}

	rec, err := r.store.FindByFilesetID(ctx, name.FilesetID)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "routing", "find record", name.FilesetID, err)
	}
	if rec == nil {
		// Never invent a destination for an unknown fileset.
		return services.Wrap(services.ErrNotFound, "routing", "find record", tarball,
			fmt.Errorf("no inventory record for fileset %s", name.FilesetID))
	}

	rule, ok := r.rules.Resolve(rec.DataType, rec.InstrumentType, rec.InstrumentName)
	if !ok {
		return services.Wrap(services.ErrRouting, "routing", "resolve rule", tarball,
			fmt.Errorf("no routing rule for %s/%s", rec.DataType, rec.InstrumentType))
	}

	dest := rule.Render(strings.ToLower(rec.PlatformName), name.Survey)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return services.Wrap(services.ErrRouting, "routing", "create destination", dest, err)
	}

	available, err := r.prober.AvailableBytes(dest)
	if err != nil {
		return err
	}
	if _, ok := freespace.Budget(available, r.cushion); !ok {
		return services.Wrap(services.ErrRouting, "routing", "space check", dest,
			fmt.Errorf("free space %d is inside the %d byte cushion", available, r.cushion))
	}

	if rule.Untar {
		log.InfoContext(ctx, "extracting package",
			logging.String("tarball", tarball),
			logging.String("destination", dest),
			logging.String("rule", rule.Name),
		)
		if err := r.extractor.Extract(ctx, tarPath, dest); err != nil {
			return err
		}
	} else {
		log.InfoContext(ctx, "syncing package",
			logging.String("tarball", tarball),
			logging.String("destination", dest),
			logging.String("rule", rule.Name),
		)
		if err := r.syncer.Sync(ctx, tarPath, dest); err != nil {
			return err
		}
	}

	if err := removeSources(tarPath); err != nil {
		return services.Wrap(services.ErrRouting, "routing", "remove sources", tarball, err)
	}

	if err := r.store.MarkPulled(ctx, rec.ID); err != nil {
		return services.Wrap(services.ErrPersistence, "routing", "mark pulled", rec.FilesetID, err)
	}

	log.InfoContext(ctx, "package routed",
		logging.String("fileset_id", rec.FilesetID),
		logging.String("destination", dest),
	)
	return nil
}

// removeSources deletes the landed tarball and its manifest from staging.
// Only after both the placement and this cleanup succeed is the record
// advanced, so a partial failure is retried whole.
func removeSources(tarPath string) error {
	if err := os.Remove(tarPath); err != nil {
		return err
	}
	manifest := tarPath + discovery.ManifestSuffix
	if err := os.Remove(manifest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func listTarballs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read landing directory: %w", err)
	}
	var tarballs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".tar") {
			tarballs = append(tarballs, entry.Name())
		}
	}
	return tarballs, nil
}
