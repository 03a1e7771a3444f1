package discovery

import (
	"context"
	"time"

	"log/slog"

	"shorepull/internal/diag"
	"shorepull/internal/inventory"
	"shorepull/internal/logging"
	"shorepull/internal/services"
)

const dateLayout = "2006-01-02"

// Transport lists remote directories. A path that matches nothing yields an
// empty listing.
type Transport interface {
	List(ctx context.Context, remotePath string) ([]string, error)
}

// Candidate is a package entry found under a new date directory, not yet
// enriched or persisted.
type Candidate struct {
	FilesetID   string
	Survey      string
	PackagePath string
}

// Engine diffs remote date directories against the inventory and builds
// candidates for every package under dates not yet known.
type Engine struct {
	transport Transport
	store     *inventory.Store
	root      string
	cutoff    time.Time
	logger    *slog.Logger
}

// NewEngine constructs a discovery engine rooted at the remote archive path.
func NewEngine(transport Transport, store *inventory.Store, root string, cutoff time.Time, logger *slog.Logger) *Engine {
	return &Engine{
		transport: transport,
		store:     store,
		root:      root,
		cutoff:    cutoff,
		logger:    logging.NewComponentLogger(logger, "discovery"),
	}
}

// Discover returns candidates grouped by date directory. Dates already in the
// inventory are skipped entirely, so running Discover twice against an
// unchanged remote and store yields nothing the second time. A malformed
// entry is recorded and skipped; it never aborts its directory.
func (e *Engine) Discover(ctx context.Context) (map[string][]Candidate, diag.Report, error) {
	var report diag.Report

	entries, err := e.transport.List(ctx, e.root)
	if err != nil {
		return nil, report, services.Wrap(services.ErrTransport, "discovery", "list archive root", e.root, err)
	}

	known, err := e.store.KnownDates(ctx)
	if err != nil {
		return nil, report, services.Wrap(services.ErrPersistence, "discovery", "load known dates", "", err)
	}

	candidates := make(map[string][]Candidate)
	for _, entry := range entries {
		date, ok := e.eligibleDate(entry, known)
		if !ok {
			continue
		}

		dateCandidates, dateReport := e.listDate(ctx, date)
		report.Merge(dateReport)
		if len(dateCandidates) > 0 {
			candidates[date] = dateCandidates
			report.Discovered += len(dateCandidates)
		}
	}

	logging.WithContext(ctx, e.logger).InfoContext(ctx, "discovery complete",
		logging.Int("new_dates", len(candidates)),
		logging.Int("candidates", report.Discovered),
	)
	return candidates, report, nil
}

// eligibleDate filters root entries down to unknown dates after the cutoff.
// Entries that are not dates at all (README and friends) are skipped quietly.
func (e *Engine) eligibleDate(entry string, known map[string]struct{}) (string, bool) {
	parsed, err := time.Parse(dateLayout, entry)
	if err != nil {
		return "", false
	}
	if _, ok := known[entry]; ok {
		return "", false
	}
	if !parsed.After(e.cutoff) {
		return "", false
	}
	return entry, true
}

func (e *Engine) listDate(ctx context.Context, date string) ([]Candidate, diag.Report) {
	var report diag.Report

	dateDir := e.root + "/" + date
	entries, err := e.transport.List(ctx, dateDir)
	if err != nil {
		report.Add("discovery", dateDir, services.Wrap(services.ErrTransport, "discovery", "list date directory", dateDir, err))
		return nil, report
	}

	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		if IsManifest(entry) {
			continue
		}
		parsed, err := ParsePackageName(entry)
		if err != nil {
			report.Add("discovery", entry, err)
			e.logger.WarnContext(ctx, "skipping malformed entry",
				logging.String("date_dir", date),
				logging.String("entry", entry),
				logging.Error(err),
			)
			continue
		}
		candidates = append(candidates, Candidate{
			FilesetID:   parsed.FilesetID,
			Survey:      parsed.Survey,
			PackagePath: dateDir + "/" + entry,
		})
	}
	return candidates, report
}
