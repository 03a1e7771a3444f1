package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"shorepull/internal/config"
)

// Store manages inventory persistence backed by SQLite. All mutations assume a
// single writer; callers serialize runs with the instance lock.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the inventory database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "inventory.db")
	return openPath(dbPath)
}

// OpenPath connects to an inventory database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	return openPath(dbPath)
}

func openPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Insert persists a new package record with pending status. A record whose
// package_path already exists is left untouched and reported as not inserted;
// this is the benign outcome of re-discovering a known package.
func (s *Store) Insert(ctx context.Context, rec *Record) (bool, error) {
	if rec == nil {
		return false, errors.New("record is nil")
	}
	if rec.PackagePath == "" {
		return false, errors.New("package path is required")
	}
	if rec.FilesetID == "" {
		return false, errors.New("fileset id is required")
	}
	if rec.SizeBytes < 0 {
		return false, fmt.Errorf("size_bytes %d is negative", rec.SizeBytes)
	}
	if rec.FileCount < 0 {
		return false, fmt.Errorf("file_count %d is negative", rec.FileCount)
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO packages (
            fileset_id, cruise_id, platform_name, instrument_name, instrument_type,
            size_bytes, file_count, package_path, date_dir, data_type,
            pulled_status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(package_path) DO NOTHING`,
		rec.FilesetID,
		rec.CruiseID,
		rec.PlatformName,
		rec.InstrumentName,
		rec.InstrumentType,
		rec.SizeBytes,
		rec.FileCount,
		rec.PackagePath,
		rec.DateDir,
		string(rec.DataType),
		string(StatusPending),
		timestamp,
		timestamp,
	)
	if err != nil {
		return false, fmt.Errorf("insert package: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("last insert id: %w", err)
	}
	rec.ID = id
	rec.PulledStatus = StatusPending
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return true, nil
}

// KnownDates returns the distinct date directories already present in the
// inventory. Discovery skips these entirely.
func (s *Store) KnownDates(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT date_dir FROM packages`)
	if err != nil {
		return nil, fmt.Errorf("query known dates: %w", err)
	}
	defer rows.Close()

	dates := make(map[string]struct{})
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		dates[date] = struct{}{}
	}
	return dates, rows.Err()
}

// PendingByDataType returns pending records of the given type in insertion
// order. Insertion order is the selection order; there is no priority policy.
func (s *Store) PendingByDataType(ctx context.Context, dataType DataType) ([]*Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+recordColumns+` FROM packages WHERE pulled_status = ? AND data_type = ? ORDER BY id`,
		StatusPending,
		string(dataType),
	)
	if err != nil {
		return nil, fmt.Errorf("query pending by data type: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// List returns all records in insertion order.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM packages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FindByFilesetID returns the oldest record matching a fileset identifier, or
// nil when the fileset is unknown.
func (s *Store) FindByFilesetID(ctx context.Context, filesetID string) (*Record, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+` FROM packages WHERE fileset_id = ? ORDER BY id LIMIT 1`,
		filesetID,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by fileset id: %w", err)
	}
	return rec, nil
}

// FindByPackagePath returns the record with the given remote path, or nil.
func (s *Store) FindByPackagePath(ctx context.Context, packagePath string) (*Record, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+` FROM packages WHERE package_path = ?`,
		packagePath,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by package path: %w", err)
	}
	return rec, nil
}

// MarkPulled advances a record from pending to pulled. The update runs in a
// transaction and only applies to pending records, so the transition cannot
// be reversed or repeated.
func (s *Store) MarkPulled(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark pulled: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx,
		`UPDATE packages SET pulled_status = ?, updated_at = ? WHERE id = ? AND pulled_status = ?`,
		string(StatusPulled),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		string(StatusPending),
	)
	if err != nil {
		return fmt.Errorf("mark pulled: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var status string
		row := tx.QueryRowContext(ctx, `SELECT pulled_status FROM packages WHERE id = ?`, id)
		if scanErr := row.Scan(&status); scanErr != nil {
			if errors.Is(scanErr, sql.ErrNoRows) {
				return fmt.Errorf("mark pulled: record %d not found", id)
			}
			return fmt.Errorf("mark pulled: %w", scanErr)
		}
		// Already pulled: idempotent no-op.
		return tx.Commit()
	}

	return tx.Commit()
}

// Summarize returns aggregate counts for diagnostic output.
func (s *Store) Summarize(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT pulled_status, data_type, COUNT(1) FROM packages GROUP BY pulled_status, data_type`)
	if err != nil {
		return Stats{}, fmt.Errorf("inventory stats: %w", err)
	}
	defer rows.Close()

	stats := Stats{ByType: make(map[DataType]int)}
	for rows.Next() {
		var status, dataType string
		var count int
		if err := rows.Scan(&status, &dataType, &count); err != nil {
			return Stats{}, err
		}
		stats.Total += count
		switch PullStatus(status) {
		case StatusPending:
			stats.Pending += count
		case StatusPulled:
			stats.Pulled += count
		}
		stats.ByType[DataType(dataType)] += count
	}
	return stats, rows.Err()
}

const recordColumns = "id, fileset_id, cruise_id, platform_name, instrument_name, instrument_type, size_bytes, file_count, package_path, date_dir, data_type, pulled_status, created_at, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		rec        Record
		dataType   string
		status     string
		createdRaw string
		updatedRaw string
	)

	if err := scanner.Scan(
		&rec.ID,
		&rec.FilesetID,
		&rec.CruiseID,
		&rec.PlatformName,
		&rec.InstrumentName,
		&rec.InstrumentType,
		&rec.SizeBytes,
		&rec.FileCount,
		&rec.PackagePath,
		&rec.DateDir,
		&dataType,
		&status,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	rec.DataType = DataType(dataType)
	rec.PulledStatus = PullStatus(status)
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		rec.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		rec.UpdatedAt = updated
	}
	return &rec, nil
}
