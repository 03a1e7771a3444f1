package validation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"shorepull/internal/discovery"
	"shorepull/internal/logging"
)

const checksumLength = 32

// Checksummer computes an archive digest.
type Checksummer interface {
	Sum(ctx context.Context, path string) (string, error)
}

// Outcome is the per-archive validation result.
type Outcome struct {
	ArchivePath      string
	ExpectedChecksum string
	ComputedChecksum string
	Matched          bool
	Err              error
}

// BatchResult aggregates outcomes for one landing directory. Validation is
// all-or-nothing: a single failed archive blocks routing for the whole batch.
type BatchResult struct {
	Outcomes []Outcome
}

// OK reports whether every archive in the batch validated. An empty batch is
// valid: there is nothing to block.
func (b BatchResult) OK() bool {
	for _, outcome := range b.Outcomes {
		if !outcome.Matched {
			return false
		}
	}
	return true
}

// Failures returns the outcomes that did not validate.
func (b BatchResult) Failures() []Outcome {
	var failed []Outcome
	for _, outcome := range b.Outcomes {
		if !outcome.Matched {
			failed = append(failed, outcome)
		}
	}
	return failed
}

// Engine verifies checksum manifests for transferred archives.
type Engine struct {
	sums   Checksummer
	logger *slog.Logger
}

// NewEngine constructs a validation engine.
func NewEngine(sums Checksummer, logger *slog.Logger) *Engine {
	return &Engine{
		sums:   sums,
		logger: logging.NewComponentLogger(logger, "validation"),
	}
}

// ValidateDir checks every archive in a landing directory. Compressed
// containers are decompressed in place first; from then on the tar path is
// canonical. The returned result reports per-archive outcomes; callers must
// not route anything from the batch unless OK.
func (e *Engine) ValidateDir(ctx context.Context, landingDir string) (BatchResult, error) {
	var result BatchResult

	archives, err := listArchives(landingDir)
	if err != nil {
		return result, err
	}

	for _, archivePath := range archives {
		if strings.HasSuffix(archivePath, ".gz") {
			e.logger.InfoContext(ctx, "decompressing archive", logging.String("archive", archivePath))
			tarPath, err := gunzipInPlace(archivePath)
			if err != nil {
				result.Outcomes = append(result.Outcomes, Outcome{ArchivePath: archivePath, Err: err})
				continue
			}
			archivePath = tarPath
		}
		result.Outcomes = append(result.Outcomes, e.validateArchive(ctx, archivePath))
	}

	return result, nil
}

func (e *Engine) validateArchive(ctx context.Context, archivePath string) Outcome {
	outcome := Outcome{ArchivePath: archivePath}

	manifestPath := archivePath + discovery.ManifestSuffix
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		outcome.Err = fmt.Errorf("missing checksum manifest for %s: %w", archivePath, err)
		return outcome
	}

	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		outcome.Err = fmt.Errorf("manifest %s is empty", manifestPath)
		return outcome
	}
	expected := fields[0]
	if len(expected) != checksumLength {
		outcome.Err = fmt.Errorf("manifest %s checksum %q is not %d characters", manifestPath, expected, checksumLength)
		return outcome
	}
	outcome.ExpectedChecksum = expected

	e.logger.InfoContext(ctx, "computing checksum", logging.String("archive", archivePath))
	computed, err := e.sums.Sum(ctx, archivePath)
	if err != nil {
		outcome.Err = fmt.Errorf("compute checksum for %s: %w", archivePath, err)
		return outcome
	}
	outcome.ComputedChecksum = computed

	if computed != expected {
		outcome.Err = fmt.Errorf("checksum mismatch for %s: manifest %s, computed %s", filepath.Base(archivePath), expected, computed)
		return outcome
	}

	outcome.Matched = true
	e.logger.InfoContext(ctx, "checksum valid", logging.String("archive", filepath.Base(archivePath)))
	return outcome
}

// gunzipInPlace decompresses a .gz archive next to itself, removes the
// compressed original, and returns the tar path.
func gunzipInPlace(gzPath string) (string, error) {
	tarPath := strings.TrimSuffix(gzPath, ".gz")

	in, err := os.Open(gzPath)
	if err != nil {
		return "", fmt.Errorf("open compressed archive: %w", err)
	}
	defer in.Close()

	reader, err := gzip.NewReader(in)
	if err != nil {
		return "", fmt.Errorf("read gzip header: %w", err)
	}
	defer reader.Close()

	out, err := os.OpenFile(tarPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create tar container: %w", err)
	}

	if _, err := io.Copy(out, reader); err != nil { //nolint:gosec
		_ = out.Close()
		_ = os.Remove(tarPath)
		return "", fmt.Errorf("decompress %s: %w", gzPath, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("finish tar container: %w", err)
	}

	if err := os.Remove(gzPath); err != nil {
		return "", fmt.Errorf("remove compressed original: %w", err)
	}
	return tarPath, nil
}

func listArchives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read landing directory: %w", err)
	}
	var archives []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".tar") || strings.HasSuffix(name, ".gz") {
			archives = append(archives, filepath.Join(dir, name))
		}
	}
	return archives, nil
}
