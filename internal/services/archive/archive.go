// Package archive wraps the tar and rsync binaries used when routing
// validated packages into their landing zones.
package archive

import (
	"context"
	"errors"
	"strings"

	"shorepull/internal/services"
	"shorepull/internal/services/runner"
)

// TarExtractor unpacks tar containers using the system tar binary.
type TarExtractor struct {
	binary string
	run    *runner.Runner
}

// NewTarExtractor constructs a tar-backed extractor.
func NewTarExtractor(binary string, run *runner.Runner) (*TarExtractor, error) {
	if strings.TrimSpace(binary) == "" {
		return nil, errors.New("tar binary required")
	}
	if run == nil {
		return nil, errors.New("tar runner required")
	}
	return &TarExtractor{binary: binary, run: run}, nil
}

// Extract unpacks tarPath into destDir.
func (t *TarExtractor) Extract(ctx context.Context, tarPath, destDir string) error {
	args := []string{"-C", destDir, "-xf", tarPath}
	if _, err := t.run.Run(ctx, t.binary, args, ""); err != nil {
		return services.Wrap(services.ErrRouting, "routing", "extract", tarPath, err)
	}
	return nil
}

// RsyncSynchronizer copies archives into place preserving attributes.
type RsyncSynchronizer struct {
	binary string
	run    *runner.Runner
}

// NewRsyncSynchronizer constructs an rsync-backed synchronizer.
func NewRsyncSynchronizer(binary string, run *runner.Runner) (*RsyncSynchronizer, error) {
	if strings.TrimSpace(binary) == "" {
		return nil, errors.New("rsync binary required")
	}
	if run == nil {
		return nil, errors.New("rsync runner required")
	}
	return &RsyncSynchronizer{binary: binary, run: run}, nil
}

// Sync copies srcPath into destDir. Whole-file transfer with times and
// symlinks preserved, matching how the archive server stages packages.
func (r *RsyncSynchronizer) Sync(ctx context.Context, srcPath, destDir string) error {
	args := []string{"-WvlOt", srcPath, destDir + "/"}
	if _, err := r.run.Run(ctx, r.binary, args, ""); err != nil {
		return services.Wrap(services.ErrRouting, "routing", "sync", srcPath, err)
	}
	return nil
}
