// Package checksum computes archive digests for manifest verification.
package checksum

import (
	"context"
	"crypto/md5" //nolint:gosec // manifest format is md5sum output
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// MD5 streams a file through crypto/md5, matching the md5sum manifests the
// archive server publishes.
type MD5 struct{}

// Sum returns the lowercase hex digest of the file at path.
func (MD5) Sum(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	hasher := md5.New() //nolint:gosec
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash archive: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
