package validation_test

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"

	"shorepull/internal/logging"
	"shorepull/internal/services/checksum"
	"shorepull/internal/testsupport"
	"shorepull/internal/validation"
)

func newEngine() *validation.Engine {
	return validation.NewEngine(checksum.MD5{}, logging.NewNop())
}

func TestValidateDirAllValid(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"RR2107_1_01.tar", "RR2107_2_01.tar", "RR2107_3_01.tar"} {
		testsupport.WriteArchiveWithManifest(t, dir, name, []byte("payload for "+name))
	}

	result, err := newEngine().ValidateDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("ValidateDir failed: %v", err)
	}
	if !result.OK() {
		t.Fatalf("expected batch to validate: %#v", result.Failures())
	}
	if len(result.Outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(result.Outcomes))
	}
}

func TestValidateDirOneMismatchBlocksBatch(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteArchiveWithManifest(t, dir, "RR2107_1_01.tar", []byte("good"))
	bad := testsupport.WriteArchiveWithManifest(t, dir, "RR2107_2_01.tar", []byte("original"))
	// Corrupt the archive after its manifest was written.
	if err := os.WriteFile(bad, []byte("tampered"), 0o644); err != nil {
		t.Fatalf("corrupt archive: %v", err)
	}

	result, err := newEngine().ValidateDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("ValidateDir failed: %v", err)
	}
	if result.OK() {
		t.Fatal("expected batch to fail validation")
	}
	failures := result.Failures()
	if len(failures) != 1 {
		t.Fatalf("expected exactly one failure, got %d", len(failures))
	}
	if failures[0].ExpectedChecksum == failures[0].ComputedChecksum {
		t.Fatalf("expected differing checksums: %#v", failures[0])
	}
}

func TestValidateDirDecompressesInPlace(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("tar bytes inside gzip")

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	if _, err := zw.Write(payload); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	gzPath := filepath.Join(dir, "RR2107_9_01.tar.gz")
	testsupport.WriteContent(t, gzPath, compressed.Bytes())

	sum := md5.Sum(payload)
	manifest := hex.EncodeToString(sum[:]) + "  RR2107_9_01.tar\n"
	testsupport.WriteContent(t, filepath.Join(dir, "RR2107_9_01.tar.md5"), []byte(manifest))

	result, err := newEngine().ValidateDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("ValidateDir failed: %v", err)
	}
	if !result.OK() {
		t.Fatalf("expected decompressed archive to validate: %#v", result.Failures())
	}

	if _, err := os.Stat(gzPath); !os.IsNotExist(err) {
		t.Fatal("expected compressed original to be removed")
	}
	tarPath := filepath.Join(dir, "RR2107_9_01.tar")
	restored, err := os.ReadFile(tarPath)
	if err != nil {
		t.Fatalf("read decompressed tar: %v", err)
	}
	if !bytes.Equal(restored, payload) {
		t.Fatal("decompressed content does not match original payload")
	}
}

func TestValidateDirMissingManifest(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteContent(t, filepath.Join(dir, "RR2107_5_01.tar"), []byte("no manifest"))

	result, err := newEngine().ValidateDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("ValidateDir failed: %v", err)
	}
	if result.OK() {
		t.Fatal("expected missing manifest to fail the batch")
	}
}

func TestValidateDirRejectsShortChecksum(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteContent(t, filepath.Join(dir, "RR2107_6_01.tar"), []byte("payload"))
	testsupport.WriteContent(t, filepath.Join(dir, "RR2107_6_01.tar.md5"), []byte("deadbeef  RR2107_6_01.tar\n"))

	result, err := newEngine().ValidateDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("ValidateDir failed: %v", err)
	}
	if result.OK() {
		t.Fatal("expected malformed checksum to fail the batch")
	}
}

func TestValidateDirEmptyIsOK(t *testing.T) {
	result, err := newEngine().ValidateDir(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("ValidateDir failed: %v", err)
	}
	if !result.OK() {
		t.Fatal("an empty staging directory blocks nothing")
	}
	if len(result.Outcomes) != 0 {
		t.Fatalf("expected no outcomes, got %d", len(result.Outcomes))
	}
}
