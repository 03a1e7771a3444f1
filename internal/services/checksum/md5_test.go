package checksum_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"shorepull/internal/services/checksum"
)

func TestSum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.tar")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	sum, err := checksum.MD5{}.Sum(context.Background(), path)
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	// md5sum of "hello world".
	if sum != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
		t.Fatalf("unexpected digest %s", sum)
	}
}

func TestSumMissingFile(t *testing.T) {
	if _, err := (checksum.MD5{}).Sum(context.Background(), "/no/such/file"); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestSumCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (checksum.MD5{}).Sum(ctx, "/ignored"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
