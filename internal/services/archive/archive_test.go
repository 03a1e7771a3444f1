package archive_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"shorepull/internal/services/archive"
	"shorepull/internal/services/runner"
)

type recordingExecutor struct {
	err    error
	binary string
	args   []string
}

func (r *recordingExecutor) Run(_ context.Context, binary string, args []string, _ string) (runner.Result, error) {
	r.binary = binary
	r.args = args
	return runner.Result{}, r.err
}

func TestTarExtractorArgs(t *testing.T) {
	exec := &recordingExecutor{}
	run := runner.New(1, 0, 0, runner.WithExecutor(exec))
	extractor, err := archive.NewTarExtractor("tar", run)
	if err != nil {
		t.Fatalf("NewTarExtractor failed: %v", err)
	}

	if err := extractor.Extract(context.Background(), "/staging/EN680_1_01.tar", "/data/multibeam/endeavor/EN680"); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	want := []string{"-C", "/data/multibeam/endeavor/EN680", "-xf", "/staging/EN680_1_01.tar"}
	if exec.binary != "tar" || !reflect.DeepEqual(exec.args, want) {
		t.Fatalf("unexpected invocation: %s %v", exec.binary, exec.args)
	}
}

func TestRsyncSynchronizerArgs(t *testing.T) {
	exec := &recordingExecutor{}
	run := runner.New(1, 0, 0, runner.WithExecutor(exec))
	syncer, err := archive.NewRsyncSynchronizer("rsync", run)
	if err != nil {
		t.Fatalf("NewRsyncSynchronizer failed: %v", err)
	}

	if err := syncer.Sync(context.Background(), "/staging/EN680_2_01.tar", "/data/trackline/gravity/endeavor/EN680"); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	want := []string{"-WvlOt", "/staging/EN680_2_01.tar", "/data/trackline/gravity/endeavor/EN680/"}
	if exec.binary != "rsync" || !reflect.DeepEqual(exec.args, want) {
		t.Fatalf("unexpected invocation: %s %v", exec.binary, exec.args)
	}
}

func TestExtractErrorIsWrapped(t *testing.T) {
	exec := &recordingExecutor{err: errors.New("tar: short read")}
	run := runner.New(1, 0, 0, runner.WithExecutor(exec))
	extractor, err := archive.NewTarExtractor("tar", run)
	if err != nil {
		t.Fatalf("NewTarExtractor failed: %v", err)
	}

	if err := extractor.Extract(context.Background(), "/staging/bad.tar", "/dest"); err == nil {
		t.Fatal("expected extraction error")
	}
}
