package proc_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/transcodelab/transcribe-server/internal/proc"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests shell out to /bin/sh")
	}
}

func TestExecRunnerSuccess(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	var r proc.ExecRunner
	out, err := r.Run(context.Background(), "/bin/sh", "-c", "printf hello; printf world >&2")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", out.ExitCode)
	}
	if out.Stdout != "hello" {
		t.Errorf("Stdout = %q, want %q", out.Stdout, "hello")
	}
	if out.Stderr != "world" {
		t.Errorf("Stderr = %q, want %q", out.Stderr, "world")
	}
}

func TestExecRunnerNonZeroExit(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	var r proc.ExecRunner
	out, err := r.Run(context.Background(), "/bin/sh", "-c", "printf partial; exit 3")
	if err != nil {
		t.Fatalf("non-zero exit should not be a Run error, got: %v", err)
	}
	if out.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", out.ExitCode)
	}
	if out.Stdout != "partial" {
		t.Errorf("Stdout = %q, want %q (output before failure must survive)", out.Stdout, "partial")
	}
}

func TestExecRunnerSpawnFailure(t *testing.T) {
	t.Parallel()

	var r proc.ExecRunner
	_, err := r.Run(context.Background(), "definitely-not-a-real-binary-8f2a")
	if err == nil {
		t.Fatal("expected spawn-level error for missing binary")
	}
}
