// Package proc runs external tools and hands back their complete
// outcome in one value. Output accumulation happens internally; the
// caller only ever sees a finished invocation.
package proc

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Outcome is the result of one external-process invocation.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes an external command. A non-nil error means the
// process could not be started (binary missing, exec failure); a
// process that ran and exited non-zero returns a nil error with the
// code in the Outcome. Callers decide which of the two is fatal.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Outcome, error)
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Outcome, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	outcome := Outcome{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			outcome.ExitCode = exitErr.ExitCode()
			return outcome, nil
		}
		return outcome, err
	}
	return outcome, nil
}
