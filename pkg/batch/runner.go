package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Runner starts one external program and waits for it to finish.
type Runner interface {
	Run(ctx context.Context, program string, args []string) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, program string, args []string) error

func (f RunnerFunc) Run(ctx context.Context, program string, args []string) error {
	return f(ctx, program, args)
}

// ExecRunner runs programs with os/exec. The tool's own output is passed
// through; nil writers fall back to the process streams.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (r ExecRunner) Run(ctx context.Context, program string, args []string) error {
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to execute %s: %w", program, err)
	}
	return nil
}

// ExitCode extracts the exit status from a Runner error. It returns -1 when
// the program never started or was killed by a signal, and 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
