// Package exec runs external helper tools with bounded execution time.
// It wraps os/exec with a context-aware API that captures output and
// normalizes exit handling, so callers like the structural-match runner
// can treat a timeout, a crash, and a non-zero exit uniformly.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Config describes one helper invocation.
type Config struct {
	// Command is the name or path of the executable (required).
	Command string

	// Args are the command-line arguments.
	Args []string

	// WorkDir is the working directory; inherited when empty.
	WorkDir string

	// Timeout bounds the invocation. Zero means the parent context alone
	// decides when to give up.
	Timeout time.Duration
}

// Result captures what the helper produced.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Run executes the configured command and waits for it to finish.
//
// A non-zero exit is not an error: the Result carries the exit code and
// the caller decides what it means. Run returns an error only when the
// command could not run at all, was cancelled, or hit the timeout; in
// the last two cases the process is killed before Run returns.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Command == "" {
		return nil, errors.New("command is required")
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = cfg.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err != nil {
		switch ctx.Err() {
		case context.DeadlineExceeded:
			return result, fmt.Errorf("command timed out after %v", cfg.Timeout)
		case context.Canceled:
			return result, errors.New("command cancelled")
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("command execution failed: %w", err)
	}
	return result, nil
}

// LookPath reports where a helper binary lives on PATH, so configuration
// problems surface at startup instead of on the first discovery call.
func LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("binary %q not found in PATH: %w", name, err)
	}
	return path, nil
}
