package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Result captures the output of a completed command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor abstracts command execution so tests can substitute doubles
// without spawning processes.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, stdin string) (Result, error)
}

// Runner executes external commands with a uniform bounded-retry policy: on
// failure it waits a fixed delay and retries up to the configured attempt
// count before surfacing a terminal error. An "already exists" outcome is
// treated as success rather than failure.
type Runner struct {
	attempts int
	delay    time.Duration
	timeout  time.Duration
	exec     Executor
	sleep    func(time.Duration)
}

// Option configures optional Runner behavior.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithSleep injects the inter-attempt wait (primarily for tests).
func WithSleep(sleep func(time.Duration)) Option {
	return func(r *Runner) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// New constructs a Runner. attempts values below 1 are treated as 1.
func New(attempts int, delay, timeout time.Duration, opts ...Option) *Runner {
	if attempts < 1 {
		attempts = 1
	}
	r := &Runner{
		attempts: attempts,
		delay:    delay,
		timeout:  timeout,
		exec:     commandExecutor{},
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the command, retrying on failure. The final attempt's result is
// returned alongside any terminal error.
func (r *Runner) Run(ctx context.Context, binary string, args []string, stdin string) (Result, error) {
	var (
		result Result
		err    error
	)
	for attempt := 1; ; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if r.timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, r.timeout)
		}
		result, err = r.exec.Run(attemptCtx, binary, args, stdin)
		if cancel != nil {
			cancel()
		}

		if err == nil {
			return result, nil
		}
		if alreadyExists(result) {
			// The remote side reports the artifact is already in place.
			return result, nil
		}
		if ctx.Err() != nil {
			return result, fmt.Errorf("%s: %w", binary, ctx.Err())
		}
		if attempt >= r.attempts {
			return result, fmt.Errorf("%s failed after %d attempt(s): %w", binary, attempt, err)
		}
		r.sleep(r.delay)
	}
}

func alreadyExists(result Result) bool {
	return strings.Contains(result.Stdout, "file already exists") ||
		strings.Contains(result.Stderr, "file already exists")
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, stdin string) (Result, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	runErr := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return result, fmt.Errorf("exit status %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr))
		}
		return result, runErr
	}
	return result, nil
}
