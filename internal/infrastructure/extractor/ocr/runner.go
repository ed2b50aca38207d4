package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// Command is one external invocation. Stdin, when set, is piped to the process.
type Command struct {
	Name  string
	Args  []string
	Stdin []byte
}

// Runner executes commands; tests substitute a stub.
type Runner interface {
	Run(ctx context.Context, cmd Command) (stdout []byte, err error)
}

// CommandError carries the tail of stderr from a failed command.
type CommandError struct {
	Name   string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Name, e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error { return e.Err }

const stderrLimit = 512

// execRunner bounds every invocation by timeout; zero leaves only ctx in charge.
type execRunner struct {
	timeout time.Duration
	logger  *slog.Logger
}

func (r execRunner) Run(ctx context.Context, c Command) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if c.Stdin != nil {
		cmd.Stdin = bytes.NewReader(c.Stdin)
	}

	started := time.Now()
	err := cmd.Run()
	elapsed := time.Since(started).Milliseconds()
	if err == nil {
		r.logger.Debug("ocr_command_ok", "cmd", c.Name, "duration_ms", elapsed, "stdout_bytes", stdout.Len())
		return stdout.Bytes(), nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s: %w", r.timeout, ctx.Err())
	}
	tail := stderr.String()
	if len(tail) > stderrLimit {
		tail = tail[len(tail)-stderrLimit:]
	}
	r.logger.Warn("ocr_command_failed", "cmd", c.Name, "duration_ms", elapsed, "error", err)
	return nil, &CommandError{Name: c.Name, Stderr: tail, Err: err}
}
