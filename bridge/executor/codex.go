// Package executor wraps the external codex CLI. It turns a resolved
// invocation into a subprocess run and classifies the failures callers care
// about: binary missing, timeout, and non-zero exit.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/codexbridge/codex-bridge/bridge/delegate/ports"
)

// ErrBinaryNotFound is returned when the CLI is not on PATH.
var ErrBinaryNotFound = errors.New("codex CLI not found; install it with: npm install -g @openai/codex")

// ExitError reports a CLI run that completed with a non-zero status.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("codex CLI exited with status %d: %s", e.Code, e.Stderr)
}

// TimeoutError reports a run killed by its deadline.
type TimeoutError struct {
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("codex CLI timed out after %s", e.Limit)
}

// CodexCLI invokes the codex binary in non-interactive exec mode.
type CodexCLI struct {
	binary  string
	timeout time.Duration
}

// NewCodexCLI creates an executor running binary with a per-invocation
// timeout.
func NewCodexCLI(binary string, timeout time.Duration) *CodexCLI {
	if binary == "" {
		binary = "codex"
	}
	return &CodexCLI{binary: binary, timeout: timeout}
}

// buildArgs assembles the exec-mode argument list. The "--" delimiter keeps
// prompts with leading dashes from being parsed as flags.
func (c *CodexCLI) buildArgs(inv ports.Invocation) []string {
	args := []string{"exec", "-C", inv.WorkingDirectory}

	if !inv.AllowWrite {
		args = append(args, "-c", "sandbox_permissions=[]")
	}

	if inv.ExecutionMode == "on-failure" && inv.SandboxMode == "workspace-write" && inv.AllowWrite {
		args = append(args, "--full-auto")
	} else {
		args = append(args, "-s", inv.SandboxMode)
	}

	args = append(args, "--", inv.Prompt)
	return args
}

// Invoke runs the CLI to completion and returns its output. The provided
// context is bounded by the executor's timeout.
func (c *CodexCLI) Invoke(ctx context.Context, inv ports.Invocation) (ports.ExecResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, c.buildArgs(inv)...)
	cmd.Dir = inv.WorkingDirectory

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := ports.ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}

	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return result, &TimeoutError{Limit: c.timeout}
		}
		// Caller cancellation, not our deadline.
		return result, ctxErr
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return result, ErrBinaryNotFound
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return result, &ExitError{Code: exitErr.ExitCode(), Stderr: stderr.String()}
	}

	return result, fmt.Errorf("running codex CLI: %w", err)
}

// Ensure CodexCLI implements the Executor interface.
var _ ports.Executor = (*CodexCLI)(nil)
