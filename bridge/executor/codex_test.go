package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codexbridge/codex-bridge/bridge/delegate/ports"
)

func TestBuildArgsReadOnly(t *testing.T) {
	c := NewCodexCLI("codex", time.Minute)

	args := c.buildArgs(ports.Invocation{
		Prompt:           "explain this code",
		WorkingDirectory: "/proj",
		ExecutionMode:    "on-failure",
		SandboxMode:      "read-only",
		AllowWrite:       false,
	})

	assert.Equal(t, []string{
		"exec", "-C", "/proj",
		"-c", "sandbox_permissions=[]",
		"-s", "read-only",
		"--", "explain this code",
	}, args)
}

func TestBuildArgsFullAuto(t *testing.T) {
	c := NewCodexCLI("codex", time.Minute)

	args := c.buildArgs(ports.Invocation{
		Prompt:           "apply the fix",
		WorkingDirectory: "/proj",
		ExecutionMode:    "on-failure",
		SandboxMode:      "workspace-write",
		AllowWrite:       true,
	})

	assert.Equal(t, []string{
		"exec", "-C", "/proj",
		"--full-auto",
		"--", "apply the fix",
	}, args)
}

func TestBuildArgsExplicitSandboxWhenNotFullAuto(t *testing.T) {
	c := NewCodexCLI("codex", time.Minute)

	args := c.buildArgs(ports.Invocation{
		Prompt:           "review",
		WorkingDirectory: "/proj",
		ExecutionMode:    "never",
		SandboxMode:      "workspace-write",
		AllowWrite:       true,
	})

	assert.Contains(t, args, "-s")
	assert.Contains(t, args, "workspace-write")
	assert.NotContains(t, args, "--full-auto")
}

func TestBuildArgsPromptAfterDelimiter(t *testing.T) {
	c := NewCodexCLI("codex", time.Minute)

	args := c.buildArgs(ports.Invocation{
		Prompt:           "--looks-like-a-flag",
		WorkingDirectory: "/proj",
		ExecutionMode:    "on-failure",
		SandboxMode:      "read-only",
	})

	require.GreaterOrEqual(t, len(args), 2)
	assert.Equal(t, "--", args[len(args)-2])
	assert.Equal(t, "--looks-like-a-flag", args[len(args)-1])
}

func TestInvokeMissingBinary(t *testing.T) {
	c := NewCodexCLI("definitely-not-a-real-binary-xyz", time.Second)

	_, err := c.Invoke(context.Background(), ports.Invocation{
		Prompt:           "anything",
		WorkingDirectory: t.TempDir(),
		ExecutionMode:    "on-failure",
		SandboxMode:      "read-only",
	})

	assert.ErrorIs(t, err, ErrBinaryNotFound)
}

func TestInvokeNonZeroExit(t *testing.T) {
	c := NewCodexCLI("false", time.Second)

	_, err := c.Invoke(context.Background(), ports.Invocation{
		Prompt:           "anything",
		WorkingDirectory: t.TempDir(),
		ExecutionMode:    "on-failure",
		SandboxMode:      "read-only",
	})

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
}

func TestInvokeTimeout(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "slow-codex")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 5\n"), 0o755))

	c := NewCodexCLI(script, 50*time.Millisecond)

	_, err := c.Invoke(context.Background(), ports.Invocation{
		Prompt:           "anything",
		WorkingDirectory: dir,
		ExecutionMode:    "on-failure",
		SandboxMode:      "read-only",
	})

	var toErr *TimeoutError
	assert.ErrorAs(t, err, &toErr)
}

func TestInvokeCallerCancellation(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "slow-codex")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 5\n"), 0o755))

	c := NewCodexCLI(script, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.Invoke(ctx, ports.Invocation{
		Prompt:           "anything",
		WorkingDirectory: dir,
		ExecutionMode:    "on-failure",
		SandboxMode:      "read-only",
	})

	assert.ErrorIs(t, err, context.Canceled)

	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr), "cancellation must not masquerade as an exit failure")
}

func TestInvokeCapturesOutput(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-codex")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho analysis done\necho warn >&2\n"), 0o755))

	c := NewCodexCLI(script, time.Second)

	res, err := c.Invoke(context.Background(), ports.Invocation{
		Prompt:           "anything",
		WorkingDirectory: dir,
		ExecutionMode:    "on-failure",
		SandboxMode:      "read-only",
	})

	require.NoError(t, err)
	assert.Equal(t, "analysis done\n", res.Stdout)
	assert.Equal(t, "warn\n", res.Stderr)
}

func TestDetectType(t *testing.T) {
	cases := []struct {
		name   string
		stdout string
		want   OutputType
	}{
		{"unified diff", "--- a/main.go\n+++ b/main.go\n@@ -1 +1 @@\n-old\n+new\n", OutputDiff},
		{"fenced code", "Here you go:\n```go\npackage main\n```\n", OutputCode},
		{"code keywords", "In file: main.go the function main does X", OutputCode},
		{"plain prose", "The architecture separates concerns cleanly.", OutputExplanation},
		{"single fence is not code", "An unterminated ``` fence", OutputExplanation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectType(tc.stdout))
		})
	}
}

func TestRefactorTask(t *testing.T) {
	task := RefactorTask("src/main.go", "performance")
	assert.Contains(t, task, "src/main.go")
	assert.Contains(t, task, "performance")

	fallback := RefactorTask("src/main.go", "bogus-type")
	assert.Contains(t, fallback, "Refactor code")
}

func TestGenerateTestsTask(t *testing.T) {
	task := GenerateTestsTask("pkg/cache.go", "testify")
	assert.Contains(t, task, "pkg/cache.go")
	assert.Contains(t, task, "testify")
	assert.Contains(t, task, "edge condition")
}
