package ports

import "context"

// Invocation is a fully resolved request to the external agent CLI.
type Invocation struct {
	Prompt           string
	WorkingDirectory string
	ExecutionMode    string
	SandboxMode      string
	AllowWrite       bool
}

// ExecResult carries the raw process output of an invocation.
type ExecResult struct {
	Stdout string
	Stderr string
}

// Executor runs a resolved invocation to completion. Implementations wrap
// the external CLI; the returned error is non-nil for spawn failures,
// timeouts, and non-zero exits.
type Executor interface {
	Invoke(ctx context.Context, inv Invocation) (ExecResult, error)
}
