// Package delegate implements the delegation gate: the decision pipeline
// that validates a request's working directory, fingerprints its contents,
// derives a content-addressed cache key, and consults the result cache
// before any external execution happens.
package delegate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/codexbridge/codex-bridge/bridge/delegate/ports"
	"github.com/codexbridge/codex-bridge/bridge/fingerprint"
	"github.com/codexbridge/codex-bridge/bridge/validate"
)

// SandboxMode controls what the external agent may touch.
type SandboxMode string

const (
	SandboxReadOnly       SandboxMode = "read-only"
	SandboxWorkspaceWrite SandboxMode = "workspace-write"
	SandboxFullAccess     SandboxMode = "danger-full-access"
)

// ExecutionMode is the agent's approval strategy.
type ExecutionMode string

const (
	ExecModeUntrusted ExecutionMode = "untrusted"
	ExecModeOnFailure ExecutionMode = "on-failure"
	ExecModeOnRequest ExecutionMode = "on-request"
	ExecModeNever     ExecutionMode = "never"
)

// OutputFormat shapes the response the agent is asked for.
type OutputFormat string

const (
	FormatDiff        OutputFormat = "diff"
	FormatFullFile    OutputFormat = "full_file"
	FormatExplanation OutputFormat = "explanation"
)

// Request is one delegation as received from a client, before resolution.
type Request struct {
	Task             string        `json:"task"`
	WorkingDirectory string        `json:"working_directory"`
	ExecutionMode    ExecutionMode `json:"execution_mode"`
	SandboxMode      SandboxMode   `json:"sandbox_mode"`
	OutputFormat     OutputFormat  `json:"output_format"`
}

// Resolution is the gate's verdict on a request: the effective sandbox mode
// after policy overrides, the directory digest, the derived cache key, and
// the cached value when one is live.
type Resolution struct {
	RequestID    string
	CacheKey     string
	SandboxMode  SandboxMode
	FilesDigest  string
	SkippedFiles []string
	CachedValue  string
	CacheHit     bool
}

// keyMaterial is the canonical form hashed into the cache key. Fields are
// ordered alphabetically by JSON name so the serialization is stable.
type keyMaterial struct {
	Directory    string `json:"directory"`
	ExecMode     string `json:"exec_mode"`
	FilesHash    string `json:"files_hash"`
	OutputFormat string `json:"output_format"`
	SandboxMode  string `json:"sandbox_mode"`
	Task         string `json:"task"`
}

// Gate composes the validator, fingerprinter, and result cache into the
// pre-execution pipeline. AllowWrite mirrors the process-level write switch:
// when false, every resolution is forced to the read-only sandbox.
type Gate struct {
	validator     *validate.Validator
	fingerprinter *fingerprint.Fingerprinter
	cache         ports.ResultCache
	tracer        ports.Tracer
	allowWrite    bool
}

// NewGate wires a gate from its parts.
func NewGate(v *validate.Validator, f *fingerprint.Fingerprinter, cache ports.ResultCache, tracer ports.Tracer, allowWrite bool) *Gate {
	return &Gate{
		validator:     v,
		fingerprinter: f,
		cache:         cache,
		tracer:        tracer,
		allowWrite:    allowWrite,
	}
}

// Resolve runs the pipeline: check request fields, validate the directory,
// apply the write override, fingerprint the tree, derive the key, and probe
// the cache. A returned Resolution with CacheHit set carries the cached
// value; otherwise the caller is expected to execute and Commit.
func (g *Gate) Resolve(ctx context.Context, req Request) (Resolution, error) {
	res := Resolution{RequestID: uuid.NewString()}

	ctx, finish := g.tracer.StartSpan(ctx, "gate.resolve", map[string]any{
		"request_id": res.RequestID,
		"dir":        req.WorkingDirectory,
	})

	if err := checkRequest(req); err != nil {
		finish(err)
		return res, err
	}

	res.SandboxMode = req.SandboxMode
	if !g.allowWrite && res.SandboxMode != SandboxReadOnly {
		// Process-level override: no request may escalate past read-only
		// while writes are disabled.
		res.SandboxMode = SandboxReadOnly
		g.tracer.Event(ctx, "sandbox_forced_read_only", map[string]any{
			"requested": string(req.SandboxMode),
		})
	}

	needWrite := res.SandboxMode != SandboxReadOnly
	if err := g.validator.Validate(req.WorkingDirectory, needWrite); err != nil {
		finish(err)
		return res, err
	}

	fp, err := g.fingerprinter.Fingerprint(ctx, req.WorkingDirectory)
	if err != nil {
		finish(err)
		return res, fmt.Errorf("fingerprinting %s: %w", req.WorkingDirectory, err)
	}
	res.FilesDigest = fp.Digest
	res.SkippedFiles = fp.Skipped

	res.CacheKey, err = deriveKey(req, res.SandboxMode, fp.Digest)
	if err != nil {
		finish(err)
		return res, err
	}

	if value, ok := g.cache.Get(res.CacheKey); ok {
		res.CachedValue = value
		res.CacheHit = true
		g.tracer.Event(ctx, "cache_hit", map[string]any{"key": res.CacheKey})
	} else {
		g.tracer.Event(ctx, "cache_miss", map[string]any{"key": res.CacheKey})
	}

	finish(nil)
	return res, nil
}

// Commit stores a successful outcome under the resolution's key. Failed
// executions must never be committed.
func (g *Gate) Commit(res Resolution, dir, value string) {
	g.cache.Put(res.CacheKey, dir, value)
}

func deriveKey(req Request, effective SandboxMode, filesDigest string) (string, error) {
	material, err := json.Marshal(keyMaterial{
		Directory:    req.WorkingDirectory,
		ExecMode:     string(req.ExecutionMode),
		FilesHash:    filesDigest,
		OutputFormat: string(req.OutputFormat),
		SandboxMode:  string(effective),
		Task:         req.Task,
	})
	if err != nil {
		return "", fmt.Errorf("deriving cache key: %w", err)
	}
	sum := sha256.Sum256(material)
	return hex.EncodeToString(sum[:]), nil
}

func checkRequest(req Request) error {
	if req.Task == "" {
		return fmt.Errorf("task must not be empty")
	}
	switch req.ExecutionMode {
	case ExecModeUntrusted, ExecModeOnFailure, ExecModeOnRequest, ExecModeNever:
	default:
		return fmt.Errorf("unknown execution mode %q", req.ExecutionMode)
	}
	switch req.SandboxMode {
	case SandboxReadOnly, SandboxWorkspaceWrite, SandboxFullAccess:
	default:
		return fmt.Errorf("unknown sandbox mode %q", req.SandboxMode)
	}
	switch req.OutputFormat {
	case FormatDiff, FormatFullFile, FormatExplanation:
	default:
		return fmt.Errorf("unknown output format %q", req.OutputFormat)
	}
	return nil
}
