package delegate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/codexbridge/codex-bridge/bridge/delegate/ports"
	"github.com/codexbridge/codex-bridge/bridge/executor"
)

// Outcome is the structured result of one delegation, returned to clients
// and stored in the cache on success.
type Outcome struct {
	RequestID   string `json:"request_id"`
	Status      string `json:"status"`
	Type        string `json:"type"`
	Content     string `json:"content"`
	Format      string `json:"format"`
	SandboxMode string `json:"sandbox_mode"`
	Notice      string `json:"notice,omitempty"`
	CacheHit    bool   `json:"cache_hit"`
	DurationMS  int64  `json:"duration_ms"`
}

// DeclinedError reports a task the policy refused to delegate.
type DeclinedError struct {
	Reason string
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("delegation declined: %s", e.Reason)
}

// Delegator drives a delegation end to end: policy check, gate resolution,
// rate-limited CLI execution, output classification, and caching of
// successful outcomes. Failed executions never reach the cache.
type Delegator struct {
	gate       *Gate
	policy     ports.DecisionPolicy
	limiter    ports.RateLimiter
	executor   ports.Executor
	guardrails *Guardrails
	history    ports.HistoryStore
	tracer     ports.Tracer
	allowWrite bool
	coalesce   bool
	sf         singleflight.Group
}

// NewDelegator wires a delegator from its collaborators. When coalesce is
// set, concurrent misses on the same cache key share a single execution.
func NewDelegator(
	gate *Gate,
	policy ports.DecisionPolicy,
	limiter ports.RateLimiter,
	exec ports.Executor,
	guardrails *Guardrails,
	history ports.HistoryStore,
	tracer ports.Tracer,
	allowWrite bool,
	coalesce bool,
) *Delegator {
	return &Delegator{
		gate:       gate,
		policy:     policy,
		limiter:    limiter,
		executor:   exec,
		guardrails: guardrails,
		history:    history,
		tracer:     tracer,
		allowWrite: allowWrite,
		coalesce:   coalesce,
	}
}

// Delegate runs one request through the full pipeline.
func (d *Delegator) Delegate(ctx context.Context, req Request) (Outcome, error) {
	start := time.Now()

	ctx, finish := d.tracer.StartSpan(ctx, "delegate", map[string]any{
		"dir": req.WorkingDirectory,
	})

	if d.guardrails != nil {
		raw, err := json.Marshal(req)
		if err != nil {
			finish(err)
			return Outcome{}, fmt.Errorf("encoding request: %w", err)
		}
		if err := d.guardrails.ValidateRequest(raw); err != nil {
			finish(err)
			return Outcome{}, err
		}
	}

	if ok, reason := d.policy.ShouldDelegate(req.Task); !ok {
		err := &DeclinedError{Reason: reason}
		finish(err)
		return Outcome{}, err
	}

	res, err := d.gate.Resolve(ctx, req)
	if err != nil {
		finish(err)
		return Outcome{}, err
	}

	if res.CacheHit {
		outcome, err := d.cachedOutcome(res)
		if err == nil {
			d.record(ctx, req, res, outcome, start)
			finish(nil)
			return outcome, nil
		}
		// An undecodable cached value falls through to re-execution.
		d.tracer.Event(ctx, "cache_value_corrupt", map[string]any{"key": res.CacheKey})
	}

	outcome, err := d.execute(ctx, req, res)
	if err != nil {
		d.record(ctx, req, res, Outcome{RequestID: res.RequestID, Status: "error"}, start)
		finish(err)
		return Outcome{}, err
	}

	outcome.DurationMS = time.Since(start).Milliseconds()
	d.record(ctx, req, res, outcome, start)
	finish(nil)
	return outcome, nil
}

func (d *Delegator) cachedOutcome(res Resolution) (Outcome, error) {
	var outcome Outcome
	if err := json.Unmarshal([]byte(res.CachedValue), &outcome); err != nil {
		return Outcome{}, err
	}
	outcome.CacheHit = true
	outcome.RequestID = res.RequestID
	return outcome, nil
}

func (d *Delegator) execute(ctx context.Context, req Request, res Resolution) (Outcome, error) {
	run := func() (Outcome, error) {
		return d.runCLI(ctx, req, res)
	}

	if !d.coalesce {
		return run()
	}

	v, err, _ := d.sf.Do(res.CacheKey, func() (any, error) {
		return run()
	})
	if err != nil {
		return Outcome{}, err
	}
	outcome := v.(Outcome)
	outcome.RequestID = res.RequestID
	return outcome, nil
}

func (d *Delegator) runCLI(ctx context.Context, req Request, res Resolution) (Outcome, error) {
	release, err := d.limiter.Acquire(ctx, "codex")
	if err != nil {
		return Outcome{}, fmt.Errorf("acquiring execution slot: %w", err)
	}
	defer release()

	result, err := d.executor.Invoke(ctx, ports.Invocation{
		Prompt:           d.policy.PreparePrompt(req.Task, string(req.OutputFormat)),
		WorkingDirectory: req.WorkingDirectory,
		ExecutionMode:    string(req.ExecutionMode),
		SandboxMode:      string(res.SandboxMode),
		AllowWrite:       d.allowWrite,
	})
	if err != nil {
		return Outcome{}, err
	}

	content := result.Stdout
	if d.guardrails != nil {
		content = d.guardrails.SanitizeOutput(content)
	}

	outcome := Outcome{
		RequestID:   res.RequestID,
		Status:      "success",
		Type:        string(executor.DetectType(content)),
		Content:     content,
		Format:      string(req.OutputFormat),
		SandboxMode: string(res.SandboxMode),
	}
	if res.SandboxMode != req.SandboxMode {
		outcome.Notice = fmt.Sprintf("sandbox mode forced to %s: writes are disabled", res.SandboxMode)
	}

	stored, err := json.Marshal(outcome)
	if err != nil {
		return Outcome{}, fmt.Errorf("encoding outcome: %w", err)
	}
	d.gate.Commit(res, req.WorkingDirectory, string(stored))

	return outcome, nil
}

func (d *Delegator) record(ctx context.Context, req Request, res Resolution, outcome Outcome, start time.Time) {
	if d.history == nil {
		return
	}
	err := d.history.Record(ctx, ports.Delegation{
		ID:               res.RequestID,
		Task:             req.Task,
		WorkingDirectory: req.WorkingDirectory,
		ExecutionMode:    string(req.ExecutionMode),
		SandboxMode:      string(res.SandboxMode),
		OutputFormat:     string(req.OutputFormat),
		CacheKey:         res.CacheKey,
		CacheHit:         outcome.CacheHit,
		Success:          outcome.Status == "success",
		DurationMS:       time.Since(start).Milliseconds(),
		CreatedAt:        time.Now(),
	})
	if err != nil {
		d.tracer.Event(ctx, "history_record_failed", map[string]any{"error": err.Error()})
	}
}
