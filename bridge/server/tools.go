package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/codexbridge/codex-bridge/bridge/delegate"
	"github.com/codexbridge/codex-bridge/bridge/delegate/ports"
	"github.com/codexbridge/codex-bridge/bridge/watch"
)

// delegateTool sends a task to the codex CLI through the delegation gate.
type delegateTool struct {
	delegator   *delegate.Delegator
	invalidator *watch.Invalidator
	logger      zerolog.Logger
}

func newDelegateTool(d *delegate.Delegator, inv *watch.Invalidator, logger zerolog.Logger) *delegateTool {
	return &delegateTool{delegator: d, invalidator: inv, logger: logger}
}

func (t *delegateTool) Definition() mcp.Tool {
	return mcp.NewTool("codex_delegate",
		mcp.WithDescription(
			"Delegate a code analysis, planning, or implementation task to the codex CLI. "+
				"Results are cached: repeating the same task against an unchanged directory "+
				"returns the cached result."),
		mcp.WithString("task_description",
			mcp.Required(),
			mcp.Description("What to analyze, plan, or implement"),
		),
		mcp.WithString("working_directory",
			mcp.Required(),
			mcp.Description("Absolute path of the project directory to operate in"),
		),
		mcp.WithString("execution_mode",
			mcp.Description("Approval strategy"),
			mcp.Enum("untrusted", "on-failure", "on-request", "never"),
			mcp.DefaultString("on-failure"),
		),
		mcp.WithString("sandbox_mode",
			mcp.Description("File access mode (forced to read-only unless writes are enabled)"),
			mcp.Enum("read-only", "workspace-write", "danger-full-access"),
			mcp.DefaultString("workspace-write"),
		),
		mcp.WithString("output_format",
			mcp.Description("How to format the results"),
			mcp.Enum("diff", "full_file", "explanation"),
			mcp.DefaultString("diff"),
		),
	)
}

func (t *delegateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, err := req.RequireString("task_description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := req.RequireString("working_directory")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outcome, err := t.delegator.Delegate(ctx, delegate.Request{
		Task:             task,
		WorkingDirectory: dir,
		ExecutionMode:    delegate.ExecutionMode(req.GetString("execution_mode", "on-failure")),
		SandboxMode:      delegate.SandboxMode(req.GetString("sandbox_mode", "workspace-write")),
		OutputFormat:     delegate.OutputFormat(req.GetString("output_format", "diff")),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if t.invalidator != nil {
		if err := t.invalidator.Watch(dir); err != nil {
			t.logger.Warn().Err(err).Str("dir", dir).Msg("could not watch directory for invalidation")
		}
	}

	return jsonResult(outcome)
}

// cacheStatsTool reports cache occupancy as of the call, then purges
// expired entries as an explicit side effect and reports the purge count.
type cacheStatsTool struct {
	cache ports.ResultCache
}

func newCacheStatsTool(cache ports.ResultCache) *cacheStatsTool {
	return &cacheStatsTool{cache: cache}
}

func (t *cacheStatsTool) Definition() mcp.Tool {
	return mcp.NewTool("cache_stats",
		mcp.WithDescription("Report result cache statistics, then purge expired entries."),
	)
}

func (t *cacheStatsTool) Handle(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Snapshot first: the expired count describes the cache the caller
	// asked about, not the one left behind by the purge.
	stats := t.cache.Stats()
	purged := t.cache.PurgeExpired()

	return jsonResult(struct {
		ports.CacheStats
		Purged int `json:"purged"`
	}{CacheStats: stats, Purged: purged})
}

// cacheClearTool empties the result cache.
type cacheClearTool struct {
	cache  ports.ResultCache
	logger zerolog.Logger
}

func newCacheClearTool(cache ports.ResultCache, logger zerolog.Logger) *cacheClearTool {
	return &cacheClearTool{cache: cache, logger: logger}
}

func (t *cacheClearTool) Definition() mcp.Tool {
	return mcp.NewTool("cache_clear",
		mcp.WithDescription("Remove every entry from the result cache."),
	)
}

func (t *cacheClearTool) Handle(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dropped := t.cache.Clear()
	t.logger.Info().Int("dropped", dropped).Msg("cache cleared")
	return mcp.NewToolResultText(fmt.Sprintf("cache cleared: %d entries removed", dropped)), nil
}

// cachePurgeTool removes only expired entries.
type cachePurgeTool struct {
	cache ports.ResultCache
}

func newCachePurgeTool(cache ports.ResultCache) *cachePurgeTool {
	return &cachePurgeTool{cache: cache}
}

func (t *cachePurgeTool) Definition() mcp.Tool {
	return mcp.NewTool("cache_purge_expired",
		mcp.WithDescription("Remove expired entries from the result cache, leaving live ones."),
	)
}

func (t *cachePurgeTool) Handle(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	purged := t.cache.PurgeExpired()
	return mcp.NewToolResultText(fmt.Sprintf("purged %d expired entries", purged)), nil
}

// historyTool lists recent delegations from the history store.
type historyTool struct {
	history ports.HistoryStore
}

func newHistoryTool(history ports.HistoryStore) *historyTool {
	return &historyTool{history: history}
}

func (t *historyTool) Definition() mcp.Tool {
	return mcp.NewTool("delegation_history",
		mcp.WithDescription("List recent delegations, most recent first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of records to return"),
			mcp.DefaultNumber(10),
		),
	)
}

func (t *historyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 10)

	records, err := t.history.Recent(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if records == nil {
		records = []ports.Delegation{}
	}
	return jsonResult(records)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}
