// Package server wires the delegation components into an MCP server.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools/prompts/resources that depend on them. No
// business logic lives here, only wiring.
package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/codexbridge/codex-bridge/bridge"
	"github.com/codexbridge/codex-bridge/bridge/config"
	"github.com/codexbridge/codex-bridge/bridge/db"
	"github.com/codexbridge/codex-bridge/bridge/delegate"
	"github.com/codexbridge/codex-bridge/bridge/delegate/ports"
	"github.com/codexbridge/codex-bridge/bridge/watch"
)

// components holds the wired subsystems behind the MCP surface. Kept
// separate from New so tests can reach the cache and watcher.
type components struct {
	cache       ports.ResultCache
	history     ports.HistoryStore
	delegator   *delegate.Delegator
	invalidator *watch.Invalidator
	database    *sql.DB
}

// New creates and configures the MCP server with all tools, prompts, and
// resources registered, and starts the cache invalidation loop when
// watching is enabled.
//
// The returned cleanup function stops the invalidation loop and closes the
// history database and must be called on shutdown (typically via defer).
// It is always non-nil and safe to call even if those subsystems never
// started.
func New(cfg *config.Config, logger zerolog.Logger) (*server.MCPServer, func(), error) {
	s, _, cleanup, err := newServer(cfg, logger)
	return s, cleanup, err
}

func newServer(cfg *config.Config, logger zerolog.Logger) (*server.MCPServer, *components, func(), error) {
	bcfg := &cfg.Bridge

	comps, err := buildComponents(bcfg, logger)
	if err != nil {
		return nil, nil, noop, err
	}

	s := server.NewMCPServer(
		bridge.DefaultAppName,
		bridge.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions(bcfg.Exec.AllowWrite)),
	)

	delegateTool := newDelegateTool(comps.delegator, comps.invalidator, logger)
	s.AddTool(delegateTool.Definition(), delegateTool.Handle)

	statsTool := newCacheStatsTool(comps.cache)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	clearTool := newCacheClearTool(comps.cache, logger)
	s.AddTool(clearTool.Definition(), clearTool.Handle)

	purgeTool := newCachePurgeTool(comps.cache)
	s.AddTool(purgeTool.Definition(), purgeTool.Handle)

	historyTool := newHistoryTool(comps.history)
	s.AddTool(historyTool.Definition(), historyTool.Handle)

	registerPrompts(s)
	registerResources(s)

	// The invalidation loop lives for as long as the server; the cleanup
	// cancels it before closing the watcher underneath it.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	if comps.invalidator != nil {
		go comps.invalidator.Run(watchCtx)
	}

	cleanup := func() {
		stopWatch()
		if comps.invalidator != nil {
			if err := comps.invalidator.Close(); err != nil {
				logger.Warn().Err(err).Msg("closing filesystem watcher")
			}
		}
		if comps.database != nil {
			if err := comps.database.Close(); err != nil {
				logger.Warn().Err(err).Msg("closing history database")
			}
		}
	}

	return s, comps, cleanup, nil
}

func buildComponents(bcfg *config.BridgeConfig, logger zerolog.Logger) (*components, error) {
	// History is an independent subsystem: if its database fails to open,
	// delegation keeps working and history tools report empty results.
	var (
		database *sql.DB
		err      error
	)
	if bcfg.History.Enabled {
		database, err = db.Connect(bcfg.History.DBPath, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("history database unavailable, continuing without history")
			database = nil
		}
	}

	factory := delegate.NewFactory(bcfg, database, logger)
	cache := factory.CreateCache()
	history := factory.CreateHistory()

	delegator, err := factory.CreateDelegator(cache, history)
	if err != nil {
		if database != nil {
			database.Close()
		}
		return nil, fmt.Errorf("creating delegator: %w", err)
	}

	var invalidator *watch.Invalidator
	if bcfg.Cache.WatchInvalidate {
		invalidator, err = watch.NewInvalidator(cache, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("filesystem watcher unavailable, cache will rely on TTL and fingerprints")
			invalidator = nil
		}
	}

	return &components{
		cache:       cache,
		history:     history,
		delegator:   delegator,
		invalidator: invalidator,
		database:    database,
	}, nil
}

// noop is the default cleanup when nothing was initialized.
func noop() {}

func serverInstructions(allowWrite bool) string {
	mode := "read-only analysis mode: it plans and reviews but does not modify files"
	if allowWrite {
		mode = "write mode: it may modify files inside the workspace sandbox"
	}
	return fmt.Sprintf(
		"This server delegates code analysis and planning tasks to the codex CLI. "+
			"It is running in %s. Results are cached by content: repeating a task against "+
			"an unchanged directory returns instantly. Use codex_delegate for tasks, "+
			"cache_stats/cache_clear to manage the cache, and delegation_history to "+
			"inspect past runs.", mode)
}
