package delegate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/codexbridge/codex-bridge/bridge/config"
	"github.com/codexbridge/codex-bridge/bridge/delegate/adapters"
	"github.com/codexbridge/codex-bridge/bridge/delegate/ports"
	"github.com/codexbridge/codex-bridge/bridge/executor"
	"github.com/codexbridge/codex-bridge/bridge/fingerprint"
	"github.com/codexbridge/codex-bridge/bridge/validate"
)

// Factory creates and wires delegation components from configuration.
type Factory struct {
	cfg    *config.BridgeConfig
	db     *sql.DB // optional, for the history store
	logger zerolog.Logger
}

// NewFactory creates a new delegation factory.
func NewFactory(cfg *config.BridgeConfig, db *sql.DB, logger zerolog.Logger) *Factory {
	return &Factory{cfg: cfg, db: db, logger: logger}
}

// CreateDelegator builds a fully wired Delegator around cache and history.
// Both are passed in so the caller can share the same instances with its
// cache management and history surfaces.
func (f *Factory) CreateDelegator(cache ports.ResultCache, history ports.HistoryStore) (*Delegator, error) {
	tracer := f.createTracer()

	validator := validate.New(f.cfg.Validate.DenyPaths)
	fingerprinter := fingerprint.New(f.cfg.Fingerprint.IgnorePatterns, f.cfg.Fingerprint.Concurrency)

	gate := NewGate(validator, fingerprinter, cache, tracer, f.cfg.Exec.AllowWrite)

	guardrails, err := f.createGuardrails()
	if err != nil {
		return nil, err
	}

	exec := executor.NewCodexCLI(f.cfg.Exec.Binary, time.Duration(f.cfg.Exec.TimeoutSeconds)*time.Second)

	return NewDelegator(
		gate,
		NewHeuristicPolicy(),
		adapters.NewSemaphoreLimiter(f.cfg.Exec.Concurrency),
		exec,
		guardrails,
		history,
		tracer,
		f.cfg.Exec.AllowWrite,
		f.cfg.Cache.SingleFlight,
	), nil
}

// CreateCache creates the result cache from config.
func (f *Factory) CreateCache() ports.ResultCache {
	return adapters.NewLRUCache(f.cfg.Cache.MaxEntries, time.Duration(f.cfg.Cache.TTLSeconds)*time.Second)
}

func (f *Factory) createTracer() ports.Tracer {
	return adapters.NewZerologTracer(f.logger)
}

func (f *Factory) createGuardrails() (*Guardrails, error) {
	if !f.cfg.Guardrails.Enabled {
		return nil, nil
	}
	g, err := NewGuardrails()
	if err != nil {
		return nil, fmt.Errorf("creating guardrails: %w", err)
	}
	return g, nil
}

// CreateHistory creates the history store from config, falling back to a
// no-op store when history is disabled or no database is available.
func (f *Factory) CreateHistory() ports.HistoryStore {
	if !f.cfg.History.Enabled || f.db == nil {
		return &noOpHistory{}
	}
	return adapters.NewLibSQLHistoryStore(f.db)
}

// noOpHistory discards records; used when the history store is disabled.
type noOpHistory struct{}

func (noOpHistory) Record(context.Context, ports.Delegation) error { return nil }

func (noOpHistory) Recent(context.Context, int) ([]ports.Delegation, error) {
	return nil, nil
}

var _ ports.HistoryStore = (*noOpHistory)(nil)
