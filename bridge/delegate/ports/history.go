package ports

import (
	"context"
	"time"
)

// Delegation is one completed request as recorded in the history store.
type Delegation struct {
	ID               string    `json:"id"`
	Task             string    `json:"task"`
	WorkingDirectory string    `json:"working_directory"`
	ExecutionMode    string    `json:"execution_mode"`
	SandboxMode      string    `json:"sandbox_mode"`
	OutputFormat     string    `json:"output_format"`
	CacheKey         string    `json:"cache_key"`
	CacheHit         bool      `json:"cache_hit"`
	Success          bool      `json:"success"`
	DurationMS       int64     `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// HistoryStore persists delegation records for later inspection.
type HistoryStore interface {
	Record(ctx context.Context, d Delegation) error
	Recent(ctx context.Context, limit int) ([]Delegation, error)
}
