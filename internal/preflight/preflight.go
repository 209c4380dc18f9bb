package preflight

import (
	"context"

	"factflow/internal/config"
	"factflow/internal/store"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// HealthChecker reports database diagnostics.
type HealthChecker interface {
	CheckHealth(ctx context.Context) (store.DatabaseHealth, error)
}

// RunAll executes every preflight check for the given config. The database
// check is skipped when db is nil.
func RunAll(ctx context.Context, cfg *config.Config, db HealthChecker) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckLifecycle(),
	}
	if db != nil {
		results = append(results, CheckDatabase(ctx, db))
	}
	results = append(results, CheckAPIServer(ctx, cfg))
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
