package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"factflow/internal/access"
	"factflow/internal/lifecycle"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDatabase verifies schema presence and SQLite integrity.
func CheckDatabase(ctx context.Context, db HealthChecker) Result {
	const name = "Database"

	health, err := db.CheckHealth(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", health.DBPath, err)}
	}
	switch {
	case !health.DatabaseExists:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", health.DBPath)}
	case len(health.MissingTables) > 0:
		return Result{Name: name, Detail: fmt.Sprintf("missing tables: %s", strings.Join(health.MissingTables, ", "))}
	case !health.IntegrityCheck:
		return Result{Name: name, Detail: "integrity check failed"}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("schema v%d, %d items, %d transitions", health.SchemaVersion, health.TotalItems, health.TotalRecords),
	}
}

// CheckLifecycle validates the stage graph and confirms every edge has a
// permission rule or falls back to the admin role.
func CheckLifecycle() Result {
	const name = "Lifecycle"

	table := lifecycle.DefaultTable()
	if err := table.Validate(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	perms := access.DefaultPermissions()
	edges := table.Edges()
	explicit := 0
	for _, edge := range edges {
		if _, ok := perms.Required(edge.From, edge.To); ok {
			explicit++
		}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%d stages, %d edges (%d with explicit rules)", len(table.Stages()), len(edges), explicit),
	}
}
