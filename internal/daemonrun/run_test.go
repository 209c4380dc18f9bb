package daemonrun

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"factflow/internal/access"
	"factflow/internal/lifecycle"
	"factflow/internal/logging"
	"factflow/internal/testsupport"
	"factflow/internal/workflow"
)

func TestNewEngineUsesStoreActors(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithIdentityCacheTTL(30))
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.NewActor(t, st, "adam", access.RoleAdmin)
	item := testsupport.NewWorkItem(t, st, "claim", "")

	engine, err := NewEngine(cfg, st, logging.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	moved, err := engine.Transition(context.Background(), workflow.Request{
		WorkItemID: item.ID,
		To:         lifecycle.StageQueued,
		ActorID:    "adam",
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if moved.Stage != lifecycle.StageQueued {
		t.Fatalf("expected queued, got %s", moved.Stage)
	}
}

func TestNewEngineRequiresStore(t *testing.T) {
	if _, err := NewEngine(testsupport.NewConfig(t), nil, nil); err == nil {
		t.Fatal("expected error without store")
	}
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Run(ctx, cfg, Options{Version: "test", Logger: logging.NewNop()}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.DataDir, "factflow.pid")); !os.IsNotExist(err) {
		t.Fatalf("expected pid file to be removed, stat err=%v", err)
	}
	if _, err := os.Stat(cfg.DatabasePath()); err != nil {
		t.Fatalf("expected database to be created: %v", err)
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background(), nil, Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}
