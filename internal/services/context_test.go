package services_test

import (
	"context"
	"testing"

	"factflow/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithWorkItemID(ctx, 42)
	ctx = services.WithStage(ctx, "admin-review")
	ctx = services.WithActorID(ctx, "alice")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.WorkItemIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected work item id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "admin-review" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if actor, ok := services.ActorIDFromContext(ctx); !ok || actor != "alice" {
		t.Fatalf("unexpected actor: %v %v", actor, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithActorID(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.ActorIDFromContext(ctx); ok {
		t.Fatal("expected no actor value")
	}
	if _, ok := services.WorkItemIDFromContext(ctx); ok {
		t.Fatal("expected no work item id")
	}
}
