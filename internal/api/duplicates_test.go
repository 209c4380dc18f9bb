package api_test

import (
	"context"
	"errors"
	"testing"

	"factflow/internal/api"
	"factflow/internal/services"
	"factflow/internal/workflow"
)

func TestDuplicates(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	target, err := svc.Create(ctx, api.CreateItemRequest{Content: "Drinking bleach cures the flu"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	copyItem, _ := svc.Create(ctx, api.CreateItemRequest{Content: "drinking bleach CURES the flu"})
	if _, err := svc.Create(ctx, api.CreateItemRequest{Content: "Election turnout hit a record high"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	resp, err := svc.Duplicates(ctx, target.ID, 0, 0)
	if err != nil {
		t.Fatalf("Duplicates: %v", err)
	}
	if len(resp.Candidates) != 1 || resp.Candidates[0].ID != copyItem.ID {
		t.Fatalf("unexpected candidates: %#v", resp.Candidates)
	}
	if resp.Candidates[0].Stage != "submitted" || resp.Candidates[0].Score < 0.99 {
		t.Fatalf("unexpected candidate: %#v", resp.Candidates[0])
	}

	if _, err := svc.Duplicates(ctx, 9999, 0, 0); !errors.Is(err, workflow.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Duplicates(ctx, target.ID, 1.5, 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
