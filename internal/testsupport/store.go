package testsupport

import (
	"context"
	"testing"

	"factflow/internal/access"
	"factflow/internal/config"
	"factflow/internal/lifecycle"
	"factflow/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewWorkItem creates a submitted work item and, when stage differs from the
// initial stage, moves it there directly without recording a transition.
func NewWorkItem(t testing.TB, st *store.Store, content string, stage lifecycle.Stage) *store.WorkItem {
	t.Helper()

	ctx := context.Background()
	item, err := st.CreateWorkItem(ctx, content)
	if err != nil {
		t.Fatalf("store.CreateWorkItem: %v", err)
	}
	if stage == "" || stage == item.Stage {
		return item
	}
	err = st.RunInTransaction(ctx, func(tx store.Tx) error {
		current := item.Stage
		item.Stage = stage
		return tx.SaveWorkItemStage(ctx, item, current)
	})
	if err != nil {
		t.Fatalf("move work item to %s: %v", stage, err)
	}
	return item
}

// NewClaim links a claim to the work item.
func NewClaim(t testing.TB, st *store.Store, workItemID int64, text string) *store.Claim {
	t.Helper()

	claim, err := st.AddClaim(context.Background(), workItemID, text)
	if err != nil {
		t.Fatalf("store.AddClaim: %v", err)
	}
	return claim
}

// NewActor registers an actor with the given role.
func NewActor(t testing.TB, st *store.Store, id string, role access.Role) *store.Actor {
	t.Helper()

	actor, err := st.UpsertActor(context.Background(), store.Actor{ID: id, Role: role})
	if err != nil {
		t.Fatalf("store.UpsertActor: %v", err)
	}
	return actor
}
