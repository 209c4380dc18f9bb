package workflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"factflow/internal/access"
	"factflow/internal/identity"
	"factflow/internal/lifecycle"
	"factflow/internal/logging"
	"factflow/internal/store"
	"factflow/internal/testsupport"
	"factflow/internal/workflow"
)

var actorForRole = map[access.Role]string{
	access.RoleUnprivileged: "ursula",
	access.RoleReviewer:     "rita",
	access.RoleAdmin:        "adam",
	access.RoleSuperAdmin:   "sam",
}

type harness struct {
	store  *store.Store
	engine *workflow.Engine
}

// steppingClock returns a clock that advances one second per call so record
// timestamps are distinct and ordered.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func newHarness(t *testing.T, mutate ...func(*workflow.Options)) *harness {
	t.Helper()

	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	for role, id := range actorForRole {
		testsupport.NewActor(t, st, id, role)
	}
	opts := workflow.Options{
		Resolver: identity.NewStoreResolver(st),
		Logger:   logging.NewNop(),
		Clock:    steppingClock(),
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	engine, err := workflow.New(st, opts)
	if err != nil {
		t.Fatalf("workflow.New: %v", err)
	}
	return &harness{store: st, engine: engine}
}

func (h *harness) item(t *testing.T, content string, stage lifecycle.Stage) *store.WorkItem {
	t.Helper()
	return testsupport.NewWorkItem(t, h.store, content, stage)
}

func (h *harness) move(t *testing.T, itemID int64, to lifecycle.Stage, role access.Role) *store.WorkItem {
	t.Helper()
	item, err := h.engine.Transition(context.Background(), workflow.Request{
		WorkItemID: itemID,
		To:         to,
		ActorID:    actorForRole[role],
	})
	if err != nil {
		t.Fatalf("transition %d to %s as %s: %v", itemID, to, role, err)
	}
	return item
}

func (h *harness) history(t *testing.T, itemID int64) []store.TransitionRecord {
	t.Helper()
	records, err := h.engine.History(context.Background(), itemID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	return records
}

func (h *harness) stage(t *testing.T, itemID int64) lifecycle.Stage {
	t.Helper()
	stage, err := h.engine.CurrentStage(context.Background(), itemID)
	if err != nil {
		t.Fatalf("CurrentStage: %v", err)
	}
	return stage
}

// wrappedStore lets tests intercept the transaction handed to the engine.
type wrappedStore struct {
	*store.Store
	wrap func(store.Tx) store.Tx
}

func (w *wrappedStore) RunInTransaction(ctx context.Context, fn func(tx store.Tx) error) error {
	return w.Store.RunInTransaction(ctx, func(tx store.Tx) error {
		return fn(w.wrap(tx))
	})
}

type failingSaveTx struct {
	store.Tx
	err error
}

func (f failingSaveTx) SaveWorkItemStage(context.Context, *store.WorkItem, lifecycle.Stage) error {
	return f.err
}

type staleReadTx struct {
	store.Tx
	stage lifecycle.Stage
}

func (s staleReadTx) GetWorkItem(ctx context.Context, id int64) (*store.WorkItem, error) {
	item, err := s.Tx.GetWorkItem(ctx, id)
	if item != nil {
		item.Stage = s.stage
	}
	return item, err
}
