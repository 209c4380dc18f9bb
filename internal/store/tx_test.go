package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"factflow/internal/lifecycle"
	"factflow/internal/store"
	"factflow/internal/testsupport"
)

func TestSaveWorkItemStageConflict(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	item := testsupport.NewWorkItem(t, st, "conflict", lifecycle.StageInResearch)

	ctx := context.Background()
	err := st.RunInTransaction(ctx, func(tx store.Tx) error {
		item.Stage = lifecycle.StageDraftReady
		return tx.SaveWorkItemStage(ctx, item, lifecycle.StageAssigned)
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	fetched, err := st.GetWorkItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetWorkItem failed: %v", err)
	}
	if fetched.Stage != lifecycle.StageInResearch {
		t.Fatalf("stage changed despite conflict: %s", fetched.Stage)
	}
}

func TestRunInTransactionRollsBackOnError(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	item := testsupport.NewWorkItem(t, st, "rollback", lifecycle.StageInResearch)

	ctx := context.Background()
	boom := errors.New("boom")
	err := st.RunInTransaction(ctx, func(tx store.Tx) error {
		item.Stage = lifecycle.StageDraftReady
		if err := tx.SaveWorkItemStage(ctx, item, lifecycle.StageInResearch); err != nil {
			return err
		}
		if err := tx.AppendTransition(ctx, &store.TransitionRecord{
			WorkItemID: item.ID,
			FromStage:  lifecycle.StageInResearch,
			ToStage:    lifecycle.StageDraftReady,
			ActorID:    "alice",
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	fetched, _ := st.GetWorkItem(ctx, item.ID)
	if fetched.Stage != lifecycle.StageInResearch {
		t.Fatalf("expected rollback to keep in_research, got %s", fetched.Stage)
	}
	history, err := st.History(ctx, item.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected no records after rollback, got %d", len(history))
	}
}

func TestRunInTransactionRollsBackOnPanic(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	item := testsupport.NewWorkItem(t, st, "panic", lifecycle.StageInResearch)
	ctx := context.Background()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = st.RunInTransaction(ctx, func(tx store.Tx) error {
			item.Stage = lifecycle.StageDraftReady
			if err := tx.SaveWorkItemStage(ctx, item, lifecycle.StageInResearch); err != nil {
				return err
			}
			panic("mid-transaction")
		})
	}()

	fetched, _ := st.GetWorkItem(ctx, item.ID)
	if fetched.Stage != lifecycle.StageInResearch {
		t.Fatalf("expected rollback after panic, got %s", fetched.Stage)
	}
}

func TestTransitionRecordsAreAppendOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewWorkItem(t, st, "append only", "")
	ctx := context.Background()

	if err := st.RunInTransaction(ctx, func(tx store.Tx) error {
		return tx.AppendTransition(ctx, &store.TransitionRecord{
			WorkItemID: item.ID,
			FromStage:  lifecycle.StageSubmitted,
			ToStage:    lifecycle.StageQueued,
			ActorID:    "alice",
			Metadata:   map[string]any{"note": "first"},
		})
	}); err != nil {
		t.Fatalf("AppendTransition failed: %v", err)
	}

	db := openRawDB(t, cfg.DatabasePath())
	if _, err := db.Exec(`UPDATE transition_records SET actor_id = 'mallory'`); err == nil {
		t.Fatal("expected update to be rejected")
	}
	if _, err := db.Exec(`DELETE FROM transition_records`); err == nil {
		t.Fatal("expected delete to be rejected")
	}

	history, err := st.History(ctx, item.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 || history[0].ActorID != "alice" {
		t.Fatalf("unexpected history: %#v", history)
	}
	if history[0].Metadata["note"] != "first" {
		t.Fatalf("metadata not round-tripped: %#v", history[0].Metadata)
	}
}

func TestHistoryOrdersByTimestampThenID(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	item := testsupport.NewWorkItem(t, st, "ordering", "")
	ctx := context.Background()

	same := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	earlier := same.Add(-time.Second)
	records := []*store.TransitionRecord{
		{WorkItemID: item.ID, ToStage: lifecycle.StageQueued, ActorID: "a", CreatedAt: same},
		{WorkItemID: item.ID, ToStage: lifecycle.StageAssigned, ActorID: "b", CreatedAt: same},
		{WorkItemID: item.ID, ToStage: lifecycle.StageSubmitted, ActorID: "c", CreatedAt: earlier},
	}
	if err := st.RunInTransaction(ctx, func(tx store.Tx) error {
		for _, rec := range records {
			if err := tx.AppendTransition(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	history, err := st.History(ctx, item.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	got := []string{history[0].ActorID, history[1].ActorID, history[2].ActorID}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order %v, want %v", got, want)
		}
	}
	if history[0].FromStage != "" {
		t.Fatalf("expected empty from stage, got %q", history[0].FromStage)
	}
}

func TestFactCheckUniquePerClaim(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	item := testsupport.NewWorkItem(t, st, "fact checks", "")
	claim := testsupport.NewClaim(t, st, item.ID, "claim")
	ctx := context.Background()

	var created store.FactCheck
	if err := st.RunInTransaction(ctx, func(tx store.Tx) error {
		created = store.FactCheck{ClaimID: claim.ID}
		return tx.CreateFactCheck(ctx, &created)
	}); err != nil {
		t.Fatalf("CreateFactCheck failed: %v", err)
	}
	if created.ID == "" || created.Verdict != store.VerdictPending {
		t.Fatalf("defaults not applied: %#v", created)
	}

	err := st.RunInTransaction(ctx, func(tx store.Tx) error {
		return tx.CreateFactCheck(ctx, &store.FactCheck{ClaimID: claim.ID})
	})
	if err == nil {
		t.Fatal("expected second fact check for the same claim to fail")
	}

	checks, err := st.FactChecks(ctx, item.ID)
	if err != nil {
		t.Fatalf("FactChecks failed: %v", err)
	}
	if len(checks) != 1 || checks[0].ID != created.ID || len(checks[0].Sources) != 0 {
		t.Fatalf("unexpected fact checks: %#v", checks)
	}

	if err := st.RunInTransaction(ctx, func(tx store.Tx) error {
		fc, err := tx.FactCheckForClaim(ctx, claim.ID)
		if err != nil {
			return err
		}
		if fc == nil || fc.ID != created.ID {
			t.Errorf("FactCheckForClaim returned %#v", fc)
		}
		return nil
	}); err != nil {
		t.Fatalf("FactCheckForClaim failed: %v", err)
	}
}

func TestConcurrentTransactionsSerialize(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	item := testsupport.NewWorkItem(t, st, "race", lifecycle.StageInResearch)
	ctx := context.Background()

	const workers = 4
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.RunInTransaction(ctx, func(tx store.Tx) error {
				current, err := tx.GetWorkItem(ctx, item.ID)
				if err != nil {
					return err
				}
				if current.Stage != lifecycle.StageInResearch {
					return store.ErrConflict
				}
				current.Stage = lifecycle.StageDraftReady
				return tx.SaveWorkItemStage(ctx, current, lifecycle.StageInResearch)
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, store.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || conflicts != workers-1 {
		t.Fatalf("expected exactly one winner, got %d successes and %d conflicts", succeeded, conflicts)
	}
}
