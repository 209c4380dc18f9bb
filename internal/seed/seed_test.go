package seed_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"factflow/internal/identity"
	"factflow/internal/lifecycle"
	"factflow/internal/logging"
	"factflow/internal/seed"
	"factflow/internal/store"
	"factflow/internal/testsupport"
	"factflow/internal/workflow"
)

const fixture = `
actors:
  - id: adam
    role: admin
    display_name: Adam Admin
  - id: sam
    role: super-admin
items:
  - content: "The moon landing was staged"
    claims:
      - "moon landing staged"
  - content: "Election results were altered"
    claims: ["results altered"]
    stage: admin-review
    actor: adam
  - content: "Tap water cures colds"
    stage: published
    actor: sam
    reason: backfill
`

func newEngine(t *testing.T, st *store.Store) *workflow.Engine {
	t.Helper()
	engine, err := workflow.New(st, workflow.Options{
		Resolver: identity.NewStoreResolver(st),
		Logger:   logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("workflow.New: %v", err)
	}
	return engine
}

func TestLoadFixture(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := filepath.Join(testsupport.BaseDir(cfg), "fixture.yaml")
	testsupport.WriteFile(t, path, fixture)

	fx, err := seed.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	summary, err := seed.Load(ctx, st, newEngine(t, st), fx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := seed.Summary{Actors: 2, Items: 3, Claims: 2, Transitions: 5 + 7}
	if summary != want {
		t.Fatalf("summary = %+v, want %+v", summary, want)
	}

	items, err := st.ListWorkItems(ctx)
	if err != nil {
		t.Fatalf("ListWorkItems: %v", err)
	}
	stages := []lifecycle.Stage{lifecycle.StageSubmitted, lifecycle.StageAdminReview, lifecycle.StagePublished}
	for i, item := range items {
		if item.Stage != stages[i] {
			t.Fatalf("item %d: stage %s, want %s", i, item.Stage, stages[i])
		}
	}

	history, err := st.History(ctx, items[1].ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 5 || history[0].Reason != "seeded" {
		t.Fatalf("unexpected history: %+v", history)
	}
	if !items[1].RequiresSecondaryReview {
		t.Fatal("expected political content to be flagged on admin review")
	}

	actor, err := st.GetActor(ctx, "adam")
	if err != nil || actor == nil || actor.DisplayName != "Adam Admin" {
		t.Fatalf("unexpected actor %+v, err %v", actor, err)
	}
}

func TestLoadStopsOnPermissionDenied(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	fx, err := seed.Parse(strings.NewReader(`
actors:
  - id: rita
    role: reviewer
items:
  - content: "claim"
    stage: queued
    actor: rita
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	summary, err := seed.Load(context.Background(), st, newEngine(t, st), fx)
	if !errors.Is(err, workflow.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if summary.Items != 1 || summary.Transitions != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestParseRejectsInvalidFixtures(t *testing.T) {
	cases := map[string]string{
		"unknown field": "items:\n  - content: x\n    colour: red\n",
		"blank content": "items:\n  - content: \"  \"\n",
		"unknown stage": "items:\n  - content: x\n    stage: done\n    actor: adam\n",
		"missing actor": "items:\n  - content: x\n    stage: queued\n",
		"blank actor":   "actors:\n  - role: admin\n",
		"bad role":      "actors:\n  - id: x\n    role: emperor\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := seed.Parse(strings.NewReader(doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseEmptyDocument(t *testing.T) {
	fx, err := seed.Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(fx.Actors) != 0 || len(fx.Items) != 0 {
		t.Fatalf("expected empty fixture, got %+v", fx)
	}
}
