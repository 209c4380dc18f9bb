package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"factflow/internal/api"
	"factflow/internal/preflight"
	"factflow/internal/testsupport"
)

func TestItemLifecycleCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "actor", "add", "adam", "--role", "admin", "--name", "Adam")
	requireContains(t, out, "Actor adam is admin")

	out = mustRunCLI(t, env, "item", "add", "--claim", "moon is cheese", "The", "moon", "is", "cheese")
	requireContains(t, out, "Created work item 1 (submitted) with 1 claim(s)")

	out = mustRunCLI(t, env, "claim", "add", "1", "cheese is dairy")
	requireContains(t, out, "Added claim 2 to work item 1")

	out = mustRunCLI(t, env, "transition", "1", "queued", "--as", "adam", "--reason", "triage", "--meta", "ticket=42")
	requireContains(t, out, "Work item 1 is now queued")

	t.Setenv(actorEnv, "adam")
	mustRunCLI(t, env, "transition", "1", "assigned")

	out = mustRunCLI(t, env, "item", "show", "1", "--json")
	var item api.WorkItem
	if err := json.Unmarshal([]byte(out), &item); err != nil {
		t.Fatalf("decode item: %v\n%s", err, out)
	}
	if item.Stage != "assigned" || len(item.Claims) != 2 || len(item.FactChecks) != 1 {
		t.Fatalf("unexpected item: %#v", item)
	}

	out = mustRunCLI(t, env, "history", "1", "--json")
	var history api.HistoryResponse
	if err := json.Unmarshal([]byte(out), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history.Records) != 2 || history.Records[0].Metadata["ticket"] != "42" {
		t.Fatalf("unexpected history: %#v", history.Records)
	}

	out = mustRunCLI(t, env, "history", "1")
	requireContains(t, out, "triage")

	out = mustRunCLI(t, env, "item", "list", "--stage", "assigned")
	requireContains(t, out, "The moon is cheese")

	out = mustRunCLI(t, env, "item", "list", "--stage", "published")
	requireContains(t, out, "No work items")
}

func TestTransitionErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRunCLI(t, env, "actor", "add", "rita", "--role", "reviewer")
	mustRunCLI(t, env, "item", "add", "Some content")

	if _, _, err := runCLI(t, env, "transition", "1", "queued"); err == nil || !strings.Contains(err.Error(), "actor is required") {
		t.Fatalf("expected missing actor error, got %v", err)
	}
	_, _, err := runCLI(t, env, "transition", "1", "queued", "--as", "rita")
	if err == nil || !strings.Contains(err.Error(), "reviewer") {
		t.Fatalf("expected permission error naming the role, got %v", err)
	}
	_, _, err = runCLI(t, env, "transition", "1", "published", "--as", "rita")
	if err == nil {
		t.Fatal("expected invalid transition error")
	}
	if _, _, err := runCLI(t, env, "transition", "x", "queued", "--as", "rita"); err == nil {
		t.Fatal("expected invalid id error")
	}
	if _, _, err := runCLI(t, env, "transition", "1", "queued", "--as", "rita", "--meta", "novalue"); err == nil {
		t.Fatal("expected invalid metadata error")
	}
}

func TestActorList(t *testing.T) {
	env := setupCLITestEnv(t)
	out := mustRunCLI(t, env, "actor", "list")
	requireContains(t, out, "No actors")

	mustRunCLI(t, env, "actor", "add", "sam", "--role", "super_admin")
	out = mustRunCLI(t, env, "actor", "list")
	requireContains(t, out, "super-admin")

	if _, _, err := runCLI(t, env, "actor", "add", "x", "--role", "emperor"); err == nil {
		t.Fatal("expected unknown role error")
	}
}

func TestStagesCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out := mustRunCLI(t, env, "stages", "draft-ready", "--json")
	var transitions api.StageTransitions
	if err := json.Unmarshal([]byte(out), &transitions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(transitions.Targets) != 2 || transitions.Targets[0].Stage != "needs-more-research" {
		t.Fatalf("unexpected targets: %#v", transitions.Targets)
	}

	out = mustRunCLI(t, env, "stages")
	requireContains(t, out, "terminal")
	requireContains(t, out, "published (super-admin)")

	if _, _, err := runCLI(t, env, "stages", "done"); err == nil {
		t.Fatal("expected unknown stage error")
	}
}

func TestSeedCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(env.baseDir, "seed.yaml")
	testsupport.WriteFile(t, path, `
actors:
  - id: adam
    role: admin
items:
  - content: "Water is wet"
    claims: ["water wet"]
    stage: assigned
    actor: adam
`)
	out := mustRunCLI(t, env, "seed", path)
	requireContains(t, out, "Seeded 1 actor(s), 1 item(s), 1 claim(s), 2 transition(s)")

	out = mustRunCLI(t, env, "item", "list", "--json")
	var items []api.WorkItem
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].Stage != "assigned" {
		t.Fatalf("unexpected items: %#v", items)
	}
}

func TestDoctorCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out := mustRunCLI(t, env, "doctor", "--json")
	var results []preflight.Result
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if preflight.Failed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}

	out = mustRunCLI(t, env, "doctor")
	requireContains(t, out, "Database")
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "config", "show")
	requireContains(t, out, env.configPath)
	requireContains(t, out, env.cfg.Paths.DataDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out = mustRunCLI(t, env, "config", "init", "--path", target)
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
}

func TestItemDuplicatesCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRunCLI(t, env, "item", "add", "Drinking bleach cures the flu")
	mustRunCLI(t, env, "item", "add", "drinking bleach cures the FLU")
	mustRunCLI(t, env, "item", "add", "Election turnout hit a record high")

	out := mustRunCLI(t, env, "item", "duplicates", "1")
	requireContains(t, out, "drinking bleach cures the FLU")

	out = mustRunCLI(t, env, "item", "duplicates", "3")
	requireContains(t, out, "No likely duplicates of work item 3")
}
