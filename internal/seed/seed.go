package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"factflow/internal/access"
	"factflow/internal/lifecycle"
	"factflow/internal/store"
	"factflow/internal/workflow"
)

// Fixture is the YAML document shape.
type Fixture struct {
	Actors []ActorFixture `yaml:"actors"`
	Items  []ItemFixture  `yaml:"items"`
}

// ActorFixture registers one actor.
type ActorFixture struct {
	ID          string `yaml:"id"`
	Role        string `yaml:"role"`
	DisplayName string `yaml:"display_name"`
}

// ItemFixture creates one work item. When Stage is set the item is moved
// there on behalf of Actor.
type ItemFixture struct {
	Content string   `yaml:"content"`
	Claims  []string `yaml:"claims"`
	Stage   string   `yaml:"stage"`
	Actor   string   `yaml:"actor"`
	Reason  string   `yaml:"reason"`
}

// Store is the persistence the loader writes.
type Store interface {
	UpsertActor(ctx context.Context, actor store.Actor) (*store.Actor, error)
	CreateWorkItem(ctx context.Context, content string) (*store.WorkItem, error)
	AddClaim(ctx context.Context, workItemID int64, text string) (*store.Claim, error)
}

// Engine moves seeded items.
type Engine interface {
	Transition(ctx context.Context, req workflow.Request) (*store.WorkItem, error)
	Table() lifecycle.Table
}

// Summary reports what a load created.
type Summary struct {
	Actors      int
	Items       int
	Claims      int
	Transitions int
}

// Parse decodes and validates a fixture.
func Parse(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return &fx, nil
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// ParseFile reads a fixture from disk.
func ParseFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Validate checks fixture fields without touching a store.
func (fx *Fixture) Validate() error {
	for i, actor := range fx.Actors {
		if strings.TrimSpace(actor.ID) == "" {
			return fmt.Errorf("actors[%d]: id is required", i)
		}
		if _, ok := access.ParseRole(actor.Role); !ok {
			return fmt.Errorf("actors[%d]: unknown role %q", i, actor.Role)
		}
	}
	for i, item := range fx.Items {
		if strings.TrimSpace(item.Content) == "" {
			return fmt.Errorf("items[%d]: content is required", i)
		}
		if item.Stage == "" {
			continue
		}
		if _, ok := lifecycle.ParseStage(item.Stage); !ok {
			return fmt.Errorf("items[%d]: unknown stage %q", i, item.Stage)
		}
		if strings.TrimSpace(item.Actor) == "" {
			return fmt.Errorf("items[%d]: actor is required to reach stage %q", i, item.Stage)
		}
	}
	return nil
}

// Load writes the fixture. Actors are upserted first so items can be moved
// by actors declared in the same document. Load stops at the first error;
// records written before it remain.
func Load(ctx context.Context, st Store, engine Engine, fx *Fixture) (Summary, error) {
	var summary Summary
	if fx == nil {
		return summary, nil
	}
	for _, a := range fx.Actors {
		role, _ := access.ParseRole(a.Role)
		if _, err := st.UpsertActor(ctx, store.Actor{
			ID:          strings.TrimSpace(a.ID),
			Role:        role,
			DisplayName: strings.TrimSpace(a.DisplayName),
		}); err != nil {
			return summary, fmt.Errorf("seed actor %q: %w", a.ID, err)
		}
		summary.Actors++
	}

	for i, spec := range fx.Items {
		item, err := st.CreateWorkItem(ctx, spec.Content)
		if err != nil {
			return summary, fmt.Errorf("seed items[%d]: %w", i, err)
		}
		summary.Items++
		for _, text := range spec.Claims {
			if strings.TrimSpace(text) == "" {
				continue
			}
			if _, err := st.AddClaim(ctx, item.ID, text); err != nil {
				return summary, fmt.Errorf("seed items[%d] claim: %w", i, err)
			}
			summary.Claims++
		}
		if spec.Stage == "" {
			continue
		}
		moved, err := walk(ctx, engine, item, spec)
		summary.Transitions += moved
		if err != nil {
			return summary, fmt.Errorf("seed items[%d]: %w", i, err)
		}
	}
	return summary, nil
}

func walk(ctx context.Context, engine Engine, item *store.WorkItem, spec ItemFixture) (int, error) {
	target, _ := lifecycle.ParseStage(spec.Stage)
	path := engine.Table().Path(item.Stage, target)
	if path == nil {
		return 0, fmt.Errorf("stage %q is unreachable from %q", target, item.Stage)
	}
	reason := strings.TrimSpace(spec.Reason)
	if reason == "" {
		reason = "seeded"
	}
	for n, to := range path {
		if _, err := engine.Transition(ctx, workflow.Request{
			WorkItemID: item.ID,
			To:         to,
			ActorID:    strings.TrimSpace(spec.Actor),
			Reason:     reason,
		}); err != nil {
			return n, err
		}
	}
	return len(path), nil
}
