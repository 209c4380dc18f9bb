package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"factflow/internal/access"
	"factflow/internal/identity"
	"factflow/internal/store"
	"factflow/internal/testsupport"
)

type countingResolver struct {
	calls int
	actor *store.Actor
}

func (c *countingResolver) Resolve(_ context.Context, actorID string) (*store.Actor, error) {
	c.calls++
	if c.actor == nil || c.actor.ID != actorID {
		return nil, identity.ErrUnknownActor
	}
	clone := *c.actor
	return &clone, nil
}

func TestStoreResolver(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.NewActor(t, st, "alice", access.RoleAdmin)
	resolver := identity.NewStoreResolver(st)

	actor, err := resolver.Resolve(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if actor.Role != access.RoleAdmin {
		t.Fatalf("unexpected role %s", actor.Role)
	}

	if _, err := resolver.Resolve(context.Background(), "nobody"); !errors.Is(err, identity.ErrUnknownActor) {
		t.Fatalf("expected ErrUnknownActor, got %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), "  "); !errors.Is(err, identity.ErrUnknownActor) {
		t.Fatalf("expected ErrUnknownActor for blank id, got %v", err)
	}
}

func TestCachedResolverServesFromCache(t *testing.T) {
	inner := &countingResolver{actor: &store.Actor{ID: "alice", Role: access.RoleReviewer}}
	resolver := identity.NewCachedResolver(inner, time.Minute)

	for i := 0; i < 3; i++ {
		actor, err := resolver.Resolve(context.Background(), "alice")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if actor.Role != access.RoleReviewer {
			t.Fatalf("unexpected role %s", actor.Role)
		}
		actor.Role = access.RoleSuperAdmin
	}
	if inner.calls != 1 {
		t.Fatalf("expected one inner call, got %d", inner.calls)
	}

	cached := resolver.(*identity.CachedResolver)
	cached.Invalidate("alice")
	if _, err := resolver.Resolve(context.Background(), "alice"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected invalidate to force a lookup, got %d calls", inner.calls)
	}
}

func TestCachedResolverDoesNotCacheMisses(t *testing.T) {
	inner := &countingResolver{}
	resolver := identity.NewCachedResolver(inner, time.Minute)
	for i := 0; i < 2; i++ {
		if _, err := resolver.Resolve(context.Background(), "ghost"); !errors.Is(err, identity.ErrUnknownActor) {
			t.Fatalf("expected ErrUnknownActor, got %v", err)
		}
	}
	if inner.calls != 2 {
		t.Fatalf("expected misses to reach inner resolver, got %d calls", inner.calls)
	}
}

func TestZeroTTLDisablesCache(t *testing.T) {
	inner := &countingResolver{}
	if got := identity.NewCachedResolver(inner, 0); got != identity.Resolver(inner) {
		t.Fatalf("expected inner resolver to be returned, got %T", got)
	}
}
