package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"factflow/internal/store"
)

// ErrUnknownActor reports that no actor exists for the requested ID.
var ErrUnknownActor = errors.New("unknown actor")

// Resolver maps an actor ID to the actor record.
type Resolver interface {
	Resolve(ctx context.Context, actorID string) (*store.Actor, error)
}

// ActorLookup is the store method StoreResolver depends on.
type ActorLookup interface {
	GetActor(ctx context.Context, id string) (*store.Actor, error)
}

// StoreResolver resolves actors from the data store.
type StoreResolver struct {
	lookup ActorLookup
}

// NewStoreResolver builds a resolver backed by lookup.
func NewStoreResolver(lookup ActorLookup) *StoreResolver {
	return &StoreResolver{lookup: lookup}
}

// Resolve returns the actor or ErrUnknownActor when absent.
func (r *StoreResolver) Resolve(ctx context.Context, actorID string) (*store.Actor, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, fmt.Errorf("%w: empty actor id", ErrUnknownActor)
	}
	actor, err := r.lookup.GetActor(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolve actor %s: %w", actorID, err)
	}
	if actor == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActor, actorID)
	}
	return actor, nil
}

// CachedResolver memoizes successful lookups of an inner Resolver. Misses and
// errors are never cached.
type CachedResolver struct {
	inner Resolver
	cache *gocache.Cache
}

// NewCachedResolver wraps inner with a cache of the given lifetime. A ttl of
// zero or less returns inner unchanged.
func NewCachedResolver(inner Resolver, ttl time.Duration) Resolver {
	if ttl <= 0 {
		return inner
	}
	return &CachedResolver{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Resolve serves from cache when fresh and falls back to the inner resolver.
func (r *CachedResolver) Resolve(ctx context.Context, actorID string) (*store.Actor, error) {
	key := strings.TrimSpace(actorID)
	if cached, found := r.cache.Get(key); found {
		actor := cached.(store.Actor)
		return &actor, nil
	}
	actor, err := r.inner.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(key, *actor)
	return actor, nil
}

// Invalidate drops a cached actor, e.g. after its role changed.
func (r *CachedResolver) Invalidate(actorID string) {
	r.cache.Delete(strings.TrimSpace(actorID))
}
