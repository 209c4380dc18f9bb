// Package identity resolves actor IDs to actors and their roles.
//
// StoreResolver reads the actors table directly. CachedResolver wraps any
// Resolver with a short-lived in-memory cache so repeated transitions by the
// same actor skip the lookup; a zero TTL disables caching entirely so role
// changes apply on the next request.
package identity
