// Package store persists work items, claims, fact checks, actors, and the
// transition audit log in SQLite.
//
// The Store manages the database connection, schema initialization, intake
// helpers, stats, and health checks. Stage changes happen only through
// RunInTransaction: each unit of work runs inside a BEGIN IMMEDIATE
// transaction, so writers to the same database are serialized, and the stage
// update is conditional on the stage read earlier in the same unit. A
// conditional update that matches no row reports ErrConflict.
//
// SQLITE_BUSY contention is retried with exponential backoff. Every other
// error, including domain errors returned by the callback, rolls the unit
// back and surfaces unchanged.
//
// Transition records are append-only; schema triggers reject UPDATE and
// DELETE on transition_records. Schema changes bump schemaVersion in
// schema.go.
package store
