// Package workflow moves work items between editorial stages.
//
// The Engine is the only writer of a work item's stage. Each Transition runs
// as a single unit of work against the data store: load the item, resolve the
// actor, check the stage graph and the permission table, apply the secondary
// review guard on entry to admin-review, open a fact check on entry to the
// research stages, append one audit record and persist the new stage. Any
// failure rolls the whole unit back.
//
// Concurrent transitions of the same item are serialized by the store. The
// stage write is conditional on the stage read at the start of the unit, so a
// writer that lost a race gets store.ErrConflict rather than overwriting.
package workflow
