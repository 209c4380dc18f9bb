// Package seed loads YAML fixtures of actors and work items into a store.
//
// Items that name a target stage are walked there through the workflow
// engine along the shortest path of the stage graph, so every seeded item
// carries a complete audit trail.
package seed
