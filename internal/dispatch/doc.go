// Package dispatch creates dependent research records when a work item enters
// a research stage.
//
// On entering assigned or in-research the Dispatcher opens one pending fact
// check for the lowest-id linked claim, inside the caller's transaction. A
// claim that already has a fact check is left alone, and a work item without
// claims only produces a warning.
package dispatch
