// Package api defines wire-format types and converters for the HTTP API and
// the CLI's JSON output. It translates store and workflow models into
// transport-friendly DTOs so consumers do not couple to internal types.
//
// # Key Types
//
// WorkItem: transport representation of a work item, optionally carrying its
// claims and fact checks.
//
// TransitionRecord: one audit entry with decoded metadata.
//
// StageTransitions: the stages reachable from a stage with the minimum role
// each edge requires.
//
// TransitionRequest: body of POST /api/items/{id}/transitions.
//
// # Services
//
// ItemService wraps the store and the workflow engine and returns DTOs.
// StatusForError maps engine errors onto HTTP status codes: not found is 404,
// invalid transition 400, permission denied 403 and a lost concurrent update
// 409.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Stages and roles are exposed as their
// lowercase string forms. Timestamps use RFC3339 with milliseconds.
package api
