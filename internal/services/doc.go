// Package services defines shared utilities consumed by the workflow engine,
// the HTTP API, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp work item IDs, target stages, actor IDs, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures as client mistakes or infrastructure trouble.
package services
