// Package daemon runs the long-lived factflow API server.
//
// It wires configuration, the SQLite store, and the workflow engine behind
// an HTTP JSON API, with flock-based locking to prevent two servers sharing
// one database. Requests authenticate with a bearer token when one is
// configured and name the acting user in the X-Factflow-Actor header; each
// actor is rate limited independently.
//
// Keep orchestration logic here: transition rules live in workflow and the
// wire format lives in api.
package daemon
