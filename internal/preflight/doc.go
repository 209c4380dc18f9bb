// Package preflight provides readiness checks for the filesystem paths, the
// database, and the API server that factflow depends on.
//
// The CLI "factflow doctor" command runs RunAll and renders each Result.
// The server checks nothing here on startup; store.Open already fails fast on
// an unusable database.
package preflight
