// Package lifecycle defines the editorial stages a work item moves through and
// the fixed graph of stage transitions between them.
//
// The Table type is an immutable value: build it once with DefaultTable (or
// NewTable for alternates in tests) and hand it to the workflow engine. Stage
// names are the lowercase, hyphenated strings stored in the database and
// exposed over the API.
package lifecycle
