// Package similarity ranks work items by textual overlap so triage can spot
// resubmissions before moving an item to duplicate-detected.
//
// Text is case-folded, split on anything that is not a letter or digit, and
// tokens shorter than three runes are dropped. Documents are compared as
// TF-IDF vectors with cosine similarity.
package similarity
