// Package guard flags work items whose content needs secondary (peer) review.
//
// Matching folds case with golang.org/x/text/cases so non-ASCII keywords match
// regardless of case. Political terms are checked before health and safety
// terms. The flag, once set, is never cleared and never blocks a transition.
package guard
