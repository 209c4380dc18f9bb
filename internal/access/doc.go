// Package access models actor roles and the minimum role each stage
// transition requires.
//
// Roles are totally ordered (unprivileged < reviewer < admin < super-admin),
// so a permission rule is a single threshold. Edges with no explicit rule
// fall back to the table's default threshold, which is admin-or-higher for
// the editorial workflow. Unknown edges are therefore never fail-open.
package access
