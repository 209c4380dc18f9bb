package access

import "factflow/internal/lifecycle"

// Permissions maps stage transitions to the minimum role allowed to perform
// them. It is immutable once built. The zero value requires admin for every
// edge.
type Permissions struct {
	fallback Role
	rules    map[lifecycle.Edge]Role
}

// NewPermissions builds a permission table. Edges missing from rules require
// the fallback role, which is never lower than RoleAdmin.
func NewPermissions(fallback Role, rules map[lifecycle.Edge]Role) Permissions {
	copied := make(map[lifecycle.Edge]Role, len(rules))
	for edge, role := range rules {
		copied[edge] = role
	}
	return Permissions{fallback: failClosed(fallback), rules: copied}
}

func failClosed(fallback Role) Role {
	if fallback < RoleAdmin || !fallback.Valid() {
		return RoleAdmin
	}
	return fallback
}

// DefaultPermissions returns the editorial permission table.
//
// Research edges are open to reviewers, the final-approval exits are reserved
// for super-admins, and the rest of the main flow is admin work. The
// correction loop has no explicit rules and falls back to admin.
func DefaultPermissions() Permissions {
	rules := make(map[lifecycle.Edge]Role)
	grant := func(role Role, from lifecycle.Stage, targets ...lifecycle.Stage) {
		for _, to := range targets {
			rules[lifecycle.Edge{From: from, To: to}] = role
		}
	}

	grant(RoleReviewer, lifecycle.StageAssigned, lifecycle.StageInResearch)
	grant(RoleReviewer, lifecycle.StageInResearch, lifecycle.StageDraftReady)
	grant(RoleReviewer, lifecycle.StageNeedsMoreResearch, lifecycle.StageInResearch)

	grant(RoleAdmin, lifecycle.StageSubmitted, lifecycle.StageQueued, lifecycle.StageDuplicateDetected)
	grant(RoleAdmin, lifecycle.StageQueued, lifecycle.StageAssigned, lifecycle.StageRejected)
	grant(RoleAdmin, lifecycle.StageDuplicateDetected, lifecycle.StageArchived)
	grant(RoleAdmin, lifecycle.StageAssigned, lifecycle.StageRejected)
	grant(RoleAdmin, lifecycle.StageInResearch, lifecycle.StageRejected)
	grant(RoleAdmin, lifecycle.StageDraftReady, lifecycle.StageAdminReview, lifecycle.StageNeedsMoreResearch)
	grant(RoleAdmin, lifecycle.StageAdminReview,
		lifecycle.StagePeerReview, lifecycle.StageFinalApproval, lifecycle.StageNeedsMoreResearch, lifecycle.StageRejected)
	grant(RoleAdmin, lifecycle.StagePeerReview,
		lifecycle.StageFinalApproval, lifecycle.StageNeedsMoreResearch, lifecycle.StageRejected)
	grant(RoleAdmin, lifecycle.StageRejected, lifecycle.StageArchived)

	grant(RoleSuperAdmin, lifecycle.StageFinalApproval,
		lifecycle.StagePublished, lifecycle.StageNeedsMoreResearch, lifecycle.StageRejected)

	return NewPermissions(RoleAdmin, rules)
}

// Required returns the minimum role for the edge and whether an explicit rule
// exists for it.
func (p Permissions) Required(from, to lifecycle.Stage) (Role, bool) {
	role, ok := p.rules[lifecycle.Edge{From: from, To: to}]
	if !ok {
		return p.Fallback(), false
	}
	return role, true
}

// Permits reports whether role may traverse from -> to. Unprivileged actors
// hold no edges, whatever the rules say.
func (p Permissions) Permits(role Role, from, to lifecycle.Stage) bool {
	if role == RoleUnprivileged {
		return false
	}
	required, _ := p.Required(from, to)
	return role.AtLeast(required)
}

// Fallback returns the role required for edges without an explicit rule.
func (p Permissions) Fallback() Role {
	return failClosed(p.fallback)
}
