package access

import "strings"

// Role is an actor's privilege level. Higher values dominate lower ones.
type Role int

const (
	RoleUnprivileged Role = iota
	RoleReviewer
	RoleAdmin
	RoleSuperAdmin
)

var roleNames = map[Role]string{
	RoleUnprivileged: "unprivileged",
	RoleReviewer:     "reviewer",
	RoleAdmin:        "admin",
	RoleSuperAdmin:   "super-admin",
}

// AllRoles returns the roles in ascending order.
func AllRoles() []Role {
	return []Role{RoleUnprivileged, RoleReviewer, RoleAdmin, RoleSuperAdmin}
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// AtLeast reports whether r meets the minimum role.
func (r Role) AtLeast(minimum Role) bool {
	return r.Valid() && r >= minimum
}

// ParseRole converts a role name into a Role. "user" is accepted as an alias
// for unprivileged and underscores may replace hyphens.
func ParseRole(value string) (Role, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	switch normalized {
	case "unprivileged", "user":
		return RoleUnprivileged, true
	case "reviewer":
		return RoleReviewer, true
	case "admin":
		return RoleAdmin, true
	case "super-admin", "superadmin":
		return RoleSuperAdmin, true
	default:
		return RoleUnprivileged, false
	}
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, ok := ParseRole(string(text))
	if !ok {
		return &UnknownRoleError{Value: string(text)}
	}
	*r = parsed
	return nil
}

// UnknownRoleError reports an unrecognized role name.
type UnknownRoleError struct {
	Value string
}

func (e *UnknownRoleError) Error() string {
	return "unknown role " + `"` + e.Value + `"`
}
