// Package domain holds the CRM's role model and the ownership and status rules
// applied to clients, contracts and events.
//
// The rules are pure functions over an Identity and the record being touched.
// They never load anything themselves; services resolve the records inside the
// unit of work and ask the rules before mutating.
package domain

import (
	"regexp"
	"slices"
)

// Role is a permission level. The built-in roles below drive every rule;
// additional roles can be registered at runtime and granted to users, but only
// commands that explicitly list them will accept them.
type Role string

const (
	// RoleCommercial owns clients and the contracts signed with them.
	RoleCommercial Role = "commercial"

	// RoleSupport runs the events it is assigned to.
	RoleSupport Role = "support"

	// RoleGestion manages users and contracts and assigns support to events.
	RoleGestion Role = "gestion"
)

// BuiltinRoles lists the roles every installation starts with.
var BuiltinRoles = []Role{RoleCommercial, RoleSupport, RoleGestion}

var roleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{1,31}$`)

// IsBuiltin reports whether r is one of the built-in roles.
func (r Role) IsBuiltin() bool {
	return slices.Contains(BuiltinRoles, r)
}

// IsValidRoleName checks the format of a new role name:
// lowercase, starting with a letter, 2-32 characters.
func IsValidRoleName(name string) bool {
	return roleNamePattern.MatchString(name)
}

// Identity is the authenticated actor resolved from a session token.
type Identity struct {
	UserID int64
	Name   string
	Role   Role
}

// Is reports whether the identity holds the given role.
func (id Identity) Is(role Role) bool {
	return id.Role == role
}
