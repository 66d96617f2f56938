package domain

import "slices"

// RoleName identifies one of the statically seeded roles.
type RoleName string

const (
	// RoleSuper may manage users and bypasses task ownership.
	RoleSuper RoleName = "SUPER"
	// RoleUser is assigned to every newly created user.
	RoleUser RoleName = "USER"
)

// Permission names as stored in the permissions table. Each route requires
// exactly one of them.
const (
	PermUsersGet    = "users.get"
	PermUsersPost   = "users.post"
	PermUsersPut    = "users.put"
	PermUsersDelete = "users.delete"
	PermTasksGet    = "tasks.get"
	PermTasksPost   = "tasks.post"
	PermTasksPut    = "tasks.put"
	PermTasksDelete = "tasks.delete"
)

// Principal is the authenticated caller as described by an access token.
type Principal struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        RoleName `json:"role"`
	Permissions []string `json:"permissions"`
}

// HasPermission reports whether the principal holds permission.
func (p Principal) HasPermission(permission string) bool {
	return slices.Contains(p.Permissions, permission)
}

// IsSuper reports whether the principal bypasses row ownership.
func (p Principal) IsSuper() bool {
	return p.Role == RoleSuper
}
