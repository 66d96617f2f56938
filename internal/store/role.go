package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskman-api/internal/domain"
)

// RoleStore resolves roles and permissions and manages role assignments.
type RoleStore interface {
	// GetUserRole returns the role assigned to a user.
	// Returns ErrRoleNotFound when the user has no assignment.
	GetUserRole(ctx context.Context, userID int64) (domain.RoleName, error)

	// GetPermissions returns the permission names granted to role, sorted.
	GetPermissions(ctx context.Context, role domain.RoleName) ([]string, error)

	// AssignRole replaces any role assignment of userID with role.
	// Returns ErrRoleNotFound for an unseeded role name.
	AssignRole(ctx context.Context, userID int64, role domain.RoleName, assignedBy *int64) error

	// RemoveUserRoles deletes every role assignment of userID.
	RemoveUserRoles(ctx context.Context, userID int64) error

	// WithTx returns a RoleStore bound to tx.
	WithTx(tx *sql.Tx) RoleStore
}
