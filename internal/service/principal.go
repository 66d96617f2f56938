package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/phrazzld/taskman-api/internal/store"
)

// resolvePrincipal loads the role and permission set of user. A user without
// a role assignment gets an empty permission set.
func resolvePrincipal(ctx context.Context, roles store.RoleStore, user *domain.User) (domain.Principal, error) {
	p := domain.Principal{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Permissions: []string{},
	}

	role, err := roles.GetUserRole(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrRoleNotFound) {
			return p, nil
		}
		return p, fmt.Errorf("failed to resolve role of user %d: %w", user.ID, err)
	}
	p.Role = role

	perms, err := roles.GetPermissions(ctx, role)
	if err != nil {
		return p, fmt.Errorf("failed to resolve permissions of role %s: %w", role, err)
	}
	p.Permissions = perms
	return p, nil
}
