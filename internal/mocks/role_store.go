package mocks

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/phrazzld/taskman-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockRoleStore is a testify mock of store.RoleStore.
type MockRoleStore struct {
	mock.Mock
}

var _ store.RoleStore = (*MockRoleStore)(nil)

func (m *MockRoleStore) GetUserRole(ctx context.Context, userID int64) (domain.RoleName, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.RoleName), args.Error(1)
}

func (m *MockRoleStore) GetPermissions(ctx context.Context, role domain.RoleName) ([]string, error) {
	args := m.Called(ctx, role)
	if perms, ok := args.Get(0).([]string); ok {
		return perms, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoleStore) AssignRole(ctx context.Context, userID int64, role domain.RoleName, assignedBy *int64) error {
	return m.Called(ctx, userID, role, assignedBy).Error(0)
}

func (m *MockRoleStore) RemoveUserRoles(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockRoleStore) WithTx(*sql.Tx) store.RoleStore {
	return m
}
