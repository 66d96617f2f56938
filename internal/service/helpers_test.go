package service_test

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/phrazzld/taskman-api/internal/mocks"
	"github.com/phrazzld/taskman-api/internal/service"
	"github.com/phrazzld/taskman-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type userServiceDeps struct {
	db    *sql.DB
	sql   sqlmock.Sqlmock
	users *mocks.MockUserStore
	roles *mocks.MockRoleStore
	tasks *mocks.MockTaskStore
}

func newUserService(t *testing.T) (*service.UserServiceImpl, *userServiceDeps) {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	deps := &userServiceDeps{
		db:    db,
		sql:   sqlMock,
		users: new(mocks.MockUserStore),
		roles: new(mocks.MockRoleStore),
		tasks: new(mocks.MockTaskStore),
	}

	svc, err := service.NewUserService(db, deps.users, deps.roles, deps.tasks, auth.NewBcryptHasher(4), testLogger())
	require.NoError(t, err)
	return svc, deps
}

func (d *userServiceDeps) assertExpectations(t *testing.T) {
	t.Helper()
	d.users.AssertExpectations(t)
	d.roles.AssertExpectations(t)
	d.tasks.AssertExpectations(t)
	require.NoError(t, d.sql.ExpectationsWereMet())
}

func strPtr(s string) *string { return &s }

func superPrincipal() domain.Principal {
	return domain.Principal{
		ID:   1,
		Name: "root",
		Role: domain.RoleSuper,
		Permissions: []string{
			domain.PermUsersGet, domain.PermUsersPost, domain.PermUsersPut, domain.PermUsersDelete,
			domain.PermTasksGet, domain.PermTasksPost, domain.PermTasksPut, domain.PermTasksDelete,
		},
	}
}

func userPrincipal(id int64) domain.Principal {
	return domain.Principal{
		ID:   id,
		Name: "alice",
		Role: domain.RoleUser,
		Permissions: []string{
			domain.PermTasksGet, domain.PermTasksPost, domain.PermTasksPut, domain.PermTasksDelete,
		},
	}
}
