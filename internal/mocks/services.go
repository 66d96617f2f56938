package mocks

import (
	"context"

	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/phrazzld/taskman-api/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockUserService is a testify mock of service.UserService.
type MockUserService struct {
	mock.Mock
}

var _ service.UserService = (*MockUserService)(nil)

func (m *MockUserService) List(ctx context.Context, q domain.ListQuery) (domain.Page[domain.User], error) {
	args := m.Called(ctx, q)
	page, _ := args.Get(0).(domain.Page[domain.User])
	return page, args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) Create(
	ctx context.Context,
	in service.CreateUserInput,
	createdBy *int64,
) (*domain.User, error) {
	args := m.Called(ctx, in, createdBy)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) Update(
	ctx context.Context,
	id int64,
	patch domain.UserPatch,
	updatedBy int64,
) (*domain.User, error) {
	args := m.Called(ctx, id, patch, updatedBy)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockTaskService is a testify mock of service.TaskService.
type MockTaskService struct {
	mock.Mock
}

var _ service.TaskService = (*MockTaskService)(nil)

func (m *MockTaskService) List(
	ctx context.Context,
	p domain.Principal,
	q domain.ListQuery,
) (domain.Page[domain.Task], error) {
	args := m.Called(ctx, p, q)
	page, _ := args.Get(0).(domain.Page[domain.Task])
	return page, args.Error(1)
}

func (m *MockTaskService) Get(ctx context.Context, p domain.Principal, id int64) (*domain.Task, error) {
	args := m.Called(ctx, p, id)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) Create(
	ctx context.Context,
	p domain.Principal,
	in service.CreateTaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, p, in)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) Update(
	ctx context.Context,
	p domain.Principal,
	id int64,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	args := m.Called(ctx, p, id, patch)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, p domain.Principal, id int64) error {
	return m.Called(ctx, p, id).Error(0)
}

// MockAuthService is a testify mock of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

var _ service.AuthService = (*MockAuthService)(nil)

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.TokenPair, error) {
	args := m.Called(ctx, email, password)
	pair, _ := args.Get(0).(*service.TokenPair)
	return pair, args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	pair, _ := args.Get(0).(*service.TokenPair)
	return pair, args.Error(1)
}

func (m *MockAuthService) Signup(ctx context.Context, in service.CreateUserInput) (*domain.User, error) {
	args := m.Called(ctx, in)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}
