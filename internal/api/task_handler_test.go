package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/phrazzld/taskman-api/internal/api"
	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/phrazzld/taskman-api/internal/service"
	"github.com/phrazzld/taskman-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTaskHandler_ListTasks(t *testing.T) {
	env := newTestEnv(t)
	caller := regularUser(5)
	page := domain.Page[domain.Task]{
		Data: []domain.Task{{ID: 1, Title: "a", UserID: 5, Status: domain.TaskStatusDone}},
		Meta: domain.PageMeta{Page: 1, Size: 1, Total: 1},
	}
	env.tasks.On("List", mock.Anything, *caller, domain.ListQuery{Page: 1, Size: 10}).Return(page, nil)

	rec := env.do(t, http.MethodGet, "/tasks", nil, caller)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.ListResponse[api.TaskResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, page.Meta, resp.Meta)
	assert.Equal(t, "DONE", resp.Data[0].Status)
}

func TestTaskHandler_ListTasksEmptyPage(t *testing.T) {
	env := newTestEnv(t)
	env.tasks.On("List", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.NewPage[domain.Task](nil, domain.ListQuery{Page: 3, Size: 10}, 4), nil)

	rec := env.do(t, http.MethodGet, "/tasks?page=3", nil, regularUser(5))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"meta":{"page":3,"size":0,"total":4}}`, rec.Body.String())
}

func TestTaskHandler_NonOwnerGetsNotFound(t *testing.T) {
	caller := regularUser(5)
	title := "x"

	tests := []struct {
		name   string
		method string
		body   any
		setup  func(env *testEnv)
	}{
		{"get", http.MethodGet, nil, func(env *testEnv) {
			env.tasks.On("Get", mock.Anything, *caller, int64(10)).Return(nil, store.ErrTaskNotFound)
		}},
		{"put", http.MethodPut, map[string]string{"title": title}, func(env *testEnv) {
			env.tasks.On("Update", mock.Anything, *caller, int64(10), domain.TaskPatch{Title: &title}).
				Return(nil, store.ErrTaskNotFound)
		}},
		{"delete", http.MethodDelete, nil, func(env *testEnv) {
			env.tasks.On("Delete", mock.Anything, *caller, int64(10)).Return(store.ErrTaskNotFound)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			tc.setup(env)

			rec := env.do(t, tc.method, "/tasks/10", tc.body, caller)

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "Task not found", decodeError(t, rec).Message)
		})
	}
}

func TestTaskHandler_SuperOperatesOnAnyTask(t *testing.T) {
	env := newTestEnv(t)
	root := superUser()
	env.tasks.On("Get", mock.Anything, *root, int64(10)).
		Return(&domain.Task{ID: 10, UserID: 5, Title: "x", Status: domain.TaskStatusPending}, nil)
	env.tasks.On("Delete", mock.Anything, *root, int64(10)).Return(nil)

	rec := env.do(t, http.MethodGet, "/tasks/10", nil, root)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/tasks/10", nil, root)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task deleted", decodeMessage(t, rec))
}

func TestTaskHandler_CreateTask(t *testing.T) {
	caller := regularUser(5)

	t.Run("created", func(t *testing.T) {
		env := newTestEnv(t)
		env.tasks.On("Create", mock.Anything, *caller, service.CreateTaskInput{Title: "buy milk"}).
			Return(&domain.Task{ID: 1}, nil)

		rec := env.do(t, http.MethodPost, "/tasks", map[string]string{"title": "buy milk"}, caller)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Task created", decodeMessage(t, rec))
	})

	t.Run("unknown status", func(t *testing.T) {
		env := newTestEnv(t)
		env.tasks.On("Create", mock.Anything, *caller, service.CreateTaskInput{Title: "t", Status: "LATER"}).
			Return(nil, service.ErrUnknownTaskStatus)

		rec := env.do(t, http.MethodPost, "/tasks", map[string]string{"title": "t", "status": "LATER"}, caller)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid task status", decodeError(t, rec).Message)
	})

	t.Run("missing title", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/tasks", map[string]string{}, caller)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("permission required", func(t *testing.T) {
		env := newTestEnv(t)
		readOnly := &domain.Principal{ID: 6, Role: domain.RoleUser, Permissions: []string{domain.PermTasksGet}}
		rec := env.do(t, http.MethodPost, "/tasks", map[string]string{"title": "t"}, readOnly)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestTaskHandler_UpdateTaskStatus(t *testing.T) {
	env := newTestEnv(t)
	caller := regularUser(5)
	done := domain.TaskStatusDone
	env.tasks.On("Update", mock.Anything, *caller, int64(3), domain.TaskPatch{Status: &done}).
		Return(&domain.Task{ID: 3, Status: done}, nil)

	rec := env.do(t, http.MethodPut, "/tasks/3", map[string]string{"status": "DONE"}, caller)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task updated", decodeMessage(t, rec))
}
