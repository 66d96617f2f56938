package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskman-api/internal/api"
	"github.com/phrazzld/taskman-api/internal/api/middleware"
	"github.com/phrazzld/taskman-api/internal/api/shared"
	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/phrazzld/taskman-api/internal/mocks"
	"github.com/phrazzld/taskman-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router http.Handler
	jwt    *auth.HMACJWTService
	auth   *mocks.MockAuthService
	users  *mocks.MockUserService
	tasks  *mocks.MockTaskService
}

// newTestEnv wires the handlers behind the real auth middleware, mirroring
// the production route table.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		jwt:   auth.RequireTestJWTService(t),
		auth:  new(mocks.MockAuthService),
		users: new(mocks.MockUserService),
		tasks: new(mocks.MockTaskService),
	}
	t.Cleanup(func() {
		env.auth.AssertExpectations(t)
		env.users.AssertExpectations(t)
		env.tasks.AssertExpectations(t)
	})

	authHandler := api.NewAuthHandler(env.auth, log)
	userHandler := api.NewUserHandler(env.users, log)
	taskHandler := api.NewTaskHandler(env.tasks, log)
	authMW := middleware.NewAuthMiddleware(env.jwt)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	r.Post("/auth/login", authHandler.Login)
	r.Post("/auth/refresh", authHandler.Refresh)
	r.Post("/auth/signup", authHandler.Signup)
	r.Group(func(r chi.Router) {
		r.Use(authMW.Authenticate)
		r.With(middleware.Authorize(domain.PermUsersGet)).Get("/users", userHandler.ListUsers)
		r.With(middleware.Authorize(domain.PermUsersGet)).Get("/users/{id}", userHandler.GetUser)
		r.With(middleware.Authorize(domain.PermUsersPost)).Post("/users", userHandler.CreateUser)
		r.With(middleware.Authorize(domain.PermUsersPut)).Put("/users/{id}", userHandler.UpdateUser)
		r.With(middleware.Authorize(domain.PermUsersDelete)).Delete("/users/{id}", userHandler.DeleteUser)
		r.With(middleware.Authorize(domain.PermTasksGet)).Get("/tasks", taskHandler.ListTasks)
		r.With(middleware.Authorize(domain.PermTasksGet)).Get("/tasks/{id}", taskHandler.GetTask)
		r.With(middleware.Authorize(domain.PermTasksPost)).Post("/tasks", taskHandler.CreateTask)
		r.With(middleware.Authorize(domain.PermTasksPut)).Put("/tasks/{id}", taskHandler.UpdateTask)
		r.With(middleware.Authorize(domain.PermTasksDelete)).Delete("/tasks/{id}", taskHandler.DeleteTask)
	})
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, principal *domain.Principal) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if principal != nil {
		req.Header.Set("Authorization", auth.GenerateAuthHeaderForTestingT(t, e.jwt, *principal))
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp shared.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Message
}

func superUser() *domain.Principal {
	return &domain.Principal{
		ID:   1,
		Name: "root",
		Role: domain.RoleSuper,
		Permissions: []string{
			domain.PermUsersGet, domain.PermUsersPost, domain.PermUsersPut, domain.PermUsersDelete,
			domain.PermTasksGet, domain.PermTasksPost, domain.PermTasksPut, domain.PermTasksDelete,
		},
	}
}

func regularUser(id int64) *domain.Principal {
	return &domain.Principal{
		ID:   id,
		Name: "alice",
		Role: domain.RoleUser,
		Permissions: []string{
			domain.PermTasksGet, domain.PermTasksPost, domain.PermTasksPut, domain.PermTasksDelete,
		},
	}
}
