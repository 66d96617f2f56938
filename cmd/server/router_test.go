package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taskman-api/internal/config"
	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/phrazzld/taskman-api/internal/mocks"
	"github.com/phrazzld/taskman-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestApplication(t *testing.T, origins ...string) (*application, *mocks.MockTaskService, *auth.HMACJWTService) {
	t.Helper()

	jwtService := auth.RequireTestJWTService(t)
	tasks := new(mocks.MockTaskService)
	t.Cleanup(func() { tasks.AssertExpectations(t) })

	app := &application{
		config: &config.Config{
			Server: config.ServerConfig{Port: 8080, CORSAllowedOrigins: origins},
			Auth:   auth.DefaultJWTConfig(),
		},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		jwtService:  jwtService,
		authService: new(mocks.MockAuthService),
		userService: new(mocks.MockUserService),
		taskService: tasks,
	}
	return app, tasks, jwtService
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApplication(t)
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_RBAC(t *testing.T) {
	t.Parallel()

	app, tasks, jwtService := newTestApplication(t)
	router := app.setupRouter()

	user := domain.Principal{
		ID:          7,
		Name:        "alice",
		Role:        domain.RoleUser,
		Permissions: []string{domain.PermTasksGet},
	}
	header := auth.GenerateAuthHeaderForTestingT(t, jwtService, user)

	tasks.On("List", mock.Anything, mock.MatchedBy(func(p domain.Principal) bool { return p.ID == 7 }), mock.Anything).
		Return(domain.NewPage[domain.Task](nil, domain.ListQuery{Page: 1, Size: 10}, 0), nil).Once()

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"no token", http.MethodGet, "/tasks", "", http.StatusUnauthorized},
		{"granted", http.MethodGet, "/tasks", header, http.StatusOK},
		{"missing permission", http.MethodPost, "/tasks", header, http.StatusForbidden},
		{"users not granted", http.MethodGet, "/users", header, http.StatusForbidden},
		{"unknown route", http.MethodGet, "/nope", header, http.StatusNotFound},
	}

	for _, tc := range tests {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.auth != "" {
			req.Header.Set("Authorization", tc.auth)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, tc.name)
	}
}

func TestRouter_CORS(t *testing.T) {
	t.Parallel()

	t.Run("configured origin", func(t *testing.T) {
		t.Parallel()
		app, _, _ := newTestApplication(t, "https://app.example.com")
		router := app.setupRouter()

		req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("no origins configured", func(t *testing.T) {
		t.Parallel()
		app, _, _ := newTestApplication(t)
		router := app.setupRouter()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
