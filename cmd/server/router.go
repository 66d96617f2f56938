package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskman-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskman-api/internal/api/middleware"
	"github.com/phrazzld/taskman-api/internal/domain"
	"github.com/rs/cors"
)

// setupRouter builds the route table. Every protected route requires exactly
// one permission.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	authHandler := api.NewAuthHandler(app.authService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	can := apiMiddleware.Authorize

	// Leave the interface nil rather than holding a nil *sql.DB.
	var pinger api.Pinger
	if app.db != nil {
		pinger = app.db
	}
	r.Method(http.MethodGet, "/health", api.NewHealthHandler(pinger, app.logger))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/signup", authHandler.Signup)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Route("/users", func(r chi.Router) {
			r.With(can(domain.PermUsersGet)).Get("/", userHandler.ListUsers)
			r.With(can(domain.PermUsersPost)).Post("/", userHandler.CreateUser)
			r.With(can(domain.PermUsersGet)).Get("/{id}", userHandler.GetUser)
			r.With(can(domain.PermUsersPut)).Put("/{id}", userHandler.UpdateUser)
			r.With(can(domain.PermUsersDelete)).Delete("/{id}", userHandler.DeleteUser)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.With(can(domain.PermTasksGet)).Get("/", taskHandler.ListTasks)
			r.With(can(domain.PermTasksPost)).Post("/", taskHandler.CreateTask)
			r.With(can(domain.PermTasksGet)).Get("/{id}", taskHandler.GetTask)
			r.With(can(domain.PermTasksPut)).Put("/{id}", taskHandler.UpdateTask)
			r.With(can(domain.PermTasksDelete)).Delete("/{id}", taskHandler.DeleteTask)
		})
	})

	return app.withCORS(r)
}

// withCORS wraps h with the configured allowed origins. No origins means no
// CORS headers are sent.
func (app *application) withCORS(h http.Handler) http.Handler {
	origins := app.config.Server.CORSAllowedOrigins
	if len(origins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler(h)
}
