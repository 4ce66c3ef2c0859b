package app

import (
	"net/http"

	"taskManager/internal/auth"
	"taskManager/internal/handlers"
	"taskManager/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "taskmanager"

func (a *App) newRouter() http.Handler {
	cookies := auth.Cookies{
		Name:       a.config.Sessions.CookieName,
		TTL:        a.config.Sessions.TTL,
		TrustProxy: a.config.Server.TrustProxy,
	}

	taskHandler := handlers.NewTaskHandler(a.taskService)
	authHandler := handlers.NewAuthHandler(a.authService, cookies)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)
	r.Use(middleware.RateLimit(a.config.RateLimit.RPS, a.config.RateLimit.Burst))
	if origins := a.config.CORS.AllowedOrigins; len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(middleware.BodyLimit(a.config.Server.MaxBodyBytes))
	r.Use(middleware.Timeout(a.config.Database.QueryTimeout))
	r.Use(auth.LoadSession(cookies, a.sessions))

	r.Get("/health", taskHandler.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tasks", taskHandler.ListTasks) // GET /api/tasks

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession)

			r.Post("/tasks", taskHandler.CreateTask)        // POST /api/tasks
			r.Put("/tasks/{id}", taskHandler.UpdateTask)    // PUT /api/tasks/{id}
			r.Delete("/tasks/{id}", taskHandler.DeleteTask) // DELETE /api/tasks/{id}
		})

		r.Post("/login", authHandler.Login)   // POST /api/login
		r.Post("/logout", authHandler.Logout) // POST /api/logout
		r.Get("/me", authHandler.Me)          // GET /api/me
	})

	return otelhttp.NewHandler(r, serviceName)
}
