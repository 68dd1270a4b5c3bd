package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/gcp-panel/backend/internal/middleware"
	"github.com/gcp-panel/backend/internal/session"
)

// NewRouter constructs the HTTP handler serving the console API and the
// static UI.
//
// Routes:
//
//	POST /api/login              → AuthHandler.Login (no session required)
//	POST /api/logout             → AuthHandler.Logout
//	POST /api/setup/password     → AuthHandler.ChangePassword
//	GET  /api/status             → AccountHandler.Status
//	GET/POST /api/accounts       → AccountHandler.List / Add
//	PUT/DELETE /api/accounts/{id}→ AccountHandler.Rename / Remove
//	GET  /api/instances          → InstanceHandler.List
//	POST /api/instances/create   → InstanceHandler.Create
//	POST /api/instances/changeip → InstanceHandler.ChangeIP
//	POST /api/instances/ipv6     → InstanceHandler.IPv6 (501)
//	POST /api/instances/{action} → InstanceHandler.Action (start/stop/delete)
//	GET  /api/logs               → LogsHandler.List
//
// Every /api route except /api/login requires a valid session cookie.
func NewRouter(
	authHandler *AuthHandler,
	accountHandler *AccountHandler,
	instanceHandler *InstanceHandler,
	logsHandler *LogsHandler,
	sessions *session.Store,
	logger *zap.Logger,
	allowedOrigins string,
	staticDir string,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(allowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SessionAuth(sessions))

		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Post("/setup/password", authHandler.ChangePassword)

		r.Get("/status", accountHandler.Status)
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", accountHandler.List)
			r.Post("/", accountHandler.Add)
			r.Put("/{id}", accountHandler.Rename)
			r.Delete("/{id}", accountHandler.Remove)
		})

		r.Route("/instances", func(r chi.Router) {
			r.Get("/", instanceHandler.List)
			r.Post("/create", instanceHandler.Create)
			r.Post("/changeip", instanceHandler.ChangeIP)
			r.Post("/ipv6", instanceHandler.IPv6)
			r.Post("/{action}", instanceHandler.Action)
		})

		r.Get("/logs", logsHandler.List)
	})

	// Static UI assets
	r.Handle("/*", http.FileServer(http.Dir(staticDir)))

	return r
}
