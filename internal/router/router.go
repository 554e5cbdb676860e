package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pizzadesk/api/internal/backend"
	"github.com/pizzadesk/api/internal/config"
	"github.com/pizzadesk/api/internal/handler"
	"github.com/pizzadesk/api/internal/session"
	"github.com/pizzadesk/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, client *backend.Client, sessions *session.Manager, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// WebSocket route: order notifications for open screens
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	// Item management screen
	itemHandler := handler.NewItemHandler(client)
	r.Route("/items", itemHandler.RegisterRoutes)

	// Invoice screen sessions: catalog, cart, orders
	sessionHandler := handler.NewSessionHandler(sessions)
	orderHandler := handler.NewOrderHandler(sessions, hub)
	r.Route("/sessions", func(r chi.Router) {
		sessionHandler.RegisterRoutes(r)
		orderHandler.RegisterRoutes(r)
	})

	return r
}
