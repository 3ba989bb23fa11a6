package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"roombook/config"
	_ "roombook/docs"
	"roombook/internal/handlers/auth"
	"roombook/internal/handlers/reservation"
	"roombook/internal/handlers/room"
	"roombook/internal/handlers/user"
	"roombook/transport/http/middleware"
)

type DomainHandlers struct {
	Auth        auth.Handler
	User        user.Handler
	Room        room.Handler
	Reservation reservation.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	app            middleware.AppMiddleware
	authRole       middleware.AuthRole
	cfg            *config.Config
}

func New(domainHandlers DomainHandlers, app middleware.AppMiddleware, authRole middleware.AuthRole, cfg *config.Config) Router {
	return Router{
		DomainHandlers: domainHandlers,
		app:            app,
		authRole:       authRole,
		cfg:            cfg,
	}
}

// SetupRoutes installs the middleware chain, then the ops and versioned routes.
// health reports the server state so load balancers stop routing during shutdown.
func (r *Router) SetupRoutes(router chi.Router, health http.HandlerFunc) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)

	if corsHandler := r.cors(); corsHandler != nil {
		router.Use(corsHandler)
	}

	router.Use(r.app.Tracing)
	router.Use(r.app.RateLimit())
	router.Use(r.authRole.APIKey)
	router.Use(r.authRole.Auth)
	router.Use(r.authRole.RBAC)

	router.Get("/health", health)
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.Reservation.Router(routerGroup)
	})
}

func (r *Router) cors() func(http.Handler) http.Handler {
	cfg := r.cfg.App.CORS
	if !cfg.Enable {
		return nil
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAgeSeconds,
	})
}
