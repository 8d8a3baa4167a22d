// Package rest wires the HTTP router, middleware and handlers.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"circulate-backend/application/services"
	"circulate-backend/interfaces/http/rest/handlers"
	"circulate-backend/interfaces/http/rest/middleware"
	"circulate-backend/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	circleService  *services.CircleService
	contentService *services.ContentService
	userService    *services.UserService
	tokenParser    *auth.TokenParser
	enableCORS     bool
	logger         *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	circleService *services.CircleService,
	contentService *services.ContentService,
	userService *services.UserService,
	tokenParser *auth.TokenParser,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		circleService:  circleService,
		contentService: contentService,
		userService:    userService,
		tokenParser:    tokenParser,
		enableCORS:     enableCORS,
		logger:         logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.circulate.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.tokenParser, rt.logger))

		r.Route("/circles", func(r chi.Router) {
			circleHandler := handlers.NewCircleHandler(rt.circleService, rt.logger)
			r.Post("/", circleHandler.CreateCircle)
			r.Get("/", circleHandler.ListCircles)
			r.Get("/public", circleHandler.ListPublicCircles)
			r.Get("/{circleID}", circleHandler.GetCircle)
			r.Post("/{circleID}/join", circleHandler.JoinCircle)
			r.Post("/{circleID}/leave", circleHandler.LeaveCircle)
		})

		r.Route("/content", func(r chi.Router) {
			contentHandler := handlers.NewContentHandler(rt.contentService, rt.logger)
			r.Post("/", contentHandler.CreateContent)
			r.Get("/{contentID}", contentHandler.GetContent)
		})

		r.Get("/events", handlers.NewContentHandler(rt.contentService, rt.logger).ListEvents)

		r.Route("/users", func(r chi.Router) {
			userHandler := handlers.NewUserHandler(rt.userService, rt.logger)
			r.Put("/me", userHandler.UpdateProfile)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
