package routes

import (
	"log/slog"
	"net/http"

	"firsttime/app/auth"
	"firsttime/app/config"
	"firsttime/app/controllers"
	"firsttime/app/middleware"
	"firsttime/app/observability"
	"firsttime/app/services"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the wired services the router hands to controllers.
type Dependencies struct {
	Config     *config.Config
	Store      *services.PostStore
	Identities *services.IdentityService
	Auth       *auth.Authenticator
	Logger     *slog.Logger
	Version    string
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Dependencies) *mux.Router {
	logger := deps.Logger
	if logger == nil {
		logger = observability.Discard()
	}

	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.Metrics)
	router.Use(middleware.ContentTypeJSON)
	router.Use(deps.Auth.Middleware(deps.Identities, logger))

	postController := controllers.NewPostController(deps.Store, logger)
	commentController := controllers.NewCommentController(deps.Store, logger)
	profileController := controllers.NewProfileController(deps.Store, deps.Identities)
	systemController := controllers.NewSystemController(deps.Store, deps.Config, deps.Auth, deps.Version)
	authController := controllers.NewAuthController(deps.Auth)

	protected := func(h http.HandlerFunc) http.Handler {
		return deps.Auth.RequireAuth(h)
	}

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Auth endpoints
	router.HandleFunc("/auth/login", authController.Login).Methods("GET")
	router.HandleFunc("/auth/logout", authController.Logout).Methods("GET")
	if deps.Auth.Mock() {
		router.HandleFunc("/auth/mock-login", authController.MockLogin).Methods("POST")
	}

	// API routes
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", systemController.Status).Methods("GET")
	api.HandleFunc("/config", systemController.Config).Methods("GET")
	api.HandleFunc("/categories", systemController.Categories).Methods("GET")

	// Posts API endpoints
	posts := api.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.HandleFunc("/{id}", postController.Show).Methods("GET")
	posts.Handle("", protected(postController.Create)).Methods("POST")
	posts.Handle("/{id}", protected(postController.Delete)).Methods("DELETE")
	posts.Handle("/{id}/feature", protected(postController.ToggleFeatured)).Methods("POST")

	// Comments API endpoints
	posts.Handle("/{id}/comments", protected(commentController.Create)).Methods("POST")

	// Profile API endpoints
	api.Handle("/profile", protected(profileController.Show)).Methods("GET")
	api.Handle("/profile", protected(profileController.Update)).Methods("PUT")

	return router
}
