package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avetisk/authgate/internal/api/http/handler"
	"github.com/avetisk/authgate/internal/api/http/httpctx"
	"github.com/avetisk/authgate/internal/api/http/middleware"
	"github.com/avetisk/authgate/internal/config"
	"github.com/avetisk/authgate/internal/logger"
)

// Router wires handlers and middleware into an HTTP mux.
type Router struct {
	authHandler    *handler.AuthHandler
	sessions       middleware.SessionValidator
	contextManager *httpctx.Manager
	config         *config.Config
	registry       *prometheus.Registry
	logger         *logger.Logger
}

// New creates a new Router instance.
func New(
	authHandler *handler.AuthHandler,
	sessions middleware.SessionValidator,
	contextManager *httpctx.Manager,
	cfg *config.Config,
	registry *prometheus.Registry,
	logger *logger.Logger,
) *Router {
	return &Router{
		authHandler:    authHandler,
		sessions:       sessions,
		contextManager: contextManager,
		config:         cfg,
		registry:       registry,
		logger:         logger,
	}
}

// Register builds the full middleware chain and route tree.
//
// Auth endpoints and health live under public prefixes; the session
// endpoint sits behind the authentication gate.
func (r *Router) Register() http.Handler {
	mux := chi.NewRouter()

	logging := middleware.NewLogging(r.logger)
	metrics := middleware.NewMetrics(r.registry)
	authenticate := middleware.NewAuthenticate(
		r.sessions,
		r.contextManager,
		handler.AuthCookieName,
		r.config.HTTP.PublicPrefixes,
		r.config.HTTP.LoginPath,
		r.config.HTTP.LandingPath,
		r.logger,
	)

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	mux.Use(logging.Handler)
	mux.Use(metrics.Handler)
	mux.Use(authenticate.Handler)

	mux.Route("/api/v1/auth", func(mux chi.Router) {
		mux.Post("/send-code", r.authHandler.SendCode)
		mux.Post("/verify-code", r.authHandler.VerifyCode)
		mux.Post("/logout", r.authHandler.Logout)
		mux.Get("/health", r.authHandler.Health)
	})

	mux.Get("/api/v1/session", r.authHandler.Session)

	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))

	return mux
}
