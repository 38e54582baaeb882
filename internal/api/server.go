package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/eink-server/eink-display-server/internal/auth"
	"github.com/eink-server/eink-display-server/internal/config"
	"github.com/eink-server/eink-display-server/internal/device"
	"github.com/eink-server/eink-display-server/internal/playlist"
	"github.com/eink-server/eink-display-server/internal/render"
	"github.com/eink-server/eink-display-server/internal/storage"
	"github.com/eink-server/eink-display-server/internal/validation"
)

// contextKey avoids collisions in request contexts.
type contextKey string

const claimsKey contextKey = "claims"

// RESTServer represents the REST API server
type RESTServer struct {
	config    *config.Config
	store     storage.Store
	gateway   *device.Gateway
	selector  *playlist.Selector
	engine    *render.Engine
	auth      *auth.JWTManager
	validator *validation.Validator
	router    chi.Router
	server    *http.Server
}

// NewRESTServer creates a new REST API server. store may be nil, in which
// case the display endpoints run in degraded "noDB" mode and the admin
// API is unavailable.
func NewRESTServer(cfg *config.Config, store storage.Store, gateway *device.Gateway, engine *render.Engine) *RESTServer {
	s := &RESTServer{
		config:    cfg,
		store:     store,
		gateway:   gateway,
		engine:    engine,
		auth:      auth.NewJWTManager(&cfg.JWT),
		validator: validation.NewValidator(),
		router:    chi.NewRouter(),
	}
	if store != nil {
		s.selector = playlist.NewSelector(store)
	}

	s.setupRoutes()

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all routes
func (s *RESTServer) setupRoutes() {
	// Middleware
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS for the management UI
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Device-facing display protocol (token in header, no JWT)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/display", s.HandleDisplay)
		r.Get("/png/{slug}", s.HandlePNG)
		r.Get("/bitmap/mixup/{id}", s.HandleMixupBitmap)
		r.Get("/bitmap/{slug}", s.HandleBitmap)
	})

	// Management API
	s.router.Route("/api/v1", func(r chi.Router) {
		s.setupAPIRoutes(r)
	})
}

// ListenAndServe starts the server
func (s *RESTServer) ListenAndServe(addr string) error {
	s.server.Addr = addr
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *RESTServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// authMiddleware is the authentication middleware for the management API
func (s *RESTServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Get token from header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.respondError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		// Parse Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.respondError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		// Validate token
		claims, err := s.auth.ValidateToken(parts[1])
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		// Add claims to context
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireStore rejects management requests while running without a database
func (s *RESTServer) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			s.respondError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// claimsFrom extracts validated claims set by authMiddleware
func (s *RESTServer) claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}
