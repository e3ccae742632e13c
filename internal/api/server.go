// Package api provides the HTTP API server and handlers for OpenMusic.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/openmusic/openmusic-server/internal/http/response"
	"github.com/openmusic/openmusic-server/internal/metrics"
	"github.com/openmusic/openmusic-server/internal/store"
)

// Options configures optional server behavior.
type Options struct {
	// CORSAllowedOrigins defaults to all origins.
	CORSAllowedOrigins []string
	// AuthRatePerMinute and AuthBurst limit login and token refresh per client IP.
	// Zero disables the limit.
	AuthRatePerMinute int
	AuthBurst         int
	// Metrics records request timings when set.
	Metrics *metrics.Collector
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
	// Checks are extra health probes keyed by component name.
	Checks map[string]HealthCheck
	// AccessLog enables chi's request logger.
	AccessLog bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	router          *chi.Mux
	api             huma.API
	metrics         *metrics.Collector
	checks          map[string]HealthCheck
	logger          *slog.Logger
	authRateLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:    st,
		services: services,
		router:   chi.NewRouter(),
		metrics:  opts.Metrics,
		checks:   opts.Checks,
		logger:   logger,
	}
	if opts.AuthRatePerMinute > 0 {
		burst := opts.AuthBurst
		if burst <= 0 {
			burst = opts.AuthRatePerMinute
		}
		s.authRateLimiter = NewRateLimiter(opts.AuthRatePerMinute, time.Minute, burst)
	}

	s.setupMiddleware(opts)
	s.api = newHumaAPI(s.router, logger)
	s.setupRoutes(opts)

	return s
}

// newHumaAPI builds the huma API on router with the bearer scheme and envelope.
func newHumaAPI(router chi.Router, logger *slog.Logger) huma.API {
	humaConfig := huma.DefaultConfig("OpenMusic API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler(logger)
	return api
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI generation.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.authRateLimiter != nil {
		s.authRateLimiter.Stop()
	}
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	if opts.AccessLog {
		s.router.Use(middleware.Logger)
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Data-Source"},
		MaxAge:         300,
	}))
	s.router.Use(s.observeRequests)
	if s.services != nil && s.services.Auth != nil {
		s.router.Use(authMiddleware(s.services.Auth))
	}
}

// observeRequests records request duration by route pattern.
func (s *Server) observeRequests(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveRequest(r.Method, route, status, time.Since(start))
	})
}

// setupRoutes registers huma operations and the raw routes huma does not cover.
func (s *Server) setupRoutes(opts Options) {
	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Resource is not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})

	s.registerHealthRoutes()
	s.registerAlbumRoutes()
	s.registerSongRoutes()
	s.registerUserRoutes()
	s.registerAuthenticationRoutes()
	s.registerPlaylistRoutes()
	s.registerCollaborationRoutes()
	s.registerExportRoutes()

	// Multipart uploads and binary downloads bypass huma.
	s.router.Post(APIPrefix+"/albums/{id}/covers", s.handleUploadCover)
	s.router.Get(APIPrefix+"/albums/covers/{file}", s.handleServeCover)

	if opts.MetricsHandler != nil {
		s.router.Handle("/metrics", opts.MetricsHandler)
	}
}

// authenticated is the security requirement for bearer-protected operations.
var authenticated = []map[string][]string{{"bearer": {}}}
