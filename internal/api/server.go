// Package api exposes the Inkpost services over HTTP.
//
// JSON operations are huma operations on a chi router. Multipart upload and
// binary image delivery are plain chi handlers. Every JSON body, success or
// error, is wrapped in the versioned envelope by EnvelopeTransformer.
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

	"github.com/inkpost/inkpost-server/internal/metrics"
	"github.com/inkpost/inkpost-server/internal/ratelimit"
	"github.com/inkpost/inkpost-server/internal/store"
)

// Config holds HTTP-facing settings.
type Config struct {
	Version       string
	CORSOrigins   []string
	MaxImageBytes int64
}

// Server routes HTTP requests to the services.
type Server struct {
	store       store.Store
	services    *Services
	metrics     *metrics.Metrics
	router      *chi.Mux
	api         huma.API
	logger      *slog.Logger
	authLimiter *ratelimit.KeyedRateLimiter
	config      Config
}

// NewServer builds the router and registers every route. metrics and
// authLimiter may be nil.
func NewServer(
	st store.Store,
	services *Services,
	m *metrics.Metrics,
	authLimiter *ratelimit.KeyedRateLimiter,
	cfg Config,
	logger *slog.Logger,
) *Server {
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(accessLog(logger))
	router.Use(middleware.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	router.Use(m.Middleware)

	humaConfig := huma.DefaultConfig("Inkpost API", cfg.Version)
	humaConfig.Info.Description = "Blog backend: posts, tags, sections, comments, replies and likes."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	// Envelope bodies carry no $schema links.
	humaConfig.CreateHooks = nil

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:       st,
		services:    services,
		metrics:     m,
		router:      router,
		api:         api,
		logger:      logger,
		authLimiter: authLimiter,
		config:      cfg,
	}

	s.registerHealthRoutes()
	s.registerUserRoutes()
	s.registerPostRoutes()
	s.registerTagRoutes()
	s.registerSectionRoutes()
	s.registerCommentRoutes()
	s.registerReplyRoutes()
	if m != nil {
		router.Handle("/metrics", m.Handler())
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// accessLog logs one line per request once the response is written.
func accessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
