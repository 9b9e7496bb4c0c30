package rest

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"flowcanvas/application/commands"
	"flowcanvas/application/commands/bus"
	"flowcanvas/application/ports"
	querybus "flowcanvas/application/queries/bus"
	"flowcanvas/application/services"
	"flowcanvas/infrastructure/config"
	"flowcanvas/infrastructure/logwatch"
	"flowcanvas/interfaces/http/rest/handlers"
	"flowcanvas/interfaces/http/rest/middleware"
	v1 "flowcanvas/interfaces/http/rest/v1"
	"flowcanvas/pkg/auth"
	pkgerrors "flowcanvas/pkg/errors"
)

// Deps carries everything the HTTP surface needs from the composition
// root. JWTValidator may be nil when authentication is disabled.
type Deps struct {
	Config         *config.Config
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	Canvases       *commands.CanvasHandler
	Gestures       *services.GestureService
	Store          ports.CanvasStore
	LogStore       *logwatch.Store
	GestureLimiter *auth.GestureRateLimiter
	JWTValidator   *auth.JWTValidator
	Logger         *zap.Logger
}

// Router builds the HTTP handler tree
type Router struct {
	deps    Deps
	errs    *pkgerrors.ErrorHandler
	limiter *auth.TokenBucketLimiter
}

// NewRouter creates a new router instance
func NewRouter(deps Deps) *Router {
	rt := &Router{
		deps: deps,
		errs: pkgerrors.NewErrorHandler(deps.Logger, deps.Config.IsDevelopment()),
	}
	if deps.Config.RateLimitPerMinute > 0 {
		perSec := float64(deps.Config.RateLimitPerMinute) / 60
		rt.limiter = auth.NewTokenBucketLimiter(deps.Config.RateLimitPerMinute, perSec)
	}
	return rt
}

// Close stops the request rate limiter
func (rt *Router) Close() {
	if rt.limiter != nil {
		rt.limiter.Stop()
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.deps.Logger))
	router.Use(versionMiddleware)

	if rt.deps.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.deps.Config.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// Legacy read-only API for the pre-rewrite frontend
	router.Mount("/api/v1", v1.NewRouter(rt.deps.QueryBus, rt.deps.Store, rt.deps.Logger))

	canvasHandler := handlers.NewCanvasHandler(rt.deps.CommandBus, rt.deps.QueryBus, rt.deps.Canvases, rt.deps.Store, rt.errs, rt.deps.Logger)
	nodeHandler := handlers.NewNodeHandler(rt.deps.CommandBus, rt.deps.QueryBus, rt.errs, rt.deps.Logger)
	connectorHandler := handlers.NewConnectorHandler(rt.deps.CommandBus, rt.deps.QueryBus, rt.errs, rt.deps.Logger)
	historyHandler := handlers.NewHistoryHandler(rt.deps.CommandBus, rt.deps.QueryBus, rt.errs, rt.deps.Logger)
	gestureHandler := handlers.NewGestureHandler(rt.deps.Gestures, rt.deps.GestureLimiter, rt.errs, rt.deps.Logger)
	overlayHandler := handlers.NewOverlayHandler(rt.deps.CommandBus, rt.deps.QueryBus, rt.errs, rt.deps.Logger)
	logsHandler := handlers.NewLogsHandler(rt.deps.CommandBus, rt.deps.QueryBus, rt.deps.LogStore, rt.errs, rt.deps.Logger)

	router.Route("/api/v2", func(r chi.Router) {
		if rt.deps.Config.AuthEnabled {
			r.Use(middleware.Authenticate(rt.deps.JWTValidator, rt.deps.Logger))
		}
		if rt.limiter != nil {
			r.Use(middleware.RateLimit(rt.limiter, rt.deps.Logger))
		}

		r.Get("/logs", logsHandler.List)

		r.Route("/canvases", func(r chi.Router) {
			r.Post("/", canvasHandler.Create)
			r.Get("/", canvasHandler.List)

			r.Route("/{canvasID}", func(r chi.Router) {
				r.Get("/", canvasHandler.Get)
				r.Patch("/", canvasHandler.Update)
				r.Delete("/", canvasHandler.Delete)
				r.Post("/import", canvasHandler.Import)
				r.Get("/export", canvasHandler.Export)
				r.Post("/selection", canvasHandler.UpdateSelection)
				r.Get("/hit-test", canvasHandler.HitTest)

				r.Route("/nodes", func(r chi.Router) {
					r.Post("/", nodeHandler.Create)
					r.Get("/{nodeID}", nodeHandler.Get)
					r.Patch("/{nodeID}", nodeHandler.Update)
					r.Delete("/{nodeID}", nodeHandler.Delete)
					r.Post("/{nodeID}/rename", nodeHandler.Rename)
				})

				r.Route("/connectors", func(r chi.Router) {
					r.Get("/", connectorHandler.List)
					r.Post("/", connectorHandler.Create)
					r.Patch("/{connectorID}", connectorHandler.Update)
					r.Delete("/{connectorID}", connectorHandler.Delete)
					r.Post("/{connectorID}/rename", connectorHandler.Rename)
				})

				r.Route("/history", func(r chi.Router) {
					r.Get("/", historyHandler.Status)
					r.Post("/undo", historyHandler.Undo)
					r.Post("/redo", historyHandler.Redo)
				})

				r.Route("/gestures/{kind}", func(r chi.Router) {
					r.Post("/start", gestureHandler.Start)
					r.Post("/move", gestureHandler.Move)
					r.Post("/end", gestureHandler.End)
					r.Post("/cancel", gestureHandler.Cancel)
				})

				r.Route("/overlays", func(r chi.Router) {
					r.Get("/", overlayHandler.Get)
					r.Post("/apply", overlayHandler.Apply)
					r.Delete("/", overlayHandler.Clear)
				})

				r.Post("/logs/{index}/replay", logsHandler.Replay)
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports whether the canvas store answers
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if _, err := rt.deps.Store.List(req.Context()); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}

// versionMiddleware adds API version headers to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version := "v2"
		if strings.HasPrefix(r.URL.Path, "/api/v1") {
			version = "v1"
		}

		w.Header().Set("X-API-Version", version)
		w.Header().Set("X-API-Latest", "v2")
		if version == "v1" {
			w.Header().Set("X-API-Deprecated", "true")
		} else {
			w.Header().Set("X-API-Deprecated", "false")
		}

		next.ServeHTTP(w, r)
	})
}
