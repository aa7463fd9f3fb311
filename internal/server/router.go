package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mihaimyh/badgeapi/pkg/api"
)

const bannerText = "Discord Badge API is running. Use /user/:id"

// RouterConfig holds what NewRouter needs to mount the routes.
type RouterConfig struct {
	// Handler serves the user routes (required)
	Handler *api.Handler

	// Gatherer backs GET /metrics. If nil, /metrics is not mounted.
	Gatherer prometheus.Gatherer

	// Logger writes one access log line per request
	Logger zerolog.Logger

	// CORSOrigins lists allowed origins (default: any)
	CORSOrigins []string

	// Healthy reports readiness for GET /health (default: always healthy)
	Healthy func() bool
}

// NewRouter builds the chi router with the global middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	healthy := cfg.Healthy
	if healthy == nil {
		healthy = func() bool { return true }
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(bannerText))
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if !healthy() {
			_ = api.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
			return
		}
		_ = api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/user/{id}", cfg.Handler.GetUser)
	r.Get("/user/{id}/nitro", cfg.Handler.GetNitro)
	r.Get("/user/{id}/booster", cfg.Handler.GetBooster)

	return r
}

// accessLog logs method, path, status, size and latency through zerolog.
func accessLog(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				event := logger.Info()
				if status >= http.StatusInternalServerError {
					event = logger.Warn()
				}
				event.
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote", r.RemoteAddr).
					Int("status", status).
					Int("bytes", ww.BytesWritten()).
					Dur("latency", time.Since(start)).
					Msg("request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
