package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/goldrate/internal/middleware"
)

const (
	defaultRateLimit      = 60
	defaultRequestTimeout = 10 * time.Second
)

type routerOptions struct {
	rateLimit int
	timeout   time.Duration
	gatherer  prometheus.Gatherer
}

// RouterOption is a configuration option for NewRouter.
type RouterOption func(*routerOptions)

// WithRateLimit sets the allowed requests per client IP per minute.
func WithRateLimit(perMinute int) RouterOption {
	return func(o *routerOptions) {
		if perMinute > 0 {
			o.rateLimit = perMinute
		}
	}
}

// WithRequestTimeout bounds the context of every request.
func WithRequestTimeout(d time.Duration) RouterOption {
	return func(o *routerOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMetrics exposes g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) RouterOption {
	return func(o *routerOptions) {
		o.gatherer = g
	}
}

// NewRouter creates a Gin engine with routes configured.
// It receives a Handler instance with all business logic already injected.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Logger, Recovery, ErrorHandler, Metrics, RateLimiter).
//   - Adds request timeout handling (10 seconds by default).
//   - Mounts Swagger docs (/swagger/*any) and, when configured, /metrics.
//   - Configures API v1 routes (/api/v1).
//
// Note:
//   - Health and readiness endpoints (/healthz, /readyz) are registered in app.InitializeApp().
func NewRouter(handler *Handler, options ...RouterOption) *gin.Engine {
	opts := routerOptions{rateLimit: defaultRateLimit, timeout: defaultRequestTimeout}
	for _, option := range options {
		option(&opts)
	}

	router := gin.New()

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.Metrics(),
		middleware.RateLimiter(opts.rateLimit, time.Minute),
	)

	// ─── Timeout ──────────────────────────────────
	timeout := opts.timeout
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// ─── Swagger ──────────────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ─── Metrics ──────────────────────────────────
	if opts.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.gatherer, promhttp.HandlerOpts{})))
	}

	// ─── API v1 ───────────────────────────────────
	v1 := router.Group("/api/v1")
	{
		v1.GET("/quotes", handler.GetQuotes)
		v1.GET("/quotes/summary", handler.GetSummary)
		v1.GET("/instruments", handler.ListInstruments)
	}

	return router
}
