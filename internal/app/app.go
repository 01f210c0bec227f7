package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/goldrate/config"
	"github.com/guttosm/goldrate/internal/api"
	"github.com/guttosm/goldrate/internal/metrics"
	"github.com/guttosm/goldrate/internal/quotes"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Builds the quote pipeline (client, cache, service) with NewPipeline().
//   - Creates the HTTP handler layer to handle requests.
//   - Configures the Gin router with all API routes and /metrics.
//   - Registers health and readiness probes.
//   - Starts the background cache refresher when QUOTES_REFRESH_INTERVAL > 0.
//   - Provides a cleanup function that stops the refresher and closes the client.
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
// minRequestTimeout is the floor for the per-request deadline; the cache's
// retry budget raises it when every attempt could not otherwise fit.
const minRequestTimeout = 10 * time.Second

// requestTimeout lets a request wait out a full fetch cycle.
func requestTimeout(budget time.Duration) time.Duration {
	return max(minRequestTimeout, budget+time.Second)
}

func InitializeApp() (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	p, err := NewPipeline(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize quote pipeline: %w", err)
	}

	// Initialize HTTP handler layer (service to HTTP mapping)
	handler := api.NewHandler(p.Service)

	// Setup Gin router with routes
	router := api.NewRouter(handler,
		api.WithRateLimit(cfg.Server.RateLimitPerMinute),
		api.WithRequestTimeout(requestTimeout(p.Cache.Budget())),
		api.WithMetrics(metrics.NewRegistry()),
	)

	// Register health and readiness probes
	healthHandler := api.NewHealthHandler(p.Ready)
	healthHandler.Register(router)

	// Keep the cache warm in the background
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		quotes.NewRefresher(p.Cache, p.Codes(), cfg.Quotes.RefreshInterval).Run(ctx)
	}()

	// Cleanup resources on shutdown
	cleanup := func() {
		cancel()
		<-done
		p.Close()
	}

	return router, cleanup, nil
}
