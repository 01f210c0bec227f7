package main

//
//  @title           goldrate API
//  @version         1.0
//  @description     Gold and silver price feed: cached, retried upstream quotes.
//  @termsOfService  https://github.com/guttosm/goldrate
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/goldrate
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        quotes
//  @tag.description Gold and silver quotes from the upstream feed
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/guttosm/goldrate/config"
	_ "github.com/guttosm/goldrate/docs" // swagger docs
	"github.com/guttosm/goldrate/internal/app"
	"github.com/guttosm/goldrate/internal/domain/models"
	"github.com/guttosm/goldrate/internal/format"
	"github.com/guttosm/goldrate/internal/logger"
	"github.com/guttosm/goldrate/internal/quotes"
	"github.com/guttosm/goldrate/internal/service"
)

const defaultWatchInterval = time.Minute

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback (stops the refresher, closes the upstream client).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// parseNames splits a comma separated --names value.
func parseNames(s string) []string {
	var out []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// newSink picks the output sink for the CLI modes.
func newSink(w io.Writer, rich bool) format.Sink {
	if rich {
		return format.MarkdownWriterSink{WriterSink: format.WriterSink{W: w}}
	}
	return format.WriterSink{W: w}
}

// runOnce fetches the quotes for names once and delivers them to sink.
// It returns the number of unavailable quotes.
func runOnce(ctx context.Context, svc service.QuoteService, names []string, sink format.Sink) (int, error) {
	qs := svc.Quotes(ctx, names)
	unavailable := 0
	for _, q := range qs {
		if !q.Available() {
			unavailable++
		}
	}
	return unavailable, format.Deliver(sink, qs)
}

// runWatch re-delivers the quotes for names on every interval until ctx is
// done. The refresher warms exactly the cache entry runOnce reads, so each
// delivery costs at most one upstream fetch.
func runWatch(ctx context.Context, cache *quotes.Cache, svc service.QuoteService, names []string, interval time.Duration, sink format.Sink) {
	r := quotes.NewRefresher(cache, svc.Codes(names), interval)
	r.OnRefresh = func(models.Feed, error) {
		if _, err := runOnce(ctx, svc, names, sink); err != nil {
			logger.L().Error().Err(err).Msg("deliver failed")
		}
	}
	r.Run(ctx)
}

// main is the entry point of the goldrate application.
//
// Modes (selected via --mode flag):
//   - api:   Starts the REST API exposing quotes, summaries and metrics.
//   - once:  Prints the summary of the requested instruments and exits.
//   - watch: Prints the summary on every --interval until interrupted.
//
// Flags:
//   - --mode:     Execution mode ("api", "once" or "watch"). Default: "api".
//   - --names:    Comma separated instrument names or codes. Default: all configured.
//   - --rich:     Print Markdown instead of plain text (once/watch).
//   - --interval: Refresh period for watch mode. Defaults to QUOTES_REFRESH_INTERVAL, or 1m.
//   - --port:     Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	// Initialize JSON logger
	logger.Init()

	// Load configuration from environment or .env file
	config.LoadConfig()

	watchDefault := config.AppConfig.Quotes.RefreshInterval
	if watchDefault <= 0 {
		watchDefault = defaultWatchInterval
	}

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "api", "Mode: api, once or watch")
	names := flag.String("names", "", "Comma separated instrument names (default: all)")
	rich := flag.Bool("rich", false, "Print Markdown instead of plain text")
	interval := flag.Duration("interval", watchDefault, "Refresh interval for watch mode")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "once":
		p, err := app.NewPipeline(config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("pipeline init error")
		}
		defer p.Close()

		unavailable, err := runOnce(ctx, p.Service, parseNames(*names), newSink(os.Stdout, *rich))
		if err != nil {
			logger.L().Fatal().Err(err).Msg("deliver failed")
		}
		if unavailable > 0 {
			logger.L().Warn().Int("unavailable", unavailable).Msg("some quotes are unavailable")
		}

	case "watch":
		if *interval <= 0 {
			logger.L().Fatal().Dur("interval", *interval).Msg("watch interval must be positive")
		}
		p, err := app.NewPipeline(config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("pipeline init error")
		}
		defer p.Close()

		watchCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		runWatch(watchCtx, p.Cache, p.Service, parseNames(*names), *interval, newSink(os.Stdout, *rich))

	case "api":
		// API mode: start the HTTP server
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
