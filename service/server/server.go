package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/brojonat/getblock-proxy/service/config"
	"github.com/brojonat/getblock-proxy/service/metrics"
	"github.com/brojonat/getblock-proxy/service/solana"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server for the getBlock proxy.
type Server struct {
	cfg     *config.Config
	fetcher solana.Fetcher
	metrics *metrics.Metrics
	logger  *slog.Logger
	server  *http.Server
}

// New creates a new HTTP server with the given dependencies.
// The metrics is optional - if nil, the /metrics endpoint is not served.
func New(cfg *config.Config, fetcher solana.Fetcher, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		fetcher: fetcher,
		metrics: m,
		logger:  logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /{$}", metrics.HTTPMetricsMiddleware(s.metrics, "get_block")(
		handleGetBlock(s.fetcher, s.metrics, s.logger),
	))

	mux.Handle("GET /health", metrics.HTTPMetricsMiddleware(s.metrics, "health")(
		handleHealth(),
	))

	// Prometheus metrics endpoint (if metrics collector is configured)
	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	return mux
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:        s.cfg.ListenAddr(),
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
		// Leave room for the upstream call on top of writing the response.
		WriteTimeout: s.cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP server",
		"addr", s.server.Addr,
		"upstream", s.cfg.UpstreamURL,
		"upstream_timeout", s.cfg.UpstreamTimeout,
	)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
