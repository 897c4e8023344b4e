package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brojonat/getblock-proxy/service/config"
	"github.com/brojonat/getblock-proxy/service/metrics"
	"github.com/brojonat/getblock-proxy/service/server"
	"github.com/brojonat/getblock-proxy/service/solana"
	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "getblock-proxy",
		Usage:   "solana getBlock proxy",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Description: `Forwards getBlock JSON-RPC requests to a Solana node and returns the block
with only the transactions that moved a SOL or token balance.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Aliases:  []string{"a"},
				Usage:    "IP address to listen on",
				Required: true,
			},
			&cli.UintFlag{
				Name:     "port",
				Aliases:  []string{"p"},
				Usage:    "TCP port to listen on",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "upstream-url",
				Usage:   "Solana JSON-RPC endpoint getBlock requests are forwarded to",
				EnvVars: []string{"GETBLOCK_UPSTREAM_URL"},
				Value:   config.DefaultUpstreamURL,
			},
			&cli.DurationFlag{
				Name:    "upstream-timeout",
				Usage:   "Deadline for a single upstream call",
				EnvVars: []string{"GETBLOCK_UPSTREAM_TIMEOUT"},
				Value:   config.DefaultUpstreamTimeout,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   config.DefaultLogLevel,
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	// Fails fast on any invalid startup parameter
	cfg, err := config.New(config.Params{
		Address:         c.String("address"),
		Port:            c.Uint("port"),
		UpstreamURL:     c.String("upstream-url"),
		UpstreamTimeout: c.Duration("upstream-timeout"),
		LogLevel:        c.String("log-level"),
	})
	if err != nil {
		cli.ShowAppHelp(c)
		return cli.Exit(fmt.Sprintf("invalid arguments: %v", err), 2)
	}

	logger := setupLogger(cfg.LogLevel)
	logger.Info("starting server",
		"addr", cfg.ListenAddr(),
		"log_level", cfg.LogLevel,
		"version", version,
	)

	m := metrics.NewMetrics(nil)
	fetcher := solana.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout, m, logger)
	httpServer := server.New(cfg, fetcher, m, logger)

	// Start HTTP server in background
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.Start()
	}()

	// Wait for shutdown signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", "error", err)
		return cli.Exit(err, 1)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown server gracefully", "error", err)
			return cli.Exit(err, 1)
		}

		logger.Info("server shutdown complete")
	}
	return nil
}

// setupLogger creates a structured logger with the given log level.
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
