// # cmd/wavetrace/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wavetrace/internal/app"
	"wavetrace/internal/config"
	"wavetrace/internal/shared/observability"
	"wavetrace/internal/watcher"
)

var (
	configPath = flag.String("config", "./wavetrace.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run single scan and exit")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("wavetrace v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./wavetrace.toml" {
			cfg, err = config.Load("./wavetrace.example.toml")
		}
		if err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	if flag.NArg() > 0 {
		cfg.SampleDirs = flag.Args()
	}

	ctx := context.Background()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Observability.OTLPEndpoint, VERSION)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	var obsServer *observability.Server
	if cfg.Observability.Addr != "" {
		obsServer = observability.NewServer(cfg.Observability.Addr)
		if err := obsServer.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			os.Exit(1)
		}
	}

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	// Initial scan
	if err := a.RunScan(ctx); err != nil {
		slog.Error("scan failed", "error", err)
		os.Exit(1)
	}

	if *once || !cfg.Watch.Enabled {
		stopServer(obsServer)
		return
	}

	w, err := watcher.NewWatcher(cfg.Watch.Debounce, cfg.Watch.ExcludeDirs, cfg.Watch.ExcludeFiles, func(changed []string) {
		a.Rescan(ctx, changed)
	})
	if err != nil {
		slog.Error("failed to create watcher", "error", err)
		os.Exit(1)
	}
	defer w.Close()

	if err := w.Watch(cfg.SampleDirs); err != nil {
		slog.Error("failed to watch sample directories", "error", err)
		os.Exit(1)
	}
	slog.Info("watching for changes", "dirs", cfg.SampleDirs)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	slog.Info("shutting down")
	stopServer(obsServer)
}

func stopServer(s *observability.Server) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		slog.Warn("observability server shutdown failed", "error", err)
	}
}
