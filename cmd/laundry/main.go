package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/raaihank/data-laundry/internal/api"
	"github.com/raaihank/data-laundry/internal/cache"
	"github.com/raaihank/data-laundry/internal/config"
	"github.com/raaihank/data-laundry/internal/logger"
	"github.com/raaihank/data-laundry/internal/store"
)

var (
	version = api.Version
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		port        = flag.Int("port", 0, "Override the listen port")
		showVersion = flag.Bool("version", false, "Show version information")
		healthCheck = flag.Bool("health-check", false, "Perform health check and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("data-laundry %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	if *healthCheck {
		performHealthCheck(cfg.Server.Port)
		return
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting data-laundry",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_date", date),
		zap.Int("port", cfg.Server.Port),
	)

	deps := initializeDeps(cfg, log)
	defer deps.close(log)

	server, err := api.New(cfg, log, api.Deps{Cache: deps.cache, Store: deps.store})
	if err != nil {
		log.Fatal("Failed to create API server", zap.Error(err))
	}

	// The log level and privacy detectors apply live; everything else needs a restart.
	if err := config.Watch(cfg, func(next *config.Config) {
		if err := log.SetLevel(next.Logging.Level); err != nil {
			log.Warn("Ignoring invalid log level", zap.String("level", next.Logging.Level))
		}
		if err := server.Reload(next); err != nil {
			log.Warn("Configuration reload incomplete", zap.Error(err))
			return
		}
		log.Info("Configuration reloaded", zap.String("log_level", next.Logging.Level))
	}); err != nil {
		log.Warn("Config watching disabled", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		serverErrors <- server.Start(ctx)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Error("Server error", zap.Error(err))
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Give running cleaning jobs 30 seconds to finish
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Stop(shutdownCtx); err != nil {
			log.Error("Failed to shutdown server gracefully", zap.Error(err))
		}
		cancel()

		log.Info("Server shutdown complete")
	}
}

// deps holds the optional backing services
type deps struct {
	store *store.Store
	cache *cache.ResultCache
}

// initializeDeps connects the optional services. A failing backend is logged
// and skipped so the engine keeps serving without it.
func initializeDeps(cfg *config.Config, log *logger.Logger) *deps {
	d := &deps{}

	if cfg.Database.Enabled {
		s, err := store.NewStore(cfg.Database, log.WithComponent("store").Logger)
		if err != nil {
			log.Warn("Preset store unavailable, continuing without it", zap.Error(err))
		} else {
			d.store = s
		}
	}

	if cfg.Cache.Enabled {
		c, err := cache.NewResultCache(cfg.Cache, log.WithComponent("cache").Logger)
		if err != nil {
			log.Warn("Result cache unavailable, continuing without it", zap.Error(err))
		} else {
			d.cache = c
		}
	}

	return d
}

func (d *deps) close(log *logger.Logger) {
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			log.Warn("Failed to close preset store", zap.Error(err))
		}
	}
	if d.cache != nil {
		if err := d.cache.Close(); err != nil {
			log.Warn("Failed to close result cache", zap.Error(err))
		}
	}
}

// performHealthCheck performs a health check against the running server
func performHealthCheck(port int) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get(fmt.Sprintf("http://localhost:%d/health", port))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: HTTP %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("Health check passed")
	os.Exit(0)
}
