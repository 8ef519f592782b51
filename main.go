package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/focus-guild/pomo-bot/app"
	"github.com/focus-guild/pomo-bot/app/platform"
	"github.com/focus-guild/pomo-bot/config"
	"github.com/focus-guild/pomo-bot/internal/observability"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	obs := observability.New(observability.Config{
		Environment: cfg.Observability.Environment,
		LogLevel:    cfg.Observability.LogLevel,
	})

	// The chat adapter runs as its own deployment and feeds the event
	// bus; this binary runs the core, so outbound platform calls stay
	// disconnected unless an adapter is attached here.
	application, err := app.NewApp(cfg, platform.Disconnected{}, obs)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs.Logger.Info("Starting pomo-bot core")
	if err := application.Run(ctx); err != nil {
		obs.Logger.Error("Application failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := application.Close(shutdownCtx); err != nil {
		obs.Logger.Error("Shutdown incomplete", "error", err)
		os.Exit(1)
	}
	obs.Logger.Info("Application shut down gracefully")
}
