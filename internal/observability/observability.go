// Package observability bundles the logger, tracer, and metrics handed to
// every module at wiring time.
package observability

import (
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Observability is the shared handle injected into services.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Metrics  *Metrics
	Registry *prometheus.Registry
}

// Config controls logger construction.
type Config struct {
	Environment string // "development" enables text output
	LogLevel    string // debug|info|warn|error
}

// New builds the production observability handle. The tracer comes from
// the global otel provider, so it stays a noop unless an exporter is
// installed by the deployment.
func New(cfg Config) *Observability {
	registry := prometheus.NewRegistry()

	level := parseLevel(cfg.LogLevel)
	var handler slog.Handler
	if cfg.Environment == "development" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return &Observability{
		Logger:   slog.New(handler),
		Tracer:   otel.Tracer("pomo-bot"),
		Metrics:  NewMetrics(registry),
		Registry: registry,
	}
}

// NewForTests returns a silent observability handle for unit tests.
func NewForTests() *Observability {
	registry := prometheus.NewRegistry()
	return &Observability{
		Logger:   slog.New(slog.DiscardHandler),
		Tracer:   noop.NewTracerProvider().Tracer("test"),
		Metrics:  NewMetrics(registry),
		Registry: registry,
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
