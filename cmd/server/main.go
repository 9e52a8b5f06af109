// Command main is the entry point for the social API server.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/austinzumbro/nosql-social-api/internal/bootstrap"
	"github.com/austinzumbro/nosql-social-api/internal/config"
	"github.com/austinzumbro/nosql-social-api/internal/models"
	"github.com/austinzumbro/nosql-social-api/internal/notifications"
	"github.com/austinzumbro/nosql-social-api/internal/observability"
	"github.com/austinzumbro/nosql-social-api/internal/server"

	"github.com/joho/godotenv"
)

// @title Social API
// @version 1.0
// @description Users, thoughts, reactions and friends.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Ignoring .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.Configure(cfg.Env)
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Invalid DISPLAY_TIMEZONE: %v", err)
	}
	models.SetDisplayLocation(loc)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "social-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	rt, err := bootstrap.InitRuntime(startCtx, cfg)
	cancelStart()
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	app := server.NewServer(cfg, rt).NewApp()

	eventCtx, stopEvents := context.WithCancel(context.Background())
	if err := rt.Notifier.Subscribe(eventCtx, notifications.LogEvents(observability.GlobalLogger.Logger)); err != nil {
		observability.GlobalLogger.Warn("Event log subscriber not started", slog.String("error", err.Error()))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	done := handleShutdown(sigChan, 10*time.Second, []shutdownStep{
		{name: "server", fn: app.ShutdownWithContext},
		{name: "events", fn: func(context.Context) error { stopEvents(); return nil }},
		{name: "runtime", fn: rt.Close},
		{name: "tracing", fn: shutdownTracing},
	})

	observability.GlobalLogger.Info("Server starting",
		slog.String("port", cfg.Port),
		slog.String("store", cfg.StoreDriver),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
	<-done
}

type shutdownStep struct {
	name string
	fn   func(context.Context) error
}

// handleShutdown runs steps in order once sig fires. The returned channel
// closes after the last step, so main can wait for buffered spans and
// connection closes before exiting.
func handleShutdown(sig <-chan os.Signal, timeout time.Duration, steps []shutdownStep) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-sig

		observability.GlobalLogger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		for _, step := range steps {
			if err := step.fn(ctx); err != nil {
				observability.GlobalLogger.Error("Shutdown step failed",
					slog.String("step", step.name),
					slog.String("error", err.Error()),
				)
			}
		}
	}()
	return done
}
