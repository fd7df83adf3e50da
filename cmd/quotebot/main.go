// Package main is the entry point for the quote bot.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quotebot/internal/adapters/chat"
	"github.com/jsamuelsen/quotebot/internal/adapters/chat/handlers"
	chatmw "github.com/jsamuelsen/quotebot/internal/adapters/chat/middleware"
	"github.com/jsamuelsen/quotebot/internal/adapters/clients"
	"github.com/jsamuelsen/quotebot/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotebot/internal/adapters/http"
	httphandlers "github.com/jsamuelsen/quotebot/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotebot/internal/adapters/storage/jsonfile"
	"github.com/jsamuelsen/quotebot/internal/app"
	"github.com/jsamuelsen/quotebot/internal/platform/config"
	"github.com/jsamuelsen/quotebot/internal/platform/logging"
	"github.com/jsamuelsen/quotebot/internal/platform/telemetry"
	"github.com/jsamuelsen/quotebot/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		slog.Error("quotebot stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting quotebot",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("store", cfg.Store.Path),
		slog.Bool("owner_configured", cfg.Bot.OwnerID != 0),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := telProvider.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	healthRegistry := ports.NewHealthRegistry()

	store := jsonfile.New(cfg.Store.Path, logger)
	if err := healthRegistry.Register(store); err != nil {
		return fmt.Errorf("registering store health check: %w", err)
	}

	quoteService := app.NewQuoteService(app.QuoteServiceConfig{
		Store:  store,
		Logger: logger,
	})

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Bot.BaseURL(),
		ServiceName: acl.TelegramServiceName,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating bot API client: %w", err)
	}

	telegram := acl.NewTelegramClient(acl.TelegramClientConfig{
		Client: httpClient,
		Logger: logger,
	})
	if err := healthRegistry.Register(telegram); err != nil {
		return fmt.Errorf("registering telegram health check: %w", err)
	}

	logger.Debug("readiness checks registered", slog.Any("checks", healthRegistry.Names()))

	router, err := newCommandRouter(cfg, telegram, quoteService, registry, logger)
	if err != nil {
		return err
	}

	// Without the bot's own name "/cmd@name" cannot be filtered, so every
	// addressed command is accepted until the next restart.
	if name, err := telegram.Identity(ctx); err != nil {
		logger.Warn("could not resolve bot username", slog.Any("error", err))
	} else {
		router.SetBotName(name)
		logger.Info("bot identity resolved", slog.String("username", name))
	}

	poller := chat.NewPoller(chat.PollerConfig{
		Transport:  telegram,
		Dispatcher: router,
		Timeout:    cfg.Bot.PollTimeout,
		Backoff:    cfg.Bot.PollBackoff,
		Logger:     logger,
	})

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:      logger,
		ServiceName: cfg.App.Name,
		HealthHandler: httphandlers.NewHealthHandler(
			healthRegistry,
			httphandlers.NewBuildInfo(cfg.App.Name, Version, Commit, BuildTime),
			registry,
		),
		QuoteHandler: httphandlers.NewQuoteHandler(quoteService),
		Timeout:      http.DefaultRequestTimeout,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return poller.Run(gctx) })
	g.Go(func() error { return server.Run(gctx) })

	err = g.Wait()

	logger.Info("shutdown complete", slog.Int64("next_update_id", poller.Offset()))

	return err
}

// newCommandRouter builds the chat router with its middleware chain and
// registers every bot command.
func newCommandRouter(
	cfg *config.Config,
	transport ports.ChatTransport,
	service *app.QuoteService,
	reg prometheus.Registerer,
	logger *slog.Logger,
) (*chat.Router, error) {
	metrics, err := chatmw.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("registering command metrics: %w", err)
	}

	router := chat.NewRouter(chat.RouterConfig{
		Transport: transport,
		Logger:    logger,
	})

	// Recovery is innermost so logging and metrics see the converted panic.
	router.Use(
		chatmw.CorrelationID(),
		chatmw.Tracing(),
		chatmw.Logging(),
		metrics.Middleware(),
		chatmw.Recovery(),
	)

	handlers.New(service).Register(router, chatmw.OwnerOnly(cfg.Bot.OwnerID))

	return router, nil
}
