// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/sprout/internal/api"
	"github.com/starford/sprout/internal/enrich"
	"github.com/starford/sprout/internal/gardenservice"
	"github.com/starford/sprout/internal/gemini"
	"github.com/starford/sprout/internal/inaturalist"
	"github.com/starford/sprout/internal/kvstore"
	"github.com/starford/sprout/internal/mcpserver"
	"github.com/starford/sprout/internal/plantstore"
	"github.com/starford/sprout/internal/profile"
	"github.com/starford/sprout/internal/recommend"
	"github.com/starford/sprout/internal/sse"
)

// components are the long-lived pieces shared by both transports.
type components struct {
	kv     kvstore.Store
	plants *plantstore.Store
	svc    *gardenservice.Service
	logger *slog.Logger
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) newLogger(fallback io.Writer) *slog.Logger {
	out := a.logOutput
	if out == nil {
		out = fallback
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// build opens storage and wires the recommendation pipeline.
func (a *application) build(ctx context.Context, logger *slog.Logger) (*components, error) {
	cfg := a.config

	if cfg.Storage.Driver != kvstore.DriverFS {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	kv, err := kvstore.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	plants, err := plantstore.Load(ctx, kv, logger)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("load saved plants: %w", err)
	}

	gen := a.generator
	if gen == nil {
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			BaseURL: cfg.Gemini.BaseURL,
		})
		if err != nil {
			kv.Close()
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		gen = client
	}

	photoCfg := inaturalist.DefaultConfig()
	photoCfg.BaseURL = cfg.Photos.BaseURL
	photoCfg.Timeout = cfg.Photos.Timeout
	photoCfg.CacheTTL = cfg.Photos.CacheTTL
	photos := inaturalist.New(photoCfg, logger)

	enricher := enrich.New(photos, logger, enrich.WithConcurrency(cfg.Photos.Concurrency))
	rec := recommend.NewService(gen, enricher, logger)
	svc := gardenservice.New(plants, profile.NewStore(kv, logger), rec, cfg.Search.CacheTTL, logger)

	logger.Info("Storage opened",
		slog.String("driver", cfg.Storage.Driver),
		slog.String("path", cfg.Storage.Path),
		slog.Int("saved_plants", plants.Len()))

	return &components{kv: kv, plants: plants, svc: svc, logger: logger}, nil
}

// watch reloads the saved plants when the fs driver's files change on disk.
// It returns immediately for other drivers.
func (c *components) watch(ctx context.Context) error {
	fs, ok := c.kv.(*kvstore.FS)
	if !ok {
		return nil
	}
	return kvstore.Watch(ctx, fs, c.logger, func(kind, key string) {
		if key != kvstore.KeySavedPlants {
			return
		}
		changed, err := c.plants.Reload(ctx)
		if err != nil {
			c.logger.Warn("reload saved plants failed", slog.String("error", err.Error()))
			return
		}
		if changed {
			c.logger.Info("saved plants reloaded",
				slog.String("change", kind),
				slog.Int("saved_plants", c.plants.Len()))
		}
	})
}

func (c *components) newHandler(broker *sse.Broker, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, _, err := c.kv.Get(req.Context(), kvstore.KeyHasCompletedForm); err != nil {
			c.logger.Warn("readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(c.svc, broker, c.logger))
	return r
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.newLogger(os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("gemini_model", cfg.Gemini.Model),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := app.build(ctx, logger)
	if err != nil {
		return err
	}
	defer c.kv.Close()

	broker := sse.NewBroker(sse.DefaultReplay)
	defer broker.Close()
	c.plants.OnChange(broker.PublishPlantEvent)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: c.newHandler(broker, cfg.App.HTTP.CORSOrigins),
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := c.watch(gCtx); err != nil {
			logger.Warn("watcher disabled", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// SSE streams only end once the broker closes.
		broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown stops the errgroup so the watcher exits with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio until stdin closes or ctx ends.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	// stdout carries the protocol.
	logger := app.newLogger(os.Stderr)

	c, err := app.build(ctx, logger)
	if err != nil {
		return err
	}
	defer c.kv.Close()

	srv := mcpserver.New(c.svc, app.version)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := c.watch(gCtx); err != nil {
			logger.Warn("watcher disabled", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		defer cancel()
		logger.Info("MCP server starting", slog.String("version", app.version))
		if err := srv.ServeStdio(); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("MCP server stopped")
	return nil
}
