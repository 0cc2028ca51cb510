// Package control wires the application together: durable store selection,
// cache, resolver, and HTTP server lifecycle.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pressly/goose/v3"

	"github.com/vietddude/taxocache/internal/cache"
	"github.com/vietddude/taxocache/internal/core/config"
	"github.com/vietddude/taxocache/internal/core/domain"
	"github.com/vietddude/taxocache/internal/infra/remote"
	redisclient "github.com/vietddude/taxocache/internal/infra/redis"
	"github.com/vietddude/taxocache/internal/infra/storage/file"
	"github.com/vietddude/taxocache/internal/infra/storage/postgres"
	"github.com/vietddude/taxocache/internal/resolver"
	"github.com/vietddude/taxocache/internal/retry"
	"github.com/vietddude/taxocache/internal/server"
)

// App is the main application struct that manages the service lifecycle.
type App struct {
	cfg         *config.AppConfig
	resolver    *resolver.Resolver
	server      *server.Server
	db          *postgres.DB
	redisClient *redisclient.Client
	log         *slog.Logger
}

// NewApp creates an App with all dependencies initialized. The durable cache
// tier is chosen from config: PostgreSQL when a database URL is set, then
// Redis, then the file store. The durable tier is best-effort by design, so
// a backend that fails to initialize only logs a warning and the app runs
// with the next fallback.
func NewApp(cfg *config.AppConfig) (*App, error) {
	if cfg.Source.URL == "" {
		return nil, fmt.Errorf("source.url is required")
	}

	log := slog.Default()
	app := &App{cfg: cfg, log: log}

	store := app.selectStore(cfg)

	taxCache := cache.New[*domain.TaxonomyMapping](cache.Options{
		TTL:        cfg.Cache.TTL,
		DurableTTL: cfg.Cache.DurableTTL,
		Store:      store,
		Logger:     log,
	})

	fetcher := remote.NewClient(cfg.Source.URL, cfg.Source.Timeout)

	app.resolver = resolver.New(taxCache, fetcher, resolver.Options{
		Retry: retry.Config{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
			Jitter:      retry.DefaultConfig.Jitter,
		},
		Logger: log,
	})

	app.server = server.NewServer(app.resolver, cfg.Server.Port, log)

	return app, nil
}

// Resolver returns the app's resolver, for embedding callers.
func (a *App) Resolver() *resolver.Resolver {
	return a.resolver
}

// Start launches the HTTP server and warms the taxonomy cache in the
// background.
func (a *App) Start(ctx context.Context) error {
	go func() {
		a.log.Info("HTTP server listening", "port", a.cfg.Server.Port)
		if err := a.server.Start(); err != nil && err != http.ErrServerClosed {
			a.log.Error("HTTP server failed", "error", err)
		}
	}()

	// Best-effort warm: a failure here just means the first request fetches.
	go func() {
		if _, err := a.resolver.EnsureLoaded(ctx); err != nil {
			a.log.Warn("Initial taxonomy warm failed", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts the app down.
func (a *App) Stop(ctx context.Context) error {
	var firstErr error

	if err := a.server.Stop(ctx); err != nil {
		firstErr = err
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	a.log.Info("Shutdown complete")
	return firstErr
}

func (a *App) selectStore(cfg *config.AppConfig) cache.Store {
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			a.log.Warn("Failed to init postgres durable tier, falling back", "error", err)
		} else {
			if err := migrate(db); err != nil {
				a.log.Warn("Failed to migrate postgres durable tier, falling back", "error", err)
				_ = db.Close()
			} else {
				a.db = db
				a.log.Info("Using PostgreSQL durable tier")
				return postgres.NewCacheStore(db)
			}
		}
	}

	if cfg.Redis.URL != "" {
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			a.log.Warn("Failed to init redis durable tier, falling back", "error", err)
		} else {
			a.redisClient = client
			a.log.Info("Using Redis durable tier")
			return redisclient.NewCacheStore(client)
		}
	}

	store, err := file.NewStore(cfg.Cache.Dir)
	if err != nil {
		a.log.Warn("Failed to init file durable tier, running memory-only", "error", err)
		return nil
	}
	a.log.Info("Using file durable tier")
	return store
}

func migrate(db *postgres.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	// Migrations live in the "migrations" folder relative to CWD.
	if err := goose.Up(db.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to migrate db: %w", err)
	}
	return nil
}
