package main

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/mytravellog/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/mytravellog/internal/adapter/driven/storeapi"
	"github.com/ericfisherdev/mytravellog/internal/application"
	"github.com/ericfisherdev/mytravellog/internal/config"
	"github.com/ericfisherdev/mytravellog/internal/observability"
)

// app holds the wired client components shared by every subcommand.
type app struct {
	cfg     *config.Config
	db      *sqlite.DB
	metrics *observability.Collector
	client  *storeapi.Client
	guard   *application.SessionGuard
	cache   *application.LocationCache
}

// openApp loads configuration, opens the token database and wires the
// store client, session guard and location cache.
func openApp(ctx context.Context) (*app, error) {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.Debug("config loaded",
		"store_url", cfg.StoreURL,
		"db_path", cfg.DBPath,
		"token_encrypted", cfg.SecretKey != nil,
	)

	// 2. Open database (dual reader/writer with WAL mode).
	db, err := sqlite.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	// 3. Run migrations on writer connection.
	if err := sqlite.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}

	// 4. Wire the store transport, authenticator and client.
	metrics := observability.NewCollector("mytravellog")
	httpClient := storeapi.NewHTTPClient(storeapi.TransportOptions{
		Timeout: cfg.StoreTimeout,
		Metrics: metrics,
		Logger:  slog.Default(),
	})

	auth, err := storeapi.NewAuthenticator(cfg.StoreURL, httpClient)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	guard := application.NewSessionGuard(auth, sqlite.NewTokenRepo(db, cfg.SecretKey))

	client, err := storeapi.NewClient(cfg.StoreURL, httpClient, guard)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	cache := application.NewLocationCache(client)
	cache.SetObserver(metrics.ObserveRefresh)

	return &app{
		cfg:     cfg,
		db:      db,
		metrics: metrics,
		client:  client,
		guard:   guard,
		cache:   cache,
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
