package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httphandler "github.com/ericfisherdev/mytravellog/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/mytravellog/internal/adapter/driving/web"
	"github.com/ericfisherdev/mytravellog/internal/application"
	"github.com/ericfisherdev/mytravellog/internal/domain/model"
	"github.com/ericfisherdev/mytravellog/internal/mapview"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the map UI and JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	// 1. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open database and wire the store client.
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	slog.Info("config loaded",
		"listen_addr", a.cfg.ListenAddr,
		"db_path", a.cfg.DBPath,
		"store_url", a.cfg.StoreURL,
		"tile_url", a.cfg.TileURL,
	)

	// 3. Initial refresh; an unreachable store leaves an empty map.
	if err := a.cache.Refresh(ctx); err != nil {
		slog.Warn("initial refresh failed", "error", err)
	}

	// 4. Wire the controller and renderer. Marker activation feeds the controller.
	edit := application.NewEditSession(a.guard, a.client, a.cache)
	renderer := mapview.NewRenderer(a.cache, mapview.NewTemplateSource(a.cfg.TileURL),
		func(ctx context.Context, loc model.Location) {
			edit.MarkerActivated(ctx, loc)
		})

	// 5. Register API and GUI routes.
	mux := http.NewServeMux()
	apiHandler := httphandler.NewHandler(a.cache, a.guard, a.metrics.Handler(), slog.Default())
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	webHandler := webhandler.NewHandler(a.guard, a.cache, edit, renderer, a.client.ResolveURL, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", a.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 6. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	// 7. Graceful shutdown with 10s timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
