package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"firsttime/app/auth"
	"firsttime/app/config"
	"firsttime/app/repositories"
	"firsttime/app/routes"
	"firsttime/app/services"

	"github.com/dgraph-io/badger/v4"
)

// openTables connects the hosted table store. Tests swap it for sqlite.
var openTables = repositories.OpenPostgres

const shutdownTimeout = 10 * time.Second

// App is the wired application: storage, post store and HTTP handler.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   *services.PostStore
	Handler http.Handler

	closers []func() error
}

// NewApp opens storage, loads the post collection and builds the router.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	db, err := repositories.OpenBadger(cfg.BadgerPath())
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, db.Close)

	authenticator, err := auth.New(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	adapter := app.openAdapter(ctx, db)
	app.closers = append(app.closers, adapter.Close)

	app.Store = services.NewPostStore(adapter, services.WithLogger(logger))
	app.Store.Load(ctx)
	logger.Info("post store ready",
		"adapter", app.Store.AdapterName(),
		"posts", len(app.Store.Snapshot()),
		"seeded", app.Store.Seeded(),
	)

	identities := services.NewIdentityService(app.Store, repositories.NewBadgerProfileStore(db), logger)
	app.Handler = routes.SetupRoutes(routes.Dependencies{
		Config:     cfg,
		Store:      app.Store,
		Identities: identities,
		Auth:       authenticator,
		Logger:     logger,
		Version:    version,
	})
	return app, nil
}

// openAdapter picks the remote adapter when a database is configured and
// reachable, and the local Badger adapter otherwise.
func (a *App) openAdapter(ctx context.Context, db *badger.DB) repositories.Adapter {
	if !a.Config.RemoteEnabled() {
		return repositories.NewLocalAdapter(db)
	}

	gdb, err := openTables(a.Config.DatabaseURL)
	if err != nil {
		a.Logger.Warn("remote store unavailable, using local store", "error", err)
		return repositories.NewLocalAdapter(db)
	}
	tables := repositories.NewGormTableStore(gdb)
	if err := tables.Migrate(); err != nil {
		a.Logger.Warn("remote migration failed, using local store", "error", err)
		tables.Close()
		return repositories.NewLocalAdapter(db)
	}

	var cache *repositories.PostCache
	if a.Config.RedisURL != "" {
		client, err := repositories.ConnectRedis(ctx, a.Config.RedisURL)
		if err != nil {
			a.Logger.Warn("redis unavailable, remote reads are uncached", "error", err)
		} else {
			cache = repositories.NewPostCache(client, repositories.PostsCacheTTL)
			a.closers = append(a.closers, client.Close)
		}
	}
	return repositories.NewRemoteAdapter(tables, cache)
}

// Close releases storage in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// RunServer serves the application until ctx is cancelled, then shuts down
// gracefully.
func RunServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) error {
	app, err := NewApp(ctx, cfg, logger, version)
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting first.time service", "addr", cfg.Addr(), "env", cfg.Env, "mock_auth", !cfg.Auth0Enabled())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
