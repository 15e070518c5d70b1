package cli

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/amterp/forts/internal/catalog"
	"github.com/amterp/forts/internal/config"
	"github.com/amterp/forts/internal/logging"
	"github.com/amterp/forts/internal/metrics"
	"github.com/amterp/forts/internal/prompt"
	"github.com/amterp/forts/internal/service"
	"github.com/amterp/forts/internal/store"
)

// App holds all the dependencies for the CLI.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *metrics.Recorder
	Store    store.FortStore
	Cache    *catalog.SnapshotCache
	Service  *service.FortService
	Prompter prompt.Prompter
}

// AppOptions controls how NewApp wires things up.
type AppOptions struct {
	ConfigPath  string
	Interactive bool
	// Server selects the configured log level. Other commands only log
	// warnings so their output stays readable.
	Server bool
}

// NewApp loads the config and opens the store.
// If Interactive is false, uses NoopPrompter that fails on prompts.
func NewApp(ctx context.Context, opts AppOptions) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if !opts.Server && level != "debug" {
		level = "warn"
	}
	logger, err := logging.New(level, cfg.Server.Dev || !opts.Server)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, store.Options{
		Driver: cfg.Store.Driver,
		DSN:    cfg.Store.DSN,
		Path:   cfg.Store.Path,
	}, autoMigrate(cfg.Store.Driver), logger)
	if err != nil {
		return nil, err
	}

	var prompter prompt.Prompter = &prompt.NoopPrompter{}
	if opts.Interactive {
		prompter = prompt.NewHuhPrompter()
	}

	return newApp(cfg, logger, st, prompter), nil
}

func newApp(cfg *config.Config, logger *zap.Logger, st store.FortStore, prompter prompt.Prompter) *App {
	m := metrics.New()
	cache := catalog.NewSnapshotCache(st, cfg.Catalog.Revalidate.Duration, logger)
	cache.SetMetrics(m)
	svc := service.NewFortService(st, cache, logger)
	svc.SetMetrics(m)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Store:    st,
		Cache:    cache,
		Service:  svc,
		Prompter: prompter,
	}
}

// autoMigrate reports whether the schema is applied on open. A local SQLite
// file is created on first use; a shared Postgres database is only changed
// by an explicit "forts migrate".
func autoMigrate(driver string) bool {
	return driver != store.DriverPostgres
}

// Close releases the store and flushes the logger.
func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn("failed to close store", zap.Error(err))
	}
	_ = a.Logger.Sync()
}

// Fatal closes the app, so the store is released and the logger flushed,
// then prints err and exits. Deferred calls do not run after os.Exit.
func (a *App) Fatal(err error) {
	a.Close()
	Fatal(err)
}

// mustApp builds the App or exits.
func mustApp(ctx context.Context, opts AppOptions) *App {
	app, err := NewApp(ctx, opts)
	if err != nil {
		Fatal(err)
	}
	return app
}

// Fatal prints an error and exits.
func Fatal(err error) {
	PrintError("Error: %v", err)
	os.Exit(1)
}
