package app

import (
	"context"
	"log/slog"

	cfg "github.com/avichaydahan/brandlight-reports/config"
	cache "github.com/avichaydahan/brandlight-reports/internal/cache/redis"
	"github.com/avichaydahan/brandlight-reports/internal/client/brandlight"
	"github.com/avichaydahan/brandlight-reports/internal/errors"
	handler "github.com/avichaydahan/brandlight-reports/internal/handler/http"
	"github.com/avichaydahan/brandlight-reports/internal/pdf"
	"github.com/avichaydahan/brandlight-reports/internal/server"
	"github.com/avichaydahan/brandlight-reports/internal/storage/gcs"
	"github.com/avichaydahan/brandlight-reports/internal/store"
	"github.com/avichaydahan/brandlight-reports/internal/store/postgres"
)

type App struct {
	Config   *cfg.AppConfig
	exitCh   chan error
	shutdown func(ctx context.Context) error

	Store      store.Store
	Cache      *cache.RedisCache
	Uploader   *gcs.Uploader
	Compositor *pdf.Compositor
	server     *server.Server
}

// New creates a fully initialized App.
func New(config *cfg.AppConfig, shutdown func(ctx context.Context) error) (*App, error) {
	app := &App{
		Config:   config,
		shutdown: shutdown,
		exitCh:   make(chan error),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}
	if err := app.initRedis(); err != nil {
		return nil, err
	}
	if err := app.initUploader(); err != nil {
		return nil, err
	}
	if err := app.initCompositor(); err != nil {
		return nil, err
	}
	if err := app.initServer(); err != nil {
		return nil, err
	}

	return app, nil
}

func (app *App) initStore() error {
	if app.Config.Database == nil {
		return errors.New("database config is nil")
	}
	app.Store = postgres.New(app.Config.Database)
	return nil
}

func (app *App) initRedis() error {
	redisCache, err := cache.NewRedisCache(app.Config.Redis.Addr, app.Config.Redis.Password, app.Config.Redis.DB)
	if err != nil {
		return errors.New("unable to initialize Redis", errors.WithCause(err))
	}
	app.Cache = redisCache
	return nil
}

func (app *App) initUploader() error {
	uploader, err := gcs.New(context.Background(), app.Config.Storage.Bucket)
	if err != nil {
		return errors.New("unable to initialize object storage", errors.WithCause(err))
	}
	app.Uploader = uploader
	return nil
}

func (app *App) initCompositor() error {
	compositor, err := pdf.NewCompositor(pdf.Options{
		Bin:           app.Config.Browser.Bin,
		Headless:      app.Config.Browser.Headless,
		RenderTimeout: app.Config.Browser.RenderTimeout,
	})
	if err != nil {
		return errors.New("unable to start render browser", errors.WithCause(err))
	}
	app.Compositor = compositor
	return nil
}

func (app *App) initServer() error {
	h, err := handler.NewReportHandler(handler.Deps{
		Brandlight: brandlight.Config{
			BaseURL:        app.Config.Brandlight.BaseURL,
			PageSize:       app.Config.Brandlight.PageSize,
			BatchSize:      app.Config.Brandlight.BatchSize,
			RequestTimeout: app.Config.Brandlight.RequestTimeout,
		},
		Compositor: app.Compositor,
		Uploader:   app.Uploader,
		Store:      app.Store,
		Cache:      app.Cache,
	})
	if err != nil {
		return errors.New("failed to build report handler", errors.WithCause(err))
	}
	srv, err := server.BuildServer(app.Config, h, app.exitCh)
	if err != nil {
		return errors.New("failed to build server", errors.WithCause(err))
	}
	app.server = srv
	return nil
}

// Start opens the store and runs the HTTP server until it exits.
func (app *App) Start() error {
	if err := app.Store.Open(); err != nil {
		return errors.New("failed to open store", errors.WithCause(err))
	}

	go app.server.Start()

	return <-app.exitCh
}

// Stop gracefully shuts down all services.
func (app *App) Stop() error {
	slog.Info("brandlight_reports.main.stop_starting")

	if app.server != nil {
		app.server.Stop()
		slog.Info("brandlight_reports.main.server_stopped")
	}

	if app.Compositor != nil {
		if err := app.Compositor.Close(); err != nil {
			slog.Error("brandlight_reports.main.browser_close_error", slog.String("error", err.Error()))
		}
	}

	if app.Uploader != nil {
		if err := app.Uploader.Close(); err != nil {
			slog.Error("brandlight_reports.main.storage_close_error", slog.String("error", err.Error()))
		}
	}

	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			slog.Error("brandlight_reports.main.redis_close_error", slog.String("error", err.Error()))
		}
	}

	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			slog.Error("brandlight_reports.main.store_close_error", slog.String("error", err.Error()))
		}
	}

	if app.shutdown != nil {
		if err := app.shutdown(context.Background()); err != nil {
			slog.Error("brandlight_reports.main.shutdown_hook_error", slog.String("error", err.Error()))
		}
	}

	slog.Info("brandlight_reports.main.stop_complete")
	return nil
}
