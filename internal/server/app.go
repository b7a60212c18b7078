// Package server initializes and runs the account service: it opens the
// database, runs migrations, wires repositories, services and the HTTP
// transport, and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/akarpovs/viewtube/internal/cache"
	"github.com/akarpovs/viewtube/internal/logging"
	"github.com/akarpovs/viewtube/internal/server/auth"
	"github.com/akarpovs/viewtube/internal/server/config"
	"github.com/akarpovs/viewtube/internal/server/httpapi"
	"github.com/akarpovs/viewtube/internal/server/mediastore"
	"github.com/akarpovs/viewtube/internal/server/repositories/repomanager"
	"github.com/akarpovs/viewtube/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	api    *httpapi.Server

	profileCache *cache.Cache
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := repomanager.OpenDB(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var profileCache *cache.Cache
	if cfg.Redis.Addr != "" {
		profileCache, err = cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("cache init error: %w", err)
		}
	}

	tokens := auth.NewTokenMaker(
		cfg.Tokens.AccessSecret, cfg.Tokens.RefreshSecret,
		cfg.Tokens.AccessTTL, cfg.Tokens.RefreshTTL,
		clockwork.NewRealClock(),
	)
	media := mediastore.NewS3Store(cfg.S3)

	userService := services.NewUserService(db, repos, tokens, media)
	channelService := services.NewChannelService(db, repos, profileCache, cfg.Redis.ProfileTTL, logger)

	api := httpapi.NewServer(cfg, logger, userService, channelService, tokens)

	return &App{config: cfg, logger: logger, api: api, profileCache: profileCache}, nil
}

func (app *App) initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancel()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.logger.Info(ctx, "starting app", "env", app.config.Env)
	app.initSignalHandler(cancel)

	if err := app.api.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server stopped", "error", err.Error())
	}

	if app.profileCache != nil {
		if err := app.profileCache.Close(); err != nil {
			app.logger.Warn(ctx, "closing cache", "error", err.Error())
		}
	}
}
