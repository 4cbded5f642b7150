package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/mediahook/mediahook/internal/config"
	"github.com/mediahook/mediahook/internal/handlers"
	"github.com/mediahook/mediahook/internal/janitor"
	"github.com/mediahook/mediahook/internal/logger"
	"github.com/mediahook/mediahook/internal/media"
	"github.com/mediahook/mediahook/internal/reply"
	"github.com/mediahook/mediahook/internal/router"
	"github.com/mediahook/mediahook/internal/server"
	"github.com/mediahook/mediahook/internal/whatsapp"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideClient,
			provideAcquirer,
			providePersister,
			provideRouter,
			provideReplyService,
			provideServerHandler(providePingHandler),
			provideServerHandler(provideWebhookHandler),
			provideServerHandler(provideMediaHandler),
			provideServer,
		),
		fx.Invoke(
			startJanitor,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideClient(log *slog.Logger, cfg config.Config) *whatsapp.Client {
	return whatsapp.NewClient(log, whatsapp.Config{
		AccessToken:      cfg.WhatsApp.AccessToken,
		PhoneNumberID:    cfg.WhatsApp.PhoneNumberID,
		APIVersion:       cfg.WhatsApp.APIVersion,
		BaseURL:          cfg.WhatsApp.BaseURL,
		MetadataTimeout:  time.Duration(cfg.WhatsApp.MetadataTimeout) * time.Second,
		DownloadTimeout:  time.Duration(cfg.WhatsApp.DownloadTimeout) * time.Second,
		MaxDownloadBytes: int64(cfg.Storage.MaxDownloadMB) * 1024 * 1024,
	})
}

func provideAcquirer(log *slog.Logger, client *whatsapp.Client) *media.Acquirer {
	return media.NewAcquirer(log, client)
}

func providePersister(log *slog.Logger, cfg config.Config) (*media.Persister, error) {
	persister, err := media.NewPersister(log, cfg.Storage.Root)
	if err != nil {
		return nil, fmt.Errorf("init media persister: %w", err)
	}
	return persister, nil
}

func provideRouter(log *slog.Logger, acquirer *media.Acquirer, persister *media.Persister) *router.Router {
	return router.NewRouter(log, acquirer, persister)
}

func provideReplyService(log *slog.Logger, client *whatsapp.Client, cfg config.Config) *reply.Service {
	return reply.NewService(log, client, cfg.Samples)
}

func providePingHandler(log *slog.Logger) *handlers.PingHandler {
	return handlers.NewPingHandler(log)
}

func provideWebhookHandler(log *slog.Logger, cfg config.Config, msgRouter *router.Router, replies *reply.Service, client *whatsapp.Client) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(log, cfg.WhatsApp.VerifyToken, msgRouter, replies, client)
}

func provideMediaHandler(log *slog.Logger, persister *media.Persister) *handlers.MediaHandler {
	return handlers.NewMediaHandler(log, persister.Root())
}

type serverParams struct {
	fx.In

	Config   config.Config
	Handlers []server.Handler `group:"server_handlers"`
}

func provideServer(p serverParams) *server.Server {
	return server.New(p.Config.Server.Addr, p.Config.Admin.JWTSecret, p.Handlers)
}

func startJanitor(lc fx.Lifecycle, log *slog.Logger, cfg config.Config, persister *media.Persister) error {
	maxAge, err := time.ParseDuration(cfg.Storage.SweepMaxAge)
	if err != nil {
		return fmt.Errorf("parse storage.sweep_max_age: %w", err)
	}
	j := janitor.New(log, persister.Root(), maxAge)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return j.Start(cfg.Storage.SweepSchedule)
		},
		OnStop: func(context.Context) error {
			j.Stop()
			return nil
		},
	})
	return nil
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner, cfg config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Error("server stopped", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			log.Info("server started", slog.String("addr", cfg.Server.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
