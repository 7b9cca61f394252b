package app

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tripnotify/internal/config"
	"tripnotify/internal/queue"
	"tripnotify/internal/telemetry"
)

type App struct {
	cfg          *config.Config
	consumer     queue.Consumer
	server       *http.Server
	logger       *zap.Logger
	wg           sync.WaitGroup
	otelShutdown func(context.Context) error
}

func NewApp(cfg *config.Config, consumer queue.Consumer, router *gin.Engine, logger *zap.Logger) *App {
	return &App{
		cfg:      cfg,
		consumer: consumer,
		server: &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: router,
		},
		logger: logger,
	}
}

func (a *App) Run(ctx context.Context) error {
	shutdown, err := telemetry.Init(ctx, a.cfg)
	if err != nil {
		a.logger.Warn("tracing disabled", zap.Error(err))
	} else {
		a.otelShutdown = shutdown
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.consumer.Start(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("consumer stopped", zap.Error(err))
		}
	}()

	a.logger.Info("http server starting", zap.String("addr", a.cfg.HTTPAddr))
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("graceful shutdown started")
	shutdownErr := a.server.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if shutdownErr == nil {
			shutdownErr = ctx.Err()
		}
	}

	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	if shutdownErr == nil {
		a.logger.Info("graceful shutdown completed")
	}
	return shutdownErr
}

func (a *App) Logger() *zap.Logger {
	return a.logger
}
