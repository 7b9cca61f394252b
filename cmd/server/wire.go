//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"tripnotify/internal/accounts"
	"tripnotify/internal/app"
	"tripnotify/internal/config"
	"tripnotify/internal/http"
	"tripnotify/internal/http/controller"
	"tripnotify/internal/logging"
	"tripnotify/internal/mail"
	"tripnotify/internal/queue/rabbitmq"
	"tripnotify/internal/realtime"
	"tripnotify/internal/service/notify"
	"tripnotify/internal/store"
)

func InitializeApp() (*app.App, error) {
	wire.Build(
		config.New,
		logging.New,
		store.NewDB,
		store.NewStore,
		accounts.NewDirectory,
		realtime.NewHub,
		realtime.NewPublisher,
		mail.New,
		notify.NewService,
		notify.NewCoordinator,
		controller.NewHandler,
		http.NewRouter,
		rabbitmq.NewConsumer,
		rabbitmq.NewPublisher,
		app.NewApp,
	)
	return &app.App{}, nil
}
