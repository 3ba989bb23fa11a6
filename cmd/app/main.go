package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"roombook/config"
	"roombook/di"
	"roombook/helper"
	"roombook/shared/logger"
)

// @title Roombook API
// @version 1.0
// @description Meeting room reservations with live slot availability.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.InitLogger(cfg)

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Run(cfg, helper.ActionUp); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	app := di.InitializeService()

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := app.Publisher.Consume(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Reservation event consumer stopped")
		}
	}()

	app.HTTP.OnShutdown(func(shutdownCtx context.Context) {
		cancel()
		app.Close(shutdownCtx)
	})

	app.HTTP.Serve()
}
