package di

import (
	"context"

	"github.com/rs/zerolog/log"

	"roombook/infras/kafka"
	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/infras/realtime"
	"roombook/internal/domains/reservation/event"
	"roombook/transport/http"
)

// App is everything main needs beyond the HTTP server: background consumers and resources to release.
type App struct {
	HTTP      *http.HTTP
	Publisher event.Publisher
	Hub       realtime.Hub
	Kafka     kafka.Client
	Otel      otel.Otel
	DB        *postgres.Connection
}

// Close releases resources in reverse dependency order.
func (a *App) Close(ctx context.Context) {
	a.Hub.Close()

	if err := a.Kafka.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close kafka client")
	}

	if err := a.DB.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}

	if err := a.Otel.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to flush traces")
	}
}
