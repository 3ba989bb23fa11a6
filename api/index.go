package handler

import (
	"net/http"
	"sync"

	"roombook/config"
	"roombook/di"
	"roombook/shared/logger"
)

var (
	app  *di.App
	once sync.Once
)

// Handler is the serverless entrypoint. Slot updates reach websocket clients only through the
// long-running server, so no event consumer is started here.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger(cfg)

		logger.SetLogLevel(cfg)

		app = di.InitializeService()
	})

	r.RequestURI = r.URL.String()

	app.HTTP.ServeHTTP(w, r)
}
