package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/go-devlinks/pkg/app"
	"github.com/wadjakorntonsri/go-devlinks/pkg/config"
	"github.com/wadjakorntonsri/go-devlinks/pkg/logging"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	logger := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// On Vercel the local sqlite file is ephemeral; point DATABASE_URL at libsql and REDIS_URL at a shared Redis.
	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		panic(err)
	}
	mux = a.Handler()
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
