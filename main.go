package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/luigilocane-sketch/ricorsi-sinafi/app"
	"github.com/luigilocane-sketch/ricorsi-sinafi/config"
	"github.com/luigilocane-sketch/ricorsi-sinafi/database"
	"github.com/luigilocane-sketch/ricorsi-sinafi/httpx"
	"github.com/luigilocane-sketch/ricorsi-sinafi/log"
	"github.com/luigilocane-sketch/ricorsi-sinafi/routes"
	"github.com/luigilocane-sketch/ricorsi-sinafi/storage"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	files, err := storage.NewDisk(cfg.DataDir)
	if err != nil {
		log.Fatal("main.storage:", err)
	}

	bearerServer := httpx.NewBearerServer(db, cfg)

	app := app.App{
		DB:           db,
		BearerServer: bearerServer,
		Config:       cfg,
		Files:        files,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
