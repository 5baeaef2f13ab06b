package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Fizzyy89/nerdquiz-next-sub000/config"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/bot"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/common/clock"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/content"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/dice"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/game"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/registry"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/timer"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/transport/rest"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/transport/ws"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment")
	}

	cfg := config.Load()

	clk := clock.New()
	roller := dice.New(nil)

	// Question content: a JSON file when configured, bundled samples
	// otherwise.
	var provider content.Provider
	if cfg.ContentFile != "" {
		p, err := content.LoadFile(cfg.ContentFile, roller)
		if err != nil {
			log.WithError(err).Fatal("failed to load content file")
		}
		provider = p
		log.WithField("file", cfg.ContentFile).Info("content loaded")
	} else {
		provider = content.NewSampleProvider(roller)
		log.Info("using bundled sample content")
	}

	reg := registry.New(clk)
	timers := timer.New()

	svc, err := game.New(&game.Config{
		Registry: reg,
		Timers:   timers,
		Provider: provider,
		Roller:   roller,
		Clock:    clk,
		Logger:   log,
		Timing:   cfg,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to create game service")
	}

	hub := ws.NewHub(log)
	svc.AddBroadcaster(hub)

	bots := bot.New(svc, roller, log)
	svc.AddBroadcaster(bots)

	wsHandler := ws.NewHandler(hub, svc, bots, log)

	router := rest.NewRouter(&rest.Container{
		GameService: svc,
		Registry:    reg,
		WSHandler:   wsHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen and serve")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("forced shutdown")
	}

	log.Info("server exited")
}
