// Command makiavelisolverd serves the Makiaveli solver over HTTP and
// websockets, backed by Postgres solve history and a Redis result
// cache/pub-sub channel.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/CrzPhil/Makiaveli/internal/cache"
	"github.com/CrzPhil/Makiaveli/internal/config"
	"github.com/CrzPhil/Makiaveli/internal/database"
	"github.com/CrzPhil/Makiaveli/internal/game"
	"github.com/CrzPhil/Makiaveli/internal/httpapi"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("makiavelisolverd exited")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Warn("postgres unavailable, solve history disabled")
		store = nil
	} else {
		defer store.Close()
	}

	rdb := cache.New(cfg.RedisAddr)
	defer rdb.Close()

	hub := game.NewHub(log)

	srv := httpapi.New(store, rdb, hub, cfg.JWTSigningKey, cfg.DefaultDeadline, log)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Routes(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		for out := range rdb.Subscribe(gctx) {
			hub.Broadcast(gctx, game.SolveResultEvent{Type: "solve_result", Output: out})
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
