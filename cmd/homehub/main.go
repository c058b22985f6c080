package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/homehub-dev/homehub/db"
	"github.com/homehub-dev/homehub/internal/auth"
	"github.com/homehub-dev/homehub/internal/config"
	"github.com/homehub-dev/homehub/internal/handlers"
	"github.com/homehub-dev/homehub/internal/logging"
	"github.com/homehub-dev/homehub/internal/router"
	"github.com/homehub-dev/homehub/internal/scheduler"
	"github.com/homehub-dev/homehub/internal/services"
	"github.com/homehub-dev/homehub/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	conn, err := db.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(conn); err != nil {
			logger.Warn("closing database", slog.Any("error", err))
		}
	}()

	if err := db.MigrateDatabase(conn); err != nil {
		return err
	}

	st := store.New(conn, cfg.Database.Timeout)

	authService := auth.NewService(
		st,
		auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL),
		auth.NewPasswordHasher(0),
		logger,
	)

	events := services.NewBroadcaster(logger)
	notifier := services.NewNotifier(cfg.Notify)

	sweeper := scheduler.NewScheduler(st, events, notifier, cfg.Presence, logger)
	sweeper.Start()
	defer sweeper.Stop()

	gin.SetMode(gin.ReleaseMode)

	h := handlers.New(handlers.Options{
		Auth:     authService,
		Store:    st,
		Events:   events,
		Notifier: notifier,
		Origins:  cfg.Origins(),
		Logger:   logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(h, authService, cfg.Origins(), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("server listening",
			slog.String("addr", server.Addr),
			slog.String("database_driver", cfg.Database.Driver),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
