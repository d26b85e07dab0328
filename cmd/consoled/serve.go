package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"hotel-console-backend/config"
	"hotel-console-backend/internal/api"
	"hotel-console-backend/internal/db"
	"hotel-console-backend/internal/logfilter"
	"hotel-console-backend/internal/logger"
	"hotel-console-backend/internal/mw"
	"hotel-console-backend/internal/notification"
	"hotel-console-backend/internal/session"
	"hotel-console-backend/internal/store"
	"hotel-console-backend/internal/syncer"
	"hotel-console-backend/internal/upstream"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the console HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger.Init(cfg.Logging)
			defer logger.Sync()
			logger.Get(cmd.Context()).Infof("Configuration loaded successfully from %s", path)
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log := logger.Get(ctx)

	gin.SetMode(gin.ReleaseMode)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	appStore := store.NewGormStore(gormDB)
	log.Info("Data store initialized")

	client := upstream.New(cfg.Upstream)
	sessions := session.NewManager(client, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	cache := mw.NewResponseCache(cfg.Server.CacheTTL)
	engine := logfilter.NewEngine(cfg.Console.Location, logfilter.WithCurrency(cfg.Console.Currency))

	var (
		webpushOptions *webpush.Options
		notifier       syncer.Notifier
	)
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, cfg.Console.Currency)
		pool.Start(ctx)
		notifier = pool
	} else {
		log.Warn("VAPID keys are not configured. Vehicle exit notifications are disabled.")
	}

	syncSvc := syncer.NewService(cfg.Sync, cfg.Upstream.ServiceToken, client, appStore, notifier)
	syncSvc.OnInvalidate(cache.Invalidate)
	go syncSvc.Run(ctx)

	router := api.NewRouter(cfg.Server, api.Deps{
		Store:    appStore,
		Upstream: client,
		Sessions: sessions,
		Syncer:   syncSvc,
		Engine:   engine,
		Cache:    cache,
		Webpush:  webpushOptions,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server ListenAndServe: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received, stopping services...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server Shutdown: %w", err)
	}

	log.Info("Server gracefully stopped")
	return nil
}
