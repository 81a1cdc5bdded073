package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"piggybank/internal/accounts"
	"piggybank/internal/amqp"
	"piggybank/internal/backend"
	"piggybank/internal/cache"
	"piggybank/internal/config"
	apphttp "piggybank/internal/http"
	"piggybank/internal/ledger"
	"piggybank/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentApp)
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	store, err := backend.Open(cfg, logger.WithComponent(log.ComponentBackend))
	if err != nil {
		logger.Error("failed to initialize storage backend",
			log.FieldError, err,
			log.FieldBackend, cfg.DataBackend,
		)
		os.Exit(1)
	}
	defer func() {
		if store.Cleanup == nil {
			return
		}
		if err := store.Cleanup(); err != nil {
			logger.Error("storage cleanup failed", log.FieldError, err)
		}
	}()

	acc := accounts.New(
		store.Store,
		accounts.VerifierForScheme(cfg.PasswordScheme),
		logger.WithComponent(log.ComponentAccounts),
	)

	// The event stream is optional: without an AMQP URL the ledger runs standalone.
	var events ledger.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		events = client
		logger.Info("AMQP event stream enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	srv := apphttp.NewServer(acc, store.Store, events, logger.WithComponent(log.ComponentHTTP), apphttp.Options{
		CacheSize:         cfg.CacheSize,
		CacheTTL:          cfg.CacheTTL,
		RequestsPerMinute: cfg.RequestsPerMinute,
	})
	defer srv.Close()

	cacheManager := cache.NewManager()
	cacheManager.Register(srv.ViewCache())
	cacheManager.StartCleanup(cfg.CacheTTL)
	defer cacheManager.Stop()

	httpSrv := srv.HTTPServer(":" + cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received",
			log.FieldOperation, log.OpShutdown,
			"signal", sig.String(),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("starting piggybank server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
	)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}
