package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"piggybank/internal/amqp"
	"piggybank/internal/config"
	"piggybank/internal/log"
	"piggybank/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	logger.Info("starting piggybank-worker", log.FieldOperation, log.OpStartup)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	auditWriter := worker.NewAuditWriter(cfg.AuditLogPath, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := amqpClient.ConsumeLedgerEvents(ctx, auditWriter.HandleEvent); err != nil {
			if err != context.Canceled {
				logger.Error("event consumption failed", log.FieldError, err)
			}
			cancel()
		}
	}()

	logger.Info("consuming ledger events",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		"audit_log", cfg.AuditLogPath,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received",
			log.FieldOperation, log.OpShutdown,
			"signal", sig.String(),
		)
		cancel()
	case <-ctx.Done():
	}

	logger.Info("worker stopped gracefully")
}
