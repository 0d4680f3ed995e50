package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"frontdash/internal/commons"
	"frontdash/internal/config"
	"frontdash/internal/events"
	"frontdash/internal/infrastructure/logger"
	"frontdash/internal/order"
	"frontdash/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := events.NewHub(zapLogger.Named("hub"))
	go hub.Run(ctx)

	publishers := events.Multi{hub}
	if cfg.Kafka.Enabled() {
		kafka, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, zapLogger.Named("kafka"))
		if err != nil {
			zapLogger.Fatal("creating kafka publisher", zap.Error(err))
		}
		defer kafka.Close()
		publishers = append(publishers, kafka)
		zapLogger.Info("kafka publisher enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	orderCtrl, orderLedger := order.NewModule(cfg, publishers, zapLogger)

	if cfg.Ledger.SeedFile != "" {
		seed, err := commons.LoadSeedOrders(cfg.Ledger.SeedFile)
		if err != nil {
			zapLogger.Fatal("loading seed orders", zap.String("path", cfg.Ledger.SeedFile), zap.Error(err))
		}
		if err := orderLedger.Seed(seed...); err != nil {
			zapLogger.Fatal("seeding ledger", zap.Error(err))
		}
	}

	router := server.NewRouter(orderCtrl, hub.HandleWebSocket, orderLedger, zapLogger.Named("http"))
	srv := server.New(cfg.Server.Port, router, zapLogger)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
