package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptobot-webhook-relay/internal/client"
	"cryptobot-webhook-relay/internal/config"
	"cryptobot-webhook-relay/internal/logger"
	"cryptobot-webhook-relay/internal/metrics"
	"cryptobot-webhook-relay/internal/repository"
	"cryptobot-webhook-relay/internal/server"
	"cryptobot-webhook-relay/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	})
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting relay",
		zap.String("environment", cfg.Environment.Name),
		zap.String("version", server.Version),
	)

	db, err := client.InitDBClient(cfg.Database, log)
	if err != nil {
		log.Fatal("init database", zap.Error(err))
	}

	cryptoPayClient := client.NewCryptoPayClient(&cfg.CryptoPay, cfg.OutboundTimeout, log)
	telegramClient := client.NewTelegramClient(&cfg.Telegram, cfg.OutboundTimeout, log)

	invoiceRepo := repository.NewInvoiceRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	m := metrics.New(prometheus.DefaultRegisterer)

	paymentService := service.NewPaymentService(
		log, m,
		cryptoPayClient,
		telegramClient,
		invoiceRepo,
		webhookEventRepo,
		cfg.NotifyTimeout,
	)
	invoiceService := service.NewInvoiceService(log, m, cryptoPayClient, invoiceRepo)

	if cfg.AdminAPIKey == "" {
		log.Warn("ADMIN_API_KEY is not set, operator endpoints are open")
	}

	serverAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)

	// Init HTTP server
	srv := server.NewServer(log, cfg.AdminAPIKey, prometheus.DefaultGatherer, paymentService, invoiceService)

	log.Info("starting HTTP server", zap.String("address", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("shutdown complete")
}
