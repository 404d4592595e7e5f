package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/rafabene/onemore-backend/internal/infrastructure/config"
	"github.com/rafabene/onemore-backend/internal/infrastructure/email"
	"github.com/rafabene/onemore-backend/internal/infrastructure/logging"
	"github.com/rafabene/onemore-backend/internal/infrastructure/queue"
)

// mailer consome os eventos de email publicados pela API e entrega por SMTP
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := logging.NewSlogLogger(cfg.Logging.Level).With("component", "mailer")

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required")
	}
	if cfg.SMTP.Host == "" || cfg.SMTP.From == "" {
		log.Fatal("SMTP_HOST and SMTP_FROM are required")
	}

	composer, err := email.NewComposer(cfg.App.PublicURL)
	if err != nil {
		logger.Error("failed to load email templates", "error", err)
		log.Fatal(err)
	}
	mailer := email.NewMailer(composer, email.NewSMTPSender(cfg.SMTP), logger)

	consumer := queue.NewEmailConsumer(cfg.Kafka, mailer, logger)
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("failed to close consumer", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("mailer started",
		"topic", cfg.Kafka.Topic,
		"group_id", cfg.Kafka.GroupID,
	)
	if err := consumer.Run(ctx); err != nil {
		logger.Error("mailer stopped", "error", err)
		return
	}
	logger.Info("mailer exited")
}
