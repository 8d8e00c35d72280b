// cmd/worker/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/gymreach/outreach-backend/internal/config"
	"github.com/gymreach/outreach-backend/internal/db"
	"github.com/gymreach/outreach-backend/internal/metrics"
	"github.com/gymreach/outreach-backend/internal/provider"
	"github.com/gymreach/outreach-backend/internal/queue"
	"github.com/gymreach/outreach-backend/internal/repository"
	"github.com/gymreach/outreach-backend/internal/service"
)

func main() {
	zl, _ := zap.NewProduction()
	defer zl.Sync()
	logger := zl.Sugar()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalw("failed to load config", "error", err)
	}

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("failed to connect to database", "error", err)
	}

	campaignRepo := &repository.CampaignRepository{DB: conn}
	memberRepo := &repository.MemberRepository{DB: conn}
	messageRepo := &repository.MessageRepository{DB: conn}

	var gateway provider.Gateway
	if cfg.SMSProvider == "twilio" {
		gateway = provider.NewTwilioGateway(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	} else {
		gateway = provider.NewMockGateway(cfg.MockFailureRate)
	}

	engine := &service.DispatchEngine{
		Campaigns:   campaignRepo,
		Members:     memberRepo,
		Messages:    messageRepo,
		Gateway:     gateway,
		Metrics:     metrics.NewDispatch(prometheus.DefaultRegisterer),
		Logger:      logger,
		BatchSize:   cfg.BatchSize,
		PacingDelay: cfg.PacingDelay,
	}

	amqpConn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		logger.Fatalw("failed to connect to RabbitMQ", "error", err)
	}
	defer amqpConn.Close()

	consumer, err := queue.NewConsumer(amqpConn, engine, logger)
	if err != nil {
		logger.Fatalw("failed to set up consumer", "error", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infow("worker running, waiting for dispatch jobs")
	if err := consumer.Consume(ctx); err != nil && err != context.Canceled {
		logger.Fatalw("consumer stopped", "error", err)
	}
	logger.Infow("worker shut down")
}
