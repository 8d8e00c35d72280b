// cmd/server/main.go
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/gymreach/outreach-backend/internal/auth"
	"github.com/gymreach/outreach-backend/internal/config"
	"github.com/gymreach/outreach-backend/internal/db"
	"github.com/gymreach/outreach-backend/internal/handler"
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
	logger.Infow("✅ connected to database")

	campaignRepo := &repository.CampaignRepository{DB: conn}
	memberRepo := &repository.MemberRepository{DB: conn}
	messageRepo := &repository.MessageRepository{DB: conn}
	auditRepo := &repository.AuditRepository{DB: conn}
	profileRepo := &repository.ProfileRepository{DB: conn}

	gateway := buildGateway(cfg)
	dispatchMetrics := metrics.NewDispatch(prometheus.DefaultRegisterer)

	engine := &service.DispatchEngine{
		Campaigns:   campaignRepo,
		Members:     memberRepo,
		Messages:    messageRepo,
		Gateway:     gateway,
		Metrics:     dispatchMetrics,
		Logger:      logger,
		BatchSize:   cfg.BatchSize,
		PacingDelay: cfg.PacingDelay,
	}

	var scheduler service.Scheduler
	if cfg.DispatchMode == "queue" {
		amqpConn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			logger.Fatalw("failed to connect to RabbitMQ", "error", err)
		}
		defer amqpConn.Close()

		publisher, err := queue.NewAMQPPublisher(amqpConn)
		if err != nil {
			logger.Fatalw("failed to set up dispatch publisher", "error", err)
		}
		scheduler = publisher
		logger.Infow("dispatch mode: queue")
	} else {
		scheduler = queue.NewInProcScheduler(engine, logger)
		logger.Infow("dispatch mode: inline")
	}

	campaignService := &service.CampaignService{
		Campaigns:       campaignRepo,
		Members:         memberRepo,
		Audit:           auditRepo,
		Scheduler:       scheduler,
		Logger:          logger,
		ScoreThreshold:  cfg.ScoreThreshold,
		ContactCooldown: cfg.ContactCooldown,
	}
	messagingService := &service.MessagingService{
		Members:  memberRepo,
		Messages: messageRepo,
		Audit:    auditRepo,
		Gateway:  gateway,
		Logger:   logger,
	}
	webhookService := &service.WebhookService{
		Members:  memberRepo,
		Messages: messageRepo,
		Logger:   logger,
	}

	campaignHandler := &handler.CampaignHandler{
		Service:  campaignService,
		Messages: messageRepo,
		Logger:   logger,
	}
	messagingHandler := &handler.MessagingHandler{Service: messagingService, Logger: logger}
	webhookHandler := &handler.WebhookHandler{Service: webhookService, Logger: logger}

	verifier := auth.NewHTTPVerifier(cfg.AuthServiceURL)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// User-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier, profileRepo, logger))
		r.Post("/campaigns/start-mass-outreach", campaignHandler.StartMassOutreach)
		r.Get("/campaigns/{campaignID}", campaignHandler.GetCampaign)
		r.Get("/dead-letters", campaignHandler.ListDeadLetters)
		r.Post("/messages/send-sms", messagingHandler.SendSMS)
	})

	// Machine-to-machine routes
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAPIKey(cfg.APIKey))
		r.Post("/campaigns/process/{campaignID}", campaignHandler.TriggerProcess)
	})

	// Provider webhooks (no auth; providers sign or IP-restrict upstream)
	r.Post("/webhooks/twilio/inbound", webhookHandler.TwilioInbound)
	r.Post("/webhooks/twilio/status", webhookHandler.TwilioStatus)
	r.Post("/webhooks/email/events", webhookHandler.EmailEvents)

	logger.Infow("🚀 server running", "addr", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}

func buildGateway(cfg config.Config) provider.Gateway {
	if cfg.SMSProvider == "twilio" {
		return provider.NewTwilioGateway(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	}
	return provider.NewMockGateway(cfg.MockFailureRate)
}
