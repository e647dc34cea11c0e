package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"payflow/internal/config"
	"payflow/internal/handlers"
	"payflow/internal/logger"
	"payflow/internal/metrics"
	"payflow/internal/repositories"
	"payflow/internal/repositories/cache"
	"payflow/internal/routes"
	"payflow/internal/services/admin"
	"payflow/internal/services/analytics"
	"payflow/internal/services/audit"
	"payflow/internal/services/auth"
	"payflow/internal/services/dispute"
	"payflow/internal/services/merchant"
	"payflow/internal/services/notification"
	"payflow/internal/services/payment"
	"payflow/internal/services/qrcode"
	"payflow/internal/services/user"
	"payflow/internal/services/webhook"
)

func main() {
	config.LoadEnv()
	log := logger.New()

	db, err := repositories.InitDB()
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}

	redisClient := cache.NewRedisClient(&cache.RedisConfig{
		Host:     config.GetEnv("REDIS_HOST", "localhost"),
		Port:     config.GetEnv("REDIS_PORT", "6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetIntEnv("REDIS_DB", 0),
	})
	cacheSvc := cache.NewService(redisClient)
	if err := cacheSvc.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("redis unreachable")
	}

	// Repositories.
	userRepo := repositories.NewUserRepository(db)
	merchantRepo := repositories.NewMerchantRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	refundRepo := repositories.NewRefundRepository(db)
	linkRepo := repositories.NewPaymentLinkRepository(db)
	qrRepo := repositories.NewQRCodeRepository(db)
	webhookRepo := repositories.NewWebhookRepository(db)
	disputeRepo := repositories.NewDisputeRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Cross-cutting services.
	auditSvc := audit.NewService(auditRepo, log)
	mailer := notification.NewHTTPMailer(
		config.GetEnv("MAIL_API_URL", ""),
		config.GetEnv("MAIL_API_KEY", ""),
		config.GetEnv("MAIL_FROM", "no-reply@payflow.dev"),
		config.GetEnv("MAIL_FROM_NAME", "PayFlow"),
	)
	notifier := notification.NewService(mailer, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// Domain services.
	dispatcher := webhook.NewDispatcher(webhookRepo, log)
	webhookSvc := webhook.NewService(webhookRepo, dispatcher, auditSvc, log)

	paymentSvc := payment.NewService(
		transactionRepo, merchantRepo, refundRepo, linkRepo,
		buildAuthorizer(), cacheSvc, auditSvc, notifier,
		webhookSvc, collector, log,
		payment.Config{
			ClientURL:   config.GetEnv("CLIENT_URL", "http://localhost:5173"),
			RefundDelay: config.GetDurationEnv("REFUND_DELAY", payment.DefaultRefundDelay),
		},
	)

	authSvc := auth.NewService(userRepo, cacheSvc, auditSvc, notifier, log)
	userSvc := user.NewService(userRepo, merchantRepo, transactionRepo, auditSvc, log)
	merchantSvc := merchant.NewService(merchantRepo, userRepo, transactionRepo, refundRepo, auditSvc, log)
	analyticsSvc := analytics.NewService(db, log)
	adminSvc := admin.NewService(db, userRepo, merchantRepo, disputeRepo, auditRepo, auditSvc, notifier, log)
	disputeSvc := dispute.NewService(disputeRepo, transactionRepo, auditSvc, log)
	qrSvc := qrcode.NewService(qrRepo, auditSvc, config.GetEnv("CLIENT_URL", "http://localhost:5173"), log)

	refundWorker := payment.NewRefundWorker(
		refundRepo, webhookSvc, collector, log,
		config.GetDurationEnv("REFUND_SWEEP_INTERVAL", time.Second),
	)
	refundWorker.Start()

	app := fiber.New(fiber.Config{
		AppName:      "PayFlow API",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New())

	routes.Setup(app, routes.Deps{
		Users:     userRepo,
		Merchants: merchantRepo,
		Auth:      handlers.NewAuthHandler(authSvc),
		User:      handlers.NewUserHandler(userSvc),
		Payment:   handlers.NewPaymentHandler(paymentSvc),
		Merchant:  handlers.NewMerchantHandler(merchantSvc),
		Webhook:   handlers.NewWebhookHandler(webhookSvc),
		Analytics: handlers.NewAnalyticsHandler(analyticsSvc),
		Admin:     handlers.NewAdminHandler(adminSvc),
		Dispute:   handlers.NewDisputeHandler(disputeSvc),
		QRCode:    handlers.NewQRCodeHandler(qrSvc),
		Health:    handlers.NewHealthHandler(db, cacheSvc),
	})

	// Metrics run on their own listener so the public API surface stays clean.
	metricsAddr := ":" + config.GetEnv("METRICS_PORT", "9100")
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{Addr: metricsAddr, Handler: metricsMux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	addr := ":" + config.GetEnv("PORT", "8080")
	go func() {
		log.Info().Str("addr", addr).Msg("starting api server")
		if err := app.Listen(addr); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	refundWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("api shutdown failed")
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("metrics shutdown failed")
	}
	if err := cacheSvc.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("bye")
}

// buildAuthorizer selects the gateway integration from the environment. The
// default simulates outcomes; "stripe" charges real PaymentIntents.
func buildAuthorizer() payment.Authorizer {
	switch config.GetEnv("PAYMENT_AUTHORIZER", "random") {
	case "stripe":
		return payment.NewStripeAuthorizer(config.GetEnv("STRIPE_SECRET_KEY", ""))
	default:
		return payment.RandomAuthorizer{
			SuccessRate: config.GetFloatEnv("PAYMENT_SUCCESS_RATE", 0.9),
		}
	}
}
