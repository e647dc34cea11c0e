// Package routes wires the handler surface onto the Fiber app. Route groups
// mirror the resource layout under /api/v1; auth and role middleware apply
// per group.
package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"payflow/internal/handlers"
	"payflow/internal/middleware"
	"payflow/internal/models"
	"payflow/internal/repositories"
)

// Deps carries everything Setup needs. cmd/server builds the graph and hands
// it over.
type Deps struct {
	Users     repositories.UserRepository
	Merchants repositories.MerchantRepository

	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Payment   *handlers.PaymentHandler
	Merchant  *handlers.MerchantHandler
	Webhook   *handlers.WebhookHandler
	Analytics *handlers.AnalyticsHandler
	Admin     *handlers.AdminHandler
	Dispute   *handlers.DisputeHandler
	QRCode    *handlers.QRCodeHandler
	Health    *handlers.HealthHandler
}

// Setup registers every route.
func Setup(app *fiber.App, d Deps) {
	authenticated := middleware.Authenticate(d.Users)
	merchantOnly := middleware.RequireMerchant(d.Merchants)
	adminOnly := middleware.Authorize(models.RoleAdmin, models.RoleSuperAdmin)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to the PayFlow API",
			"version": "1.0.0",
		})
	})
	app.Get("/health", d.Health.Check)

	api := app.Group("/api/v1")

	// Credential endpoints get a tighter rate limit than the rest of the API.
	credentialLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   fiber.Map{"message": "Too many attempts, try again later"},
			})
		},
	})

	auth := api.Group("/auth")
	auth.Post("/register", credentialLimiter, d.Auth.Register)
	auth.Post("/login", credentialLimiter, d.Auth.Login)
	auth.Post("/refresh-token", d.Auth.Refresh)
	auth.Post("/forgot-password", credentialLimiter, d.Auth.ForgotPassword)
	auth.Post("/reset-password", d.Auth.ResetPassword)
	auth.Post("/verify-email", d.Auth.VerifyEmail)
	auth.Post("/logout", authenticated, d.Auth.Logout)
	auth.Get("/profile", authenticated, d.Auth.Profile)
	auth.Post("/change-password", authenticated, d.Auth.ChangePassword)
	auth.Post("/resend-verification", authenticated, d.Auth.ResendVerification)

	users := api.Group("/users", authenticated)
	users.Put("/profile", d.User.UpdateProfile)
	users.Get("/settings", d.User.Settings)
	users.Put("/settings", d.User.UpdateSettings)
	users.Get("/transactions", d.User.Transactions)

	payments := api.Group("/payments")
	// Customer-facing: no session required.
	payments.Post("/process", d.Payment.Process)
	payments.Post("/callback", d.Payment.Callback)
	payments.Get("/status/:orderId", d.Payment.Status)
	payments.Get("/link/:linkId", d.Payment.GetLink)
	payments.Get("/qr/:id", d.QRCode.Scan)
	// Merchant-facing.
	payments.Post("/create", authenticated, merchantOnly, d.Payment.Create)
	payments.Post("/refund", authenticated, merchantOnly, d.Payment.Refund)
	payments.Get("/refund/:refundId", authenticated, merchantOnly, d.Payment.GetRefund)
	payments.Post("/link", authenticated, merchantOnly, d.Payment.CreateLink)
	payments.Post("/qr", authenticated, merchantOnly, d.QRCode.Create)
	payments.Get("/merchant", authenticated, merchantOnly, d.Payment.MerchantPayments)
	// Admin-facing.
	payments.Get("/merchant/:merchantId", authenticated, adminOnly, d.Payment.MerchantPaymentsByID)
	payments.Post("/simulate", authenticated, adminOnly, d.Payment.Simulate)

	transactions := api.Group("/transactions", authenticated)
	transactions.Get("/", merchantOnly, d.Payment.MerchantPayments)
	transactions.Get("/:id", d.Payment.Transaction)

	merchants := api.Group("/merchants", authenticated)
	merchants.Post("/register", d.Merchant.Register)
	merchants.Get("/profile", d.Merchant.Profile)
	merchants.Put("/profile", d.Merchant.UpdateProfile)
	merchants.Post("/kyc", d.Merchant.SubmitKYC)
	merchants.Get("/kyc/status", d.Merchant.KYCStatus)
	merchants.Get("/stats", d.Merchant.Stats)
	merchants.Get("/qr-codes", merchantOnly, d.QRCode.List)
	merchants.Put("/qr-codes/:id", merchantOnly, d.QRCode.SetActive)

	webhooks := api.Group("/webhooks", authenticated, merchantOnly)
	webhooks.Post("/", d.Webhook.Create)
	webhooks.Get("/", d.Webhook.List)
	webhooks.Put("/:id", d.Webhook.Update)
	webhooks.Delete("/:id", d.Webhook.Delete)
	webhooks.Post("/test/:id", d.Webhook.Test)

	analytics := api.Group("/analytics", authenticated, merchantOnly)
	analytics.Get("/overview", d.Analytics.Overview)
	analytics.Get("/transactions", d.Analytics.Transactions)
	analytics.Get("/revenue", d.Analytics.Revenue)
	analytics.Get("/payment-methods", d.Analytics.PaymentMethods)
	analytics.Get("/refunds", d.Analytics.Refunds)

	disputes := api.Group("/disputes", authenticated, merchantOnly)
	disputes.Post("/", d.Dispute.Open)
	disputes.Get("/", d.Dispute.List)

	admin := api.Group("/admin", authenticated, adminOnly)
	admin.Get("/dashboard", d.Admin.Dashboard)
	admin.Get("/users", d.Admin.Users)
	admin.Put("/users/:id", d.Admin.UpdateUser)
	admin.Get("/merchants", d.Admin.Merchants)
	admin.Put("/kyc/:merchantId", d.Admin.DecideKYC)
	admin.Get("/disputes", d.Admin.Disputes)
	admin.Put("/disputes/:id", d.Admin.UpdateDispute)
	admin.Get("/logs", d.Admin.AuditLogs)
}
