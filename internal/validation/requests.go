package validation

import (
	"payflow/internal/models"
)

// Periods accepted by the analytics lookback window.
var Periods = []string{"7d", "30d", "90d", "1y"}

// Groupings accepted by the analytics time bucket.
var Groupings = []string{"day", "week", "month"}

// PaymentMethods accepted at processing time.
var PaymentMethods = []string{
	models.MethodUPI, models.MethodCard, models.MethodNetBanking, models.MethodWallet,
}

// TransactionStatuses lists every declared status, including CANCELLED which
// no flow currently produces.
var TransactionStatuses = []string{
	models.StatusPending, models.StatusProcessing, models.StatusCompleted,
	models.StatusFailed, models.StatusRefunded, models.StatusCancelled,
}

// Register validates a registration request.
func (v *Validator) Register(email, password, firstName string) {
	v.Required("email", email)
	v.Email("email", email)
	v.Required("firstName", firstName)
	v.Password("password", password)
}

// CreatePayment validates a payment creation request. Merchant-level bounds
// are enforced by the engine, not here.
func (v *Validator) CreatePayment(amount float64, currency string, customer models.JSON) {
	v.Positive("amount", amount)
	if currency != "" {
		v.Check(len(currency) == 3, "currency", "must be a 3-letter code")
	}
	v.Check(customer != nil, "customerDetails", "must be provided")
}

// ProcessPayment validates a payment processing request.
func (v *Validator) ProcessPayment(orderID, method string) {
	v.Required("orderId", orderID)
	v.OneOf("paymentMethod", method, PaymentMethods)
}

// CreateRefund validates a refund creation request.
func (v *Validator) CreateRefund(transactionID uint, amount float64, reason string) {
	v.Check(transactionID != 0, "transactionId", "must be provided")
	v.Positive("amount", amount)
	v.Required("reason", reason)
}

// MerchantRegister validates a merchant onboarding request.
func (v *Validator) MerchantRegister(businessName, businessType, gstin, pan string) {
	v.Required("businessName", businessName)
	v.OneOf("businessType", businessType, models.BusinessTypes)
	if gstin != "" {
		v.Check(len(gstin) == 15, "gstin", "must be 15 characters")
	}
	if pan != "" {
		v.Check(len(pan) == 10, "pan", "must be 10 characters")
	}
}

// Webhook validates a webhook subscription request.
func (v *Validator) Webhook(name, webhookURL string, events []string) {
	v.Required("name", name)
	v.URL("url", webhookURL)
	v.Check(len(events) > 0, "events", "must contain at least one event")
	for _, e := range events {
		v.OneOf("events", e, models.WebhookEvents)
	}
}

// Analytics validates the lookback window and grouping parameters.
func (v *Validator) Analytics(period, groupBy string) {
	if period != "" {
		v.OneOf("period", period, Periods)
	}
	if groupBy != "" {
		v.OneOf("groupBy", groupBy, Groupings)
	}
}
