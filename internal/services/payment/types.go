package payment

import (
	"context"
	"time"

	"payflow/internal/models"
)

// Config carries the engine's tunables.
type Config struct {
	ClientURL   string
	RefundDelay time.Duration
}

// DefaultRefundDelay is how long a refund stays PENDING before the sweep
// worker completes it.
const DefaultRefundDelay = 2 * time.Second

type CreatePaymentRequest struct {
	Amount          float64
	Currency        string
	CustomerDetails models.JSON
	Description     string
	Metadata        models.JSON
}

type CreatePaymentResult struct {
	Transaction *models.Transaction
	PaymentURL  string
}

type ProcessPaymentRequest struct {
	OrderID        string
	PaymentMethod  string
	PaymentDetails models.JSON
}

type RefundRequest struct {
	TransactionID uint
	Amount        float64
	Reason        string
}

type SimulateRequest struct {
	OrderID       string
	Status        string
	FailureReason string
}

type CallbackRequest struct {
	OrderID              string
	Status               string
	GatewayTransactionID string
	Raw                  models.JSON
}

type LinkRequest struct {
	Amount          float64
	Currency        string
	Description     string
	ExpiresAt       *time.Time
	CustomerDetails models.JSON
}

// EventEmitter pushes payment lifecycle events to merchant webhooks.
// Implementations must not block the caller.
type EventEmitter interface {
	Emit(ctx context.Context, merchantID uint, event string, payload models.JSON)
}

// NoopEmitter discards events.
type NoopEmitter struct{}

func (NoopEmitter) Emit(context.Context, uint, string, models.JSON) {}

// MetricsCollector records engine activity. The prometheus implementation
// lives in internal/metrics; tests use NoopMetrics.
type MetricsCollector interface {
	RecordCreated(amount float64)
	RecordOutcome(status string, amount float64, duration time.Duration)
	RecordRefundCreated(amount float64)
	RecordRefundsSwept(count int)
}

// NoopMetrics is a no-op implementation of MetricsCollector.
type NoopMetrics struct{}

func (NoopMetrics) RecordCreated(float64)                        {}
func (NoopMetrics) RecordOutcome(string, float64, time.Duration) {}
func (NoopMetrics) RecordRefundCreated(float64)                  {}
func (NoopMetrics) RecordRefundsSwept(int)                       {}
