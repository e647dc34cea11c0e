package models

import (
	"gorm.io/gorm"
)

// Webhook events emitted by the payment engine.
const (
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
	EventRefundCreated    = "refund.created"
	EventRefundCompleted  = "refund.completed"
)

// WebhookEvents lists every event a webhook may subscribe to.
var WebhookEvents = []string{
	EventPaymentCompleted,
	EventPaymentFailed,
	EventRefundCreated,
	EventRefundCompleted,
}

// Webhook is a merchant-owned endpoint subscription. Deliveries are signed
// with the per-webhook secret.
type Webhook struct {
	gorm.Model
	MerchantID uint       `gorm:"not null;index"`
	Name       string     `gorm:"not null"`
	URL        string     `gorm:"not null"`
	Events     StringList `gorm:"type:jsonb;not null"`
	Secret     string     `gorm:"not null" json:"-"`
	IsActive   bool       `gorm:"not null;default:true"`
}

// WebhookDelivery records one delivery attempt, success or not.
type WebhookDelivery struct {
	gorm.Model
	WebhookID  uint   `gorm:"not null;index"`
	Event      string `gorm:"not null"`
	Payload    JSON   `gorm:"type:jsonb"`
	StatusCode int
	Success    bool  `gorm:"not null;default:false"`
	DurationMS int64 `gorm:"not null;default:0"`
	Error      string
}
