package models

import (
	"time"
)

// Audit actions written by mutating calls.
const (
	ActionUserRegistered   = "USER_REGISTERED"
	ActionUserLogin        = "USER_LOGIN"
	ActionUserLogout       = "USER_LOGOUT"
	ActionPasswordChanged  = "PASSWORD_CHANGED"
	ActionPasswordReset    = "PASSWORD_RESET"
	ActionEmailVerified    = "EMAIL_VERIFIED"
	ActionUserUpdated      = "USER_UPDATED"
	ActionPaymentCreated   = "PAYMENT_CREATED"
	ActionPaymentCompleted = "PAYMENT_COMPLETED"
	ActionPaymentFailed    = "PAYMENT_FAILED"
	ActionPaymentSimulated = "PAYMENT_SIMULATED"
	ActionPaymentLink      = "PAYMENT_LINK_CREATED"
	ActionQRCodeCreated    = "QR_CODE_CREATED"
	ActionRefundCreated    = "REFUND_CREATED"
	ActionMerchantCreated  = "MERCHANT_REGISTERED"
	ActionMerchantUpdated  = "MERCHANT_UPDATED"
	ActionKYCSubmitted     = "KYC_SUBMITTED"
	ActionKYCDecision      = "KYC_DECISION"
	ActionWebhookCreated   = "WEBHOOK_CREATED"
	ActionWebhookUpdated   = "WEBHOOK_UPDATED"
	ActionWebhookDeleted   = "WEBHOOK_DELETED"
	ActionDisputeOpened    = "DISPUTE_OPENED"
	ActionDisputeUpdated   = "DISPUTE_UPDATED"
)

// AuditLog is append-only. Rows are never updated or deleted.
type AuditLog struct {
	ID         uint      `gorm:"primarykey"`
	CreatedAt  time.Time `gorm:"index"`
	UserID     *uint     `gorm:"index"`
	Action     string    `gorm:"not null;index"`
	Resource   string    `gorm:"not null;index"`
	ResourceID string
	Details    JSON `gorm:"type:jsonb"`
	IPAddress  string
}
