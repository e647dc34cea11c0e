package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction statuses. CANCELLED is declared for API compatibility but no
// flow currently produces it.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusRefunded   = "REFUNDED"
	StatusCancelled  = "CANCELLED"
)

// Payment methods
const (
	MethodUPI        = "UPI"
	MethodCard       = "CARD"
	MethodNetBanking = "NETBANKING"
	MethodWallet     = "WALLET"
)

// Transaction is a single payment attempt owned by one merchant.
type Transaction struct {
	gorm.Model
	MerchantID      uint    `gorm:"not null;index"`
	OrderID         string  `gorm:"uniqueIndex;not null"`
	Amount          float64 `gorm:"not null"`
	Currency        string  `gorm:"not null;default:'INR'"`
	Status          string  `gorm:"not null;default:'PENDING';index"`
	PaymentMethod   string  `gorm:"not null;default:'UPI'"`
	PaymentDetails  JSON    `gorm:"type:jsonb"`
	CustomerDetails JSON    `gorm:"type:jsonb"`
	Description     string
	Metadata        JSON    `gorm:"type:jsonb"`
	Fees            float64 `gorm:"not null;default:0"`
	Commission      float64 `gorm:"not null;default:0"`
	NetAmount       float64 `gorm:"not null;default:0"`
	RefundedAmount  float64 `gorm:"not null;default:0"`
	FailureReason   string
	GatewayResponse JSON `gorm:"type:jsonb"`
	ProcessedAt     *time.Time
	CompletedAt     *time.Time
	FailedAt        *time.Time
	Merchant        *Merchant `gorm:"foreignKey:MerchantID"`
	Refunds         []Refund  `gorm:"foreignKey:TransactionID"`
}

// RefundableAmount is the remainder still eligible for refund.
func (t *Transaction) RefundableAmount() float64 {
	return t.Amount - t.RefundedAmount
}
