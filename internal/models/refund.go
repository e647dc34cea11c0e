package models

import (
	"time"

	"gorm.io/gorm"
)

// Refund statuses
const (
	RefundStatusPending   = "PENDING"
	RefundStatusCompleted = "COMPLETED"
)

// Refund is a child of exactly one transaction. A pending refund carries a
// ScheduledFor time and is completed by the sweep worker, so a restart does
// not lose it.
type Refund struct {
	gorm.Model
	TransactionID uint    `gorm:"not null;index"`
	MerchantID    uint    `gorm:"not null;index"`
	UserID        uint    `gorm:"not null"`
	RefundID      string  `gorm:"uniqueIndex;not null"`
	Amount        float64 `gorm:"not null"`
	Reason        string
	Status        string    `gorm:"not null;default:'PENDING';index"`
	ScheduledFor  time.Time `gorm:"not null;index"`
	ProcessedAt   *time.Time
	Transaction   *Transaction `gorm:"foreignKey:TransactionID"`
}
