package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentLink is a shareable, expiring payment request.
type PaymentLink struct {
	gorm.Model
	LinkID          string  `gorm:"uniqueIndex;not null"`
	MerchantID      uint    `gorm:"not null;index"`
	Amount          float64 `gorm:"not null"`
	Currency        string  `gorm:"not null;default:'INR'"`
	Description     string
	CustomerDetails JSON      `gorm:"type:jsonb"`
	ExpiresAt       time.Time `gorm:"not null"`
	IsActive        bool      `gorm:"not null;default:true"`
}

// Usable reports whether the link can still accept a payment.
func (l *PaymentLink) Usable(now time.Time) bool {
	return l.IsActive && l.ExpiresAt.After(now)
}
