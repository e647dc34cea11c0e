package models

import (
	"time"

	"gorm.io/gorm"
)

// Dispute statuses
const (
	DisputeStatusOpen        = "OPEN"
	DisputeStatusUnderReview = "UNDER_REVIEW"
	DisputeStatusResolved    = "RESOLVED"
	DisputeStatusClosed      = "CLOSED"
)

type Dispute struct {
	gorm.Model
	TransactionID uint   `gorm:"not null;index"`
	MerchantID    uint   `gorm:"not null;index"`
	RaisedByID    uint   `gorm:"not null"`
	Reason        string `gorm:"not null"`
	Status        string `gorm:"not null;default:'OPEN';index"`
	Resolution    string
	ResolvedAt    *time.Time
	Transaction   *Transaction `gorm:"foreignKey:TransactionID"`
}
