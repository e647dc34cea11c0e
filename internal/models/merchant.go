package models

import (
	"gorm.io/gorm"
)

// KYC statuses
const (
	KYCStatusPending   = "PENDING"
	KYCStatusSubmitted = "SUBMITTED"
	KYCStatusApproved  = "APPROVED"
	KYCStatusRejected  = "REJECTED"
)

// Business types accepted at merchant registration.
var BusinessTypes = []string{
	"INDIVIDUAL", "PARTNERSHIP", "PRIVATE_LIMITED",
	"PUBLIC_LIMITED", "LLP", "PROPRIETORSHIP",
}

type Merchant struct {
	gorm.Model
	UserID         uint   `gorm:"uniqueIndex;not null"`
	BusinessName   string `gorm:"not null"`
	BusinessType   string `gorm:"not null"`
	GSTIN          string
	PAN            string
	Address        JSON   `gorm:"type:jsonb"`
	BankDetails    JSON   `gorm:"type:jsonb"`
	KYCStatus      string `gorm:"not null;default:'PENDING'"`
	KYCDocuments   JSON   `gorm:"type:jsonb"`
	KYCReason      string
	IsActive       bool    `gorm:"not null;default:true"`
	MinAmount      float64 `gorm:"not null;default:1"`
	MaxAmount      float64 `gorm:"not null;default:100000"`
	DailyLimit     float64 `gorm:"not null;default:50000"`
	CommissionRate float64 `gorm:"not null;default:2"`
	TotalProcessed float64 `gorm:"not null;default:0"`
	TotalFees      float64 `gorm:"not null;default:0"`
}
