package models

import (
	"gorm.io/gorm"
)

// QRCode is a merchant-scoped static payment descriptor. It records scans but
// is not itself a money-movement record.
type QRCode struct {
	gorm.Model
	MerchantID  uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Amount      *float64
	Description string
	ImageURL    string `gorm:"type:text"`
	IsActive    bool   `gorm:"not null;default:true"`
	ScanCount   int    `gorm:"not null;default:0"`
}
