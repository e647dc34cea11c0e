package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleUser       = "USER"
	RoleMerchant   = "MERCHANT"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

// UserRoles lists every assignable role.
var UserRoles = []string{RoleUser, RoleMerchant, RoleAdmin, RoleSuperAdmin}

type User struct {
	gorm.Model
	Email            string     `gorm:"uniqueIndex;not null"`
	Password         string     `gorm:"not null" json:"-"`
	FirstName        string     `gorm:"not null"`
	LastName         string
	Phone            string
	Avatar           string
	Role             string     `gorm:"not null;default:'USER'"`
	IsActive         bool       `gorm:"not null;default:true"`
	IsVerified       bool       `gorm:"not null;default:false"`
	EmailVerified    bool       `gorm:"not null;default:false"`
	PhoneVerified    bool       `gorm:"not null;default:false"`
	TwoFactorEnabled bool       `gorm:"not null;default:false"`
	IPWhitelist      StringList `gorm:"type:jsonb"`
	LoginAttempts    int        `gorm:"not null;default:0"`
	LockedUntil      *time.Time
	LastLogin        *time.Time
	Merchant         *Merchant  `gorm:"foreignKey:UserID"`
}

// Locked reports whether the account lockout window is still open.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}
