package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims is the access-token payload attached to authenticated requests.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID     uint   `json:"user_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	MerchantID *uint  `json:"merchant_id,omitempty"`
}

// RefreshClaims carries only the identity needed to mint a new access token.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID uint `json:"user_id"`
}

// HasRole reports whether the claims' role is in the allowed set.
func (c *UserClaims) HasRole(roles ...string) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the claims carry an admin role.
func (c *UserClaims) IsAdmin() bool {
	return c.Role == RoleAdmin || c.Role == RoleSuperAdmin
}
