// Package middleware carries the request guards shared by every route group.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"payflow/internal/models"
	"payflow/internal/repositories"
	"payflow/internal/utils"
	"payflow/internal/utils/response"
)

const (
	// ClaimsKey is the locals key the authenticated claims live under.
	ClaimsKey = "claims"
	// UserKey is the locals key the loaded user lives under.
	UserKey = "user"
)

// Authenticate validates the bearer token (or the "token" cookie), loads the
// user and rejects inactive accounts. Claims and user go into locals for the
// handlers downstream.
func Authenticate(users repositories.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			tokenStr = c.Cookies("token")
		}
		if tokenStr == "" {
			return response.Unauthorized(c, "Authentication required")
		}

		claims, err := utils.ParseAccessToken(tokenStr)
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}

		user, err := users.GetByID(c.Context(), claims.UserID)
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}
		if !user.IsActive {
			return response.Unauthorized(c, "Account is deactivated")
		}

		c.Locals(ClaimsKey, claims)
		c.Locals(UserKey, user)
		return c.Next()
	}
}

// Authorize allows only the listed roles past.
func Authorize(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		if claims == nil {
			return response.Unauthorized(c, "Authentication required")
		}
		if !claims.HasRole(roles...) {
			return response.Forbidden(c, "Insufficient permissions")
		}
		return c.Next()
	}
}

// RequireMerchant ensures the authenticated user owns a merchant account and
// stashes it in locals.
func RequireMerchant(merchants repositories.MerchantRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		if claims == nil {
			return response.Unauthorized(c, "Authentication required")
		}

		merchant, err := merchants.GetByUserID(c.Context(), claims.UserID)
		if err != nil {
			return response.Forbidden(c, "Merchant account required")
		}

		c.Locals("merchant", merchant)
		return c.Next()
	}
}

// Claims returns the authenticated claims, or nil outside Authenticate.
func Claims(c *fiber.Ctx) *models.UserClaims {
	claims, _ := c.Locals(ClaimsKey).(*models.UserClaims)
	return claims
}

// CurrentUser returns the authenticated user, or nil outside Authenticate.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(UserKey).(*models.User)
	return user
}

// CurrentMerchant returns the merchant loaded by RequireMerchant, or nil.
func CurrentMerchant(c *fiber.Ctx) *models.Merchant {
	merchant, _ := c.Locals("merchant").(*models.Merchant)
	return merchant
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
