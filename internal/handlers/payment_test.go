package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payflow/internal/middleware"
	"payflow/internal/models"
	"payflow/internal/repositories"
	"payflow/internal/services/payment"
)

// stubPaymentService overrides only the listing; everything else panics if
// reached.
type stubPaymentService struct {
	payment.Service
	gotMerchantID uint
	transactions  []models.Transaction
}

func (s *stubPaymentService) ListMerchantPayments(ctx context.Context, merchantID uint, filter repositories.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error) {
	s.gotMerchantID = merchantID
	return s.transactions, int64(len(s.transactions)), nil
}

func withClaims(claims *models.UserClaims) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.ClaimsKey, claims)
		return c.Next()
	}
}

func TestMerchantPaymentsByID(t *testing.T) {
	t.Run("admin lists any merchant by id", func(t *testing.T) {
		svc := &stubPaymentService{transactions: []models.Transaction{{OrderID: "ORDER_1_AAAAAAAAA"}}}
		h := NewPaymentHandler(svc)

		app := fiber.New()
		app.Get("/payments/merchant/:merchantId",
			withClaims(&models.UserClaims{UserID: 99, Role: models.RoleAdmin}),
			h.MerchantPaymentsByID,
		)

		resp, err := app.Test(httptest.NewRequest("GET", "/payments/merchant/42", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, uint(42), svc.gotMerchantID)

		var body struct {
			Success bool `json:"success"`
			Data    struct {
				Transactions []models.Transaction `json:"transactions"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Success)
		assert.Len(t, body.Data.Transactions, 1)
	})

	t.Run("non-numeric merchant id is rejected", func(t *testing.T) {
		svc := &stubPaymentService{}
		h := NewPaymentHandler(svc)

		app := fiber.New()
		app.Get("/payments/merchant/:merchantId",
			withClaims(&models.UserClaims{UserID: 99, Role: models.RoleAdmin}),
			h.MerchantPaymentsByID,
		)

		resp, err := app.Test(httptest.NewRequest("GET", "/payments/merchant/abc", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Zero(t, svc.gotMerchantID)
	})
}
