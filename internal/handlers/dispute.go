package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"payflow/internal/middleware"
	"payflow/internal/services/dispute"
	"payflow/internal/utils/pagination"
	"payflow/internal/utils/response"
	"payflow/internal/validation"
)

type DisputeHandler struct {
	disputes dispute.Service
}

func NewDisputeHandler(disputes dispute.Service) *DisputeHandler {
	return &DisputeHandler{disputes: disputes}
}

type openDisputeBody struct {
	TransactionID uint   `json:"transactionId"`
	Reason        string `json:"reason"`
}

func (h *DisputeHandler) Open(c *fiber.Ctx) error {
	var body openDisputeBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Check(body.TransactionID != 0, "transactionId", "must be provided")
	v.Required("reason", body.Reason)
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	claims := middleware.Claims(c)
	merchant := middleware.CurrentMerchant(c)

	d, err := h.disputes.Open(c.Context(), claims.UserID, merchant.ID, dispute.OpenRequest{
		TransactionID: body.TransactionID,
		Reason:        body.Reason,
	})
	switch {
	case errors.Is(err, dispute.ErrTransactionNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, dispute.ErrAccessDenied):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, dispute.ErrNotDisputable):
		return response.BadRequest(c, err.Error())
	case err != nil:
		return response.ServerError(c)
	}
	return response.Created(c, "Dispute opened", fiber.Map{"dispute": d})
}

func (h *DisputeHandler) List(c *fiber.Ctx) error {
	merchant := middleware.CurrentMerchant(c)

	page := pagination.ParseFromRequest(c)
	disputes, total, err := h.disputes.List(c.Context(), merchant.ID, c.Query("status"), page.Offset, page.Limit)
	if err != nil {
		return response.ServerError(c)
	}
	page.Total = total

	return response.Success(c, "", fiber.Map{
		"disputes":   disputes,
		"pagination": page.Envelope(),
	})
}
