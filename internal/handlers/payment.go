package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"payflow/internal/middleware"
	"payflow/internal/models"
	"payflow/internal/repositories"
	"payflow/internal/services/payment"
	"payflow/internal/utils/pagination"
	"payflow/internal/utils/response"
	"payflow/internal/validation"
)

type PaymentHandler struct {
	payments payment.Service
}

func NewPaymentHandler(payments payment.Service) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type createPaymentBody struct {
	Amount          float64     `json:"amount"`
	Currency        string      `json:"currency"`
	CustomerDetails models.JSON `json:"customerDetails"`
	Description     string      `json:"description"`
	Metadata        models.JSON `json:"metadata"`
}

func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	var body createPaymentBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.CreatePayment(body.Amount, body.Currency, body.CustomerDetails)
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	merchant := middleware.CurrentMerchant(c)
	claims := middleware.Claims(c)

	result, err := h.payments.CreatePayment(c.Context(), merchant.ID, claims.UserID, payment.CreatePaymentRequest{
		Amount:          body.Amount,
		Currency:        body.Currency,
		CustomerDetails: body.CustomerDetails,
		Description:     body.Description,
		Metadata:        body.Metadata,
	})
	if err != nil {
		var bounds *payment.AmountBoundsError
		switch {
		case errors.As(err, &bounds):
			return response.BadRequest(c, bounds.Error())
		case errors.Is(err, payment.ErrDailyLimitExceeded):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, payment.ErrMerchantInactive):
			return response.Forbidden(c, err.Error())
		default:
			return response.ServerError(c)
		}
	}

	return response.Created(c, "Payment created", fiber.Map{
		"transaction": result.Transaction,
		"paymentUrl":  result.PaymentURL,
	})
}

type processPaymentBody struct {
	OrderID        string      `json:"orderId"`
	PaymentMethod  string      `json:"paymentMethod"`
	PaymentDetails models.JSON `json:"paymentDetails"`
}

func (h *PaymentHandler) Process(c *fiber.Ctx) error {
	var body processPaymentBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.ProcessPayment(body.OrderID, body.PaymentMethod)
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	t, err := h.payments.ProcessPayment(c.Context(), payment.ProcessPaymentRequest{
		OrderID:        body.OrderID,
		PaymentMethod:  body.PaymentMethod,
		PaymentDetails: body.PaymentDetails,
	})
	switch {
	case errors.Is(err, payment.ErrTransactionNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, payment.ErrNotPending):
		return response.BadRequest(c, err.Error())
	case err != nil:
		return response.ServerError(c)
	}

	return response.Success(c, "Payment processed", fiber.Map{"transaction": t})
}

func (h *PaymentHandler) Status(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	t, err := h.payments.GetPaymentStatus(c.Context(), orderID)
	if errors.Is(err, payment.ErrTransactionNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "", fiber.Map{"transaction": t})
}

type refundBody struct {
	TransactionID uint    `json:"transactionId"`
	Amount        float64 `json:"amount"`
	Reason        string  `json:"reason"`
}

func (h *PaymentHandler) Refund(c *fiber.Ctx) error {
	var body refundBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.CreateRefund(body.TransactionID, body.Amount, body.Reason)
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	merchant := middleware.CurrentMerchant(c)
	claims := middleware.Claims(c)

	refund, err := h.payments.CreateRefund(c.Context(), merchant.ID, claims.UserID, payment.RefundRequest{
		TransactionID: body.TransactionID,
		Amount:        body.Amount,
		Reason:        body.Reason,
	})
	switch {
	case errors.Is(err, payment.ErrTransactionNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, payment.ErrAccessDenied):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, payment.ErrNotRefundable), errors.Is(err, payment.ErrRefundExceedsRemainder):
		return response.BadRequest(c, err.Error())
	case err != nil:
		return response.ServerError(c)
	}

	return response.Created(c, "Refund created", fiber.Map{"refund": refund})
}

func (h *PaymentHandler) GetRefund(c *fiber.Ctx) error {
	refund, err := h.payments.GetRefund(c.Context(), c.Params("refundId"))
	if errors.Is(err, payment.ErrRefundNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "", fiber.Map{"refund": refund})
}

type simulateBody struct {
	OrderID       string `json:"orderId"`
	Status        string `json:"status"`
	FailureReason string `json:"failureReason"`
}

func (h *PaymentHandler) Simulate(c *fiber.Ctx) error {
	var body simulateBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Required("orderId", body.OrderID)
	v.OneOf("status", body.Status, []string{models.StatusCompleted, models.StatusFailed})
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	claims := middleware.Claims(c)
	t, err := h.payments.SimulatePayment(c.Context(), claims.UserID, payment.SimulateRequest{
		OrderID:       body.OrderID,
		Status:        body.Status,
		FailureReason: body.FailureReason,
	})
	if errors.Is(err, payment.ErrTransactionNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "Payment simulated", fiber.Map{"transaction": t})
}

type callbackBody struct {
	OrderID              string      `json:"orderId"`
	Status               string      `json:"status"`
	GatewayTransactionID string      `json:"gatewayTransactionId"`
	Raw                  models.JSON `json:"raw"`
}

func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	var body callbackBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	err := h.payments.HandleCallback(c.Context(), payment.CallbackRequest{
		OrderID:              body.OrderID,
		Status:               body.Status,
		GatewayTransactionID: body.GatewayTransactionID,
		Raw:                  body.Raw,
	})
	if errors.Is(err, payment.ErrTransactionNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "Callback accepted", nil)
}

type createLinkBody struct {
	Amount          float64     `json:"amount"`
	Currency        string      `json:"currency"`
	Description     string      `json:"description"`
	ExpiresAt       *time.Time  `json:"expiresAt"`
	CustomerDetails models.JSON `json:"customerDetails"`
}

func (h *PaymentHandler) CreateLink(c *fiber.Ctx) error {
	var body createLinkBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Positive("amount", body.Amount)
	if body.ExpiresAt != nil {
		v.Future("expiresAt", *body.ExpiresAt)
	}
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	merchant := middleware.CurrentMerchant(c)
	claims := middleware.Claims(c)

	link, url, err := h.payments.CreatePaymentLink(c.Context(), merchant.ID, claims.UserID, payment.LinkRequest{
		Amount:          body.Amount,
		Currency:        body.Currency,
		Description:     body.Description,
		ExpiresAt:       body.ExpiresAt,
		CustomerDetails: body.CustomerDetails,
	})
	if err != nil {
		return response.ServerError(c)
	}

	return response.Created(c, "Payment link created", fiber.Map{
		"link":       link,
		"paymentUrl": url,
	})
}

func (h *PaymentHandler) GetLink(c *fiber.Ctx) error {
	link, err := h.payments.GetPaymentLink(c.Context(), c.Params("linkId"))
	if errors.Is(err, payment.ErrLinkNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "", fiber.Map{"link": link})
}

// MerchantPayments lists the authenticated merchant's own transactions with
// status/date filters.
func (h *PaymentHandler) MerchantPayments(c *fiber.Ctx) error {
	merchant := middleware.CurrentMerchant(c)
	return h.listPayments(c, merchant.ID)
}

// MerchantPaymentsByID is the operator view of any merchant's transactions.
func (h *PaymentHandler) MerchantPaymentsByID(c *fiber.Ctx) error {
	merchantID, err := strconv.ParseUint(c.Params("merchantId"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid merchant id")
	}
	return h.listPayments(c, uint(merchantID))
}

func (h *PaymentHandler) listPayments(c *fiber.Ctx, merchantID uint) error {
	filter := repositories.TransactionFilter{Status: c.Query("status")}
	if filter.Status != "" {
		v := validation.New()
		v.OneOf("status", filter.Status, validation.TransactionStatuses)
		if !v.Valid() {
			return response.ValidationErrors(c, v.Errors)
		}
	}
	if from := c.Query("startDate"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.StartDate = &t
		}
	}
	if to := c.Query("endDate"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.EndDate = &t
		}
	}

	page := pagination.ParseFromRequest(c)
	txs, total, err := h.payments.ListMerchantPayments(c.Context(), merchantID, filter, page.Offset, page.Limit)
	if err != nil {
		return response.ServerError(c)
	}
	page.Total = total

	return response.Success(c, "", fiber.Map{
		"transactions": txs,
		"pagination":   page.Envelope(),
	})
}

// Transaction returns one of the merchant's transactions by numeric ID.
// Admins can read any transaction.
func (h *PaymentHandler) Transaction(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid transaction id")
	}

	t, err := h.payments.GetTransaction(c.Context(), uint(id))
	if errors.Is(err, payment.ErrTransactionNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}

	claims := middleware.Claims(c)
	if !claims.IsAdmin() {
		merchant := middleware.CurrentMerchant(c)
		if merchant == nil || t.MerchantID != merchant.ID {
			return response.Forbidden(c, "Access denied")
		}
	}
	return response.Success(c, "", fiber.Map{"transaction": t})
}
