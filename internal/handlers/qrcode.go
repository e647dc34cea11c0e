package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"payflow/internal/middleware"
	"payflow/internal/services/qrcode"
	"payflow/internal/utils/response"
	"payflow/internal/validation"
)

type QRCodeHandler struct {
	qrcodes qrcode.Service
}

func NewQRCodeHandler(qrcodes qrcode.Service) *QRCodeHandler {
	return &QRCodeHandler{qrcodes: qrcodes}
}

type createQRBody struct {
	Name        string   `json:"name"`
	Amount      *float64 `json:"amount"`
	Description string   `json:"description"`
}

func (h *QRCodeHandler) Create(c *fiber.Ctx) error {
	var body createQRBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Required("name", body.Name)
	if body.Amount != nil {
		v.Positive("amount", *body.Amount)
	}
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	merchant := middleware.CurrentMerchant(c)
	qr, err := h.qrcodes.Create(c.Context(), merchant.ID, qrcode.CreateRequest{
		Name:        body.Name,
		Amount:      body.Amount,
		Description: body.Description,
	})
	if err != nil {
		return response.ServerError(c)
	}
	return response.Created(c, "QR code created", fiber.Map{"qrCode": qr})
}

func (h *QRCodeHandler) List(c *fiber.Ctx) error {
	merchant := middleware.CurrentMerchant(c)
	qrs, err := h.qrcodes.List(c.Context(), merchant.ID)
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "", fiber.Map{"qrCodes": qrs})
}

// Scan is the public customer-facing resolution of a QR code.
func (h *QRCodeHandler) Scan(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid QR code id")
	}

	qr, err := h.qrcodes.Scan(c.Context(), uint(id))
	if errors.Is(err, qrcode.ErrQRCodeNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "", fiber.Map{"qrCode": qr})
}

type qrActiveBody struct {
	IsActive *bool `json:"isActive"`
}

func (h *QRCodeHandler) SetActive(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid QR code id")
	}

	var body qrActiveBody
	if err := c.BodyParser(&body); err != nil || body.IsActive == nil {
		return response.BadRequest(c, "isActive is required")
	}

	merchant := middleware.CurrentMerchant(c)
	qr, err := h.qrcodes.SetActive(c.Context(), merchant.ID, uint(id), *body.IsActive)
	if errors.Is(err, qrcode.ErrQRCodeNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "QR code updated", fiber.Map{"qrCode": qr})
}
