package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"payflow/internal/middleware"
	"payflow/internal/models"
	"payflow/internal/services/merchant"
	"payflow/internal/utils/response"
	"payflow/internal/validation"
)

type MerchantHandler struct {
	merchants merchant.Service
}

func NewMerchantHandler(merchants merchant.Service) *MerchantHandler {
	return &MerchantHandler{merchants: merchants}
}

type merchantRegisterBody struct {
	BusinessName string      `json:"businessName"`
	BusinessType string      `json:"businessType"`
	GSTIN        string      `json:"gstin"`
	PAN          string      `json:"pan"`
	Address      models.JSON `json:"address"`
	BankDetails  models.JSON `json:"bankDetails"`
}

func (h *MerchantHandler) Register(c *fiber.Ctx) error {
	var body merchantRegisterBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.MerchantRegister(body.BusinessName, body.BusinessType, body.GSTIN, body.PAN)
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	claims := middleware.Claims(c)
	m, err := h.merchants.Register(c.Context(), claims.UserID, merchant.RegisterRequest{
		BusinessName: body.BusinessName,
		BusinessType: body.BusinessType,
		GSTIN:        body.GSTIN,
		PAN:          body.PAN,
		Address:      body.Address,
		BankDetails:  body.BankDetails,
	})
	if errors.Is(err, merchant.ErrAlreadyMerchant) {
		return response.Error(c, fiber.StatusConflict, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}

	return response.Created(c, "Merchant account created. Submit KYC documents to start processing.", fiber.Map{
		"merchant": m,
	})
}

func (h *MerchantHandler) Profile(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	m, err := h.merchants.Profile(c.Context(), claims.UserID)
	if errors.Is(err, merchant.ErrMerchantNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "", fiber.Map{"merchant": m})
}

type merchantUpdateBody struct {
	BusinessName string      `json:"businessName"`
	GSTIN        string      `json:"gstin"`
	Address      models.JSON `json:"address"`
	BankDetails  models.JSON `json:"bankDetails"`
}

func (h *MerchantHandler) UpdateProfile(c *fiber.Ctx) error {
	var body merchantUpdateBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	claims := middleware.Claims(c)
	m, err := h.merchants.UpdateProfile(c.Context(), claims.UserID, merchant.UpdateRequest{
		BusinessName: body.BusinessName,
		GSTIN:        body.GSTIN,
		Address:      body.Address,
		BankDetails:  body.BankDetails,
	})
	if errors.Is(err, merchant.ErrMerchantNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "Profile updated", fiber.Map{"merchant": m})
}

type kycSubmitBody struct {
	Documents models.JSON `json:"documents"`
}

func (h *MerchantHandler) SubmitKYC(c *fiber.Ctx) error {
	var body kycSubmitBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if body.Documents == nil {
		return response.BadRequest(c, "KYC documents are required")
	}

	claims := middleware.Claims(c)
	m, err := h.merchants.SubmitKYC(c.Context(), claims.UserID, body.Documents)
	switch {
	case errors.Is(err, merchant.ErrMerchantNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, merchant.ErrKYCNotResubmittable):
		return response.BadRequest(c, err.Error())
	case err != nil:
		return response.ServerError(c)
	}
	return response.Success(c, "KYC documents submitted for review", fiber.Map{"merchant": m})
}

func (h *MerchantHandler) KYCStatus(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	status, reason, err := h.merchants.KYCStatus(c.Context(), claims.UserID)
	if errors.Is(err, merchant.ErrMerchantNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}

	body := fiber.Map{"kycStatus": status}
	if reason != "" {
		body["reason"] = reason
	}
	return response.Success(c, "", body)
}

func (h *MerchantHandler) Stats(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	stats, err := h.merchants.Stats(c.Context(), claims.UserID)
	if errors.Is(err, merchant.ErrMerchantNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "", fiber.Map{"stats": stats})
}
