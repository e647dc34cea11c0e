package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"payflow/internal/middleware"
	"payflow/internal/models"
	"payflow/internal/repositories"
	"payflow/internal/services/admin"
	"payflow/internal/utils/pagination"
	"payflow/internal/utils/response"
	"payflow/internal/validation"
)

type AdminHandler struct {
	admin admin.Service
}

func NewAdminHandler(adminSvc admin.Service) *AdminHandler {
	return &AdminHandler{admin: adminSvc}
}

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.admin.Dashboard(c.Context())
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "", fiber.Map{"dashboard": dashboard})
}

func (h *AdminHandler) Users(c *fiber.Ctx) error {
	filter := repositories.UserFilter{Role: c.Query("role")}
	if active := c.Query("isActive"); active != "" {
		b := active == "true"
		filter.IsActive = &b
	}

	page := pagination.ParseFromRequest(c)
	users, total, err := h.admin.ListUsers(c.Context(), filter, page.Offset, page.Limit)
	if err != nil {
		return response.ServerError(c)
	}
	page.Total = total

	return response.Success(c, "", fiber.Map{
		"users":      users,
		"pagination": page.Envelope(),
	})
}

type userUpdateBody struct {
	IsActive *bool  `json:"isActive"`
	Role     string `json:"role"`
}

func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	var body userUpdateBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if body.IsActive == nil && body.Role == "" {
		return response.BadRequest(c, "Nothing to update")
	}

	claims := middleware.Claims(c)
	user, err := h.admin.UpdateUser(c.Context(), claims.UserID, uint(id), admin.UserUpdateRequest{
		IsActive: body.IsActive,
		Role:     body.Role,
	})
	switch {
	case errors.Is(err, admin.ErrInvalidRole):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, admin.ErrUserNotFound):
		return response.NotFound(c, err.Error())
	case err != nil:
		return response.ServerError(c)
	}
	return response.Success(c, "User updated", fiber.Map{"user": user})
}

func (h *AdminHandler) Merchants(c *fiber.Ctx) error {
	filter := repositories.MerchantFilter{KYCStatus: c.Query("kycStatus")}
	if filter.KYCStatus != "" {
		v := validation.New()
		v.OneOf("kycStatus", filter.KYCStatus, []string{
			models.KYCStatusPending, models.KYCStatusSubmitted,
			models.KYCStatusApproved, models.KYCStatusRejected,
		})
		if !v.Valid() {
			return response.ValidationErrors(c, v.Errors)
		}
	}

	page := pagination.ParseFromRequest(c)
	merchants, total, err := h.admin.ListMerchants(c.Context(), filter, page.Offset, page.Limit)
	if err != nil {
		return response.ServerError(c)
	}
	page.Total = total

	return response.Success(c, "", fiber.Map{
		"merchants":  merchants,
		"pagination": page.Envelope(),
	})
}

type kycDecisionBody struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *AdminHandler) DecideKYC(c *fiber.Ctx) error {
	merchantID, err := strconv.ParseUint(c.Params("merchantId"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid merchant id")
	}

	var body kycDecisionBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	claims := middleware.Claims(c)
	merchant, err := h.admin.DecideKYC(c.Context(), claims.UserID, uint(merchantID), admin.KYCDecisionRequest{
		Status: body.Status,
		Reason: body.Reason,
	})
	switch {
	case errors.Is(err, admin.ErrInvalidDecision), errors.Is(err, admin.ErrRejectionReason),
		errors.Is(err, admin.ErrKYCNotSubmitted):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, admin.ErrMerchantNotFound):
		return response.NotFound(c, err.Error())
	case err != nil:
		return response.ServerError(c)
	}
	return response.Success(c, "KYC decision recorded", fiber.Map{"merchant": merchant})
}

func (h *AdminHandler) Disputes(c *fiber.Ctx) error {
	filter := repositories.DisputeFilter{Status: c.Query("status")}

	page := pagination.ParseFromRequest(c)
	disputes, total, err := h.admin.ListDisputes(c.Context(), filter, page.Offset, page.Limit)
	if err != nil {
		return response.ServerError(c)
	}
	page.Total = total

	return response.Success(c, "", fiber.Map{
		"disputes":   disputes,
		"pagination": page.Envelope(),
	})
}

type disputeUpdateBody struct {
	Status     string `json:"status"`
	Resolution string `json:"resolution"`
}

func (h *AdminHandler) UpdateDispute(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid dispute id")
	}

	var body disputeUpdateBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if body.Status != "" {
		v := validation.New()
		v.OneOf("status", body.Status, []string{
			models.DisputeStatusOpen, models.DisputeStatusUnderReview,
			models.DisputeStatusResolved, models.DisputeStatusClosed,
		})
		if !v.Valid() {
			return response.ValidationErrors(c, v.Errors)
		}
	}

	claims := middleware.Claims(c)
	dispute, err := h.admin.UpdateDispute(c.Context(), claims.UserID, uint(id), admin.DisputeUpdateRequest{
		Status:     body.Status,
		Resolution: body.Resolution,
	})
	if errors.Is(err, admin.ErrDisputeNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "Dispute updated", fiber.Map{"dispute": dispute})
}

func (h *AdminHandler) AuditLogs(c *fiber.Ctx) error {
	filter := repositories.AuditFilter{
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
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
	logs, total, err := h.admin.AuditLogs(c.Context(), filter, page.Offset, page.Limit)
	if err != nil {
		return response.ServerError(c)
	}
	page.Total = total

	return response.Success(c, "", fiber.Map{
		"logs":       logs,
		"pagination": page.Envelope(),
	})
}
