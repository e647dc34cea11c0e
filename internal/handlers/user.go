package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"payflow/internal/middleware"
	"payflow/internal/repositories"
	"payflow/internal/services/user"
	"payflow/internal/utils/pagination"
	"payflow/internal/utils/response"
	"payflow/internal/validation"
)

type UserHandler struct {
	users user.Service
}

func NewUserHandler(users user.Service) *UserHandler {
	return &UserHandler{users: users}
}

type profileBody struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Avatar    string `json:"avatar"`
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var body profileBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if body.Phone != "" {
		v := validation.New()
		v.Phone("phone", body.Phone)
		if !v.Valid() {
			return response.ValidationErrors(c, v.Errors)
		}
	}

	claims := middleware.Claims(c)
	updated, err := h.users.UpdateProfile(c.Context(), claims.UserID, user.ProfileUpdate{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Phone:     body.Phone,
		Avatar:    body.Avatar,
	})
	if errors.Is(err, user.ErrUserNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "Profile updated", fiber.Map{"user": updated})
}

func (h *UserHandler) Settings(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	settings, err := h.users.Settings(c.Context(), claims.UserID)
	if errors.Is(err, user.ErrUserNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "", fiber.Map{"settings": settings})
}

type settingsBody struct {
	TwoFactorEnabled *bool    `json:"twoFactorEnabled"`
	IPWhitelist      []string `json:"ipWhitelist"`
}

func (h *UserHandler) UpdateSettings(c *fiber.Ctx) error {
	var body settingsBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if body.TwoFactorEnabled == nil && body.IPWhitelist == nil {
		return response.BadRequest(c, "Nothing to update")
	}

	claims := middleware.Claims(c)
	settings, err := h.users.UpdateSettings(c.Context(), claims.UserID, user.SettingsUpdate{
		TwoFactorEnabled: body.TwoFactorEnabled,
		IPWhitelist:      body.IPWhitelist,
	})
	if errors.Is(err, user.ErrUserNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "Settings updated", fiber.Map{"settings": settings})
}

// Transactions lists the caller's own processing history with the same
// filters as the merchant listing.
func (h *UserHandler) Transactions(c *fiber.Ctx) error {
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

	claims := middleware.Claims(c)
	page := pagination.ParseFromRequest(c)
	txs, total, err := h.users.Transactions(c.Context(), claims.UserID, filter, page.Offset, page.Limit)
	if err != nil {
		return response.ServerError(c)
	}
	page.Total = total

	return response.Success(c, "", fiber.Map{
		"transactions": txs,
		"pagination":   page.Envelope(),
	})
}
