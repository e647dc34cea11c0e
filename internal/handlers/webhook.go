package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"payflow/internal/middleware"
	"payflow/internal/services/webhook"
	"payflow/internal/utils/response"
	"payflow/internal/validation"
)

type WebhookHandler struct {
	webhooks webhook.Service
}

func NewWebhookHandler(webhooks webhook.Service) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

type webhookBody struct {
	Name     string   `json:"name"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	IsActive *bool    `json:"isActive"`
}

func (h *WebhookHandler) Create(c *fiber.Ctx) error {
	var body webhookBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Webhook(body.Name, body.URL, body.Events)
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	merchant := middleware.CurrentMerchant(c)
	wh, err := h.webhooks.Create(c.Context(), merchant.ID, webhook.CreateRequest{
		Name:   body.Name,
		URL:    body.URL,
		Events: body.Events,
	})
	if err != nil {
		return response.ServerError(c)
	}

	// The secret is returned exactly once, at creation.
	return response.Created(c, "Webhook created", fiber.Map{
		"webhook": wh,
		"secret":  wh.Secret,
	})
}

func (h *WebhookHandler) List(c *fiber.Ctx) error {
	merchant := middleware.CurrentMerchant(c)
	webhooks, err := h.webhooks.List(c.Context(), merchant.ID)
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "", fiber.Map{"webhooks": webhooks})
}

func (h *WebhookHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid webhook id")
	}

	var body webhookBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if body.URL != "" || body.Events != nil {
		v := validation.New()
		if body.URL != "" {
			v.URL("url", body.URL)
		}
		if body.Events != nil {
			v.Webhook(body.Name, body.URL, body.Events)
		}
		if !v.Valid() {
			return response.ValidationErrors(c, v.Errors)
		}
	}

	merchant := middleware.CurrentMerchant(c)
	wh, err := h.webhooks.Update(c.Context(), merchant.ID, uint(id), webhook.UpdateRequest{
		Name:     body.Name,
		URL:      body.URL,
		Events:   body.Events,
		IsActive: body.IsActive,
	})
	switch {
	case errors.Is(err, webhook.ErrWebhookNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, webhook.ErrAccessDenied):
		return response.Forbidden(c, err.Error())
	case err != nil:
		return response.ServerError(c)
	}
	return response.Success(c, "Webhook updated", fiber.Map{"webhook": wh})
}

func (h *WebhookHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid webhook id")
	}

	merchant := middleware.CurrentMerchant(c)
	err = h.webhooks.Delete(c.Context(), merchant.ID, uint(id))
	switch {
	case errors.Is(err, webhook.ErrWebhookNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, webhook.ErrAccessDenied):
		return response.Forbidden(c, err.Error())
	case err != nil:
		return response.ServerError(c)
	}
	return response.Success(c, "Webhook deleted", nil)
}

func (h *WebhookHandler) Test(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "Invalid webhook id")
	}

	merchant := middleware.CurrentMerchant(c)
	result, err := h.webhooks.Test(c.Context(), merchant.ID, uint(id))
	switch {
	case errors.Is(err, webhook.ErrWebhookNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, webhook.ErrAccessDenied):
		return response.Forbidden(c, err.Error())
	case err != nil:
		return response.ServerError(c)
	}
	return response.Success(c, "Test event delivered", fiber.Map{"result": result})
}
