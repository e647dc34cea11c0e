package handlers

import (
	"github.com/gofiber/fiber/v2"

	"payflow/internal/middleware"
	"payflow/internal/services/analytics"
	"payflow/internal/utils/response"
	"payflow/internal/validation"
)

type AnalyticsHandler struct {
	analytics analytics.Service
}

func NewAnalyticsHandler(analyticsSvc analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analyticsSvc}
}

func analyticsParams(c *fiber.Ctx) (period, groupBy string, errs map[string]string) {
	period = c.Query("period", analytics.PeriodMonth)
	groupBy = c.Query("groupBy", analytics.GroupDay)

	v := validation.New()
	v.Analytics(period, groupBy)
	if !v.Valid() {
		return "", "", v.Errors
	}
	return period, groupBy, nil
}

func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	period, _, errs := analyticsParams(c)
	if errs != nil {
		return response.ValidationErrors(c, errs)
	}

	merchant := middleware.CurrentMerchant(c)
	overview, err := h.analytics.Overview(c.Context(), merchant.ID, period)
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "", fiber.Map{"overview": overview, "period": period})
}

func (h *AnalyticsHandler) Transactions(c *fiber.Ctx) error {
	period, groupBy, errs := analyticsParams(c)
	if errs != nil {
		return response.ValidationErrors(c, errs)
	}

	merchant := middleware.CurrentMerchant(c)
	series, err := h.analytics.Transactions(c.Context(), merchant.ID, period, groupBy)
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "", fiber.Map{"series": series, "period": period, "groupBy": groupBy})
}

func (h *AnalyticsHandler) Revenue(c *fiber.Ctx) error {
	period, _, errs := analyticsParams(c)
	if errs != nil {
		return response.ValidationErrors(c, errs)
	}

	merchant := middleware.CurrentMerchant(c)
	series, err := h.analytics.Revenue(c.Context(), merchant.ID, period)
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "", fiber.Map{"series": series, "period": period})
}

func (h *AnalyticsHandler) PaymentMethods(c *fiber.Ctx) error {
	period, _, errs := analyticsParams(c)
	if errs != nil {
		return response.ValidationErrors(c, errs)
	}

	merchant := middleware.CurrentMerchant(c)
	breakdown, err := h.analytics.PaymentMethods(c.Context(), merchant.ID, period)
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "", fiber.Map{"methods": breakdown, "period": period})
}

func (h *AnalyticsHandler) Refunds(c *fiber.Ctx) error {
	period, _, errs := analyticsParams(c)
	if errs != nil {
		return response.ValidationErrors(c, errs)
	}

	merchant := middleware.CurrentMerchant(c)
	summary, err := h.analytics.Refunds(c.Context(), merchant.ID, period)
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "", fiber.Map{"refunds": summary, "period": period})
}
