// Package webhook manages merchant webhook subscriptions and delivers signed
// event payloads to them.
package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"payflow/internal/models"
	"payflow/internal/repositories"
	"payflow/internal/services/audit"
)

var (
	ErrWebhookNotFound = errors.New("webhook not found")
	ErrAccessDenied    = errors.New("webhook belongs to another merchant")
)

type CreateRequest struct {
	Name   string
	URL    string
	Events []string
}

type UpdateRequest struct {
	Name     string
	URL      string
	Events   []string
	IsActive *bool
}

type Service interface {
	Create(ctx context.Context, merchantID uint, req CreateRequest) (*models.Webhook, error)
	List(ctx context.Context, merchantID uint) ([]models.Webhook, error)
	Get(ctx context.Context, merchantID, id uint) (*models.Webhook, error)
	Update(ctx context.Context, merchantID, id uint, req UpdateRequest) (*models.Webhook, error)
	Delete(ctx context.Context, merchantID, id uint) error
	// Test sends a synthetic event to the webhook and reports the delivery
	// result to the caller.
	Test(ctx context.Context, merchantID, id uint) (*DeliveryResult, error)
	// Emit fans an event out to every active subscription of the merchant.
	// It returns immediately; deliveries run in the background.
	Emit(ctx context.Context, merchantID uint, event string, payload models.JSON)
}

type service struct {
	repo       repositories.WebhookRepository
	dispatcher *Dispatcher
	audit      audit.Service
	log        zerolog.Logger
}

func NewService(
	repo repositories.WebhookRepository,
	dispatcher *Dispatcher,
	auditSvc audit.Service,
	log zerolog.Logger,
) Service {
	if repo == nil {
		panic("webhook repository is required")
	}
	if dispatcher == nil {
		panic("dispatcher is required")
	}
	if auditSvc == nil {
		panic("audit service is required")
	}
	return &service{
		repo:       repo,
		dispatcher: dispatcher,
		audit:      auditSvc,
		log:        log.With().Str("component", "webhook").Logger(),
	}
}

func (s *service) Create(ctx context.Context, merchantID uint, req CreateRequest) (*models.Webhook, error) {
	webhook := &models.Webhook{
		MerchantID: merchantID,
		Name:       req.Name,
		URL:        req.URL,
		Events:     models.StringList(req.Events),
		Secret:     "whsec_" + uuid.NewString(),
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, webhook); err != nil {
		return nil, fmt.Errorf("create webhook: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     models.ActionWebhookCreated,
		Resource:   "Webhook",
		ResourceID: fmt.Sprint(webhook.ID),
		Details:    models.JSON{"url": webhook.URL, "events": req.Events},
	})

	return webhook, nil
}

func (s *service) List(ctx context.Context, merchantID uint) ([]models.Webhook, error) {
	return s.repo.ListByMerchant(ctx, merchantID)
}

func (s *service) Get(ctx context.Context, merchantID, id uint) (*models.Webhook, error) {
	webhook, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrWebhookNotFound
	}
	if err != nil {
		return nil, err
	}
	if webhook.MerchantID != merchantID {
		return nil, ErrAccessDenied
	}
	return webhook, nil
}

func (s *service) Update(ctx context.Context, merchantID, id uint, req UpdateRequest) (*models.Webhook, error) {
	webhook, err := s.Get(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		webhook.Name = req.Name
	}
	if req.URL != "" {
		webhook.URL = req.URL
	}
	if req.Events != nil {
		webhook.Events = models.StringList(req.Events)
	}
	if req.IsActive != nil {
		webhook.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, webhook); err != nil {
		return nil, fmt.Errorf("update webhook: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     models.ActionWebhookUpdated,
		Resource:   "Webhook",
		ResourceID: fmt.Sprint(webhook.ID),
	})

	return webhook, nil
}

func (s *service) Delete(ctx context.Context, merchantID, id uint) error {
	if _, err := s.Get(ctx, merchantID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     models.ActionWebhookDeleted,
		Resource:   "Webhook",
		ResourceID: fmt.Sprint(id),
	})
	return nil
}

func (s *service) Test(ctx context.Context, merchantID, id uint) (*DeliveryResult, error) {
	webhook, err := s.Get(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}

	result := s.dispatcher.Deliver(ctx, webhook, "webhook.test", models.JSON{
		"message": "This is a test event",
	})
	return &result, nil
}

func (s *service) Emit(ctx context.Context, merchantID uint, event string, payload models.JSON) {
	webhooks, err := s.repo.ListActiveForEvent(ctx, merchantID, event)
	if err != nil {
		s.log.Error().Err(err).Str("event", event).Msg("webhook lookup failed")
		return
	}

	for i := range webhooks {
		webhook := webhooks[i]
		go func() {
			s.dispatcher.Deliver(context.Background(), &webhook, event, payload)
		}()
	}
}
