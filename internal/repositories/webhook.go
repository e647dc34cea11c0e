package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"payflow/internal/models"
)

type WebhookRepository interface {
	Create(ctx context.Context, webhook *models.Webhook) error
	GetByID(ctx context.Context, id uint) (*models.Webhook, error)
	ListByMerchant(ctx context.Context, merchantID uint) ([]models.Webhook, error)
	// ListActiveForEvent returns the merchant's active webhooks subscribed to
	// the given event.
	ListActiveForEvent(ctx context.Context, merchantID uint, event string) ([]models.Webhook, error)
	Update(ctx context.Context, webhook *models.Webhook) error
	Delete(ctx context.Context, id uint) error
	RecordDelivery(ctx context.Context, delivery *models.WebhookDelivery) error
}

type webhookRepository struct {
	db *gorm.DB
}

func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

func (r *webhookRepository) Create(ctx context.Context, webhook *models.Webhook) error {
	return r.db.WithContext(ctx).Create(webhook).Error
}

func (r *webhookRepository) GetByID(ctx context.Context, id uint) (*models.Webhook, error) {
	var webhook models.Webhook
	err := r.db.WithContext(ctx).First(&webhook, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &webhook, nil
}

func (r *webhookRepository) ListByMerchant(ctx context.Context, merchantID uint) ([]models.Webhook, error) {
	var webhooks []models.Webhook
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&webhooks).Error
	return webhooks, err
}

func (r *webhookRepository) ListActiveForEvent(ctx context.Context, merchantID uint, event string) ([]models.Webhook, error) {
	var webhooks []models.Webhook
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND is_active = ? AND events @> ?", merchantID, true, `["`+event+`"]`).
		Find(&webhooks).Error
	return webhooks, err
}

func (r *webhookRepository) Update(ctx context.Context, webhook *models.Webhook) error {
	return r.db.WithContext(ctx).Save(webhook).Error
}

func (r *webhookRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Webhook{}, id).Error
}

func (r *webhookRepository) RecordDelivery(ctx context.Context, delivery *models.WebhookDelivery) error {
	return r.db.WithContext(ctx).Create(delivery).Error
}
