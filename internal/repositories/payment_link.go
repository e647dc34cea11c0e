package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"payflow/internal/models"
)

type PaymentLinkRepository interface {
	Create(ctx context.Context, link *models.PaymentLink) error
	GetByLinkID(ctx context.Context, linkID string) (*models.PaymentLink, error)
}

type paymentLinkRepository struct {
	db *gorm.DB
}

func NewPaymentLinkRepository(db *gorm.DB) PaymentLinkRepository {
	return &paymentLinkRepository{db: db}
}

func (r *paymentLinkRepository) Create(ctx context.Context, link *models.PaymentLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *paymentLinkRepository) GetByLinkID(ctx context.Context, linkID string) (*models.PaymentLink, error) {
	var link models.PaymentLink
	err := r.db.WithContext(ctx).Where("link_id = ?", linkID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}
