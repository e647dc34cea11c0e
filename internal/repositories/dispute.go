package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"payflow/internal/models"
)

// DisputeFilter narrows admin dispute listings.
type DisputeFilter struct {
	Status string
}

type DisputeRepository interface {
	Create(ctx context.Context, dispute *models.Dispute) error
	GetByID(ctx context.Context, id uint) (*models.Dispute, error)
	Update(ctx context.Context, dispute *models.Dispute) error
	List(ctx context.Context, filter DisputeFilter, offset, limit int) ([]models.Dispute, int64, error)
	ListMerchant(ctx context.Context, merchantID uint, status string, offset, limit int) ([]models.Dispute, int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type disputeRepository struct {
	db *gorm.DB
}

func NewDisputeRepository(db *gorm.DB) DisputeRepository {
	return &disputeRepository{db: db}
}

func (r *disputeRepository) Create(ctx context.Context, dispute *models.Dispute) error {
	return r.db.WithContext(ctx).Create(dispute).Error
}

func (r *disputeRepository) GetByID(ctx context.Context, id uint) (*models.Dispute, error) {
	var dispute models.Dispute
	err := r.db.WithContext(ctx).Preload("Transaction").First(&dispute, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}

func (r *disputeRepository) Update(ctx context.Context, dispute *models.Dispute) error {
	return r.db.WithContext(ctx).Save(dispute).Error
}

func (r *disputeRepository) List(ctx context.Context, filter DisputeFilter, offset, limit int) ([]models.Dispute, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Dispute{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var disputes []models.Dispute
	err := q.Preload("Transaction").Order("created_at DESC").Offset(offset).Limit(limit).Find(&disputes).Error
	return disputes, total, err
}

func (r *disputeRepository) ListMerchant(ctx context.Context, merchantID uint, status string, offset, limit int) ([]models.Dispute, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Dispute{}).Where("merchant_id = ?", merchantID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var disputes []models.Dispute
	err := q.Preload("Transaction").Order("created_at DESC").Offset(offset).Limit(limit).Find(&disputes).Error
	return disputes, total, err
}

func (r *disputeRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Dispute{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
