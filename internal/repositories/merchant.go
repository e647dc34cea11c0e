package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"payflow/internal/models"
)

// MerchantFilter narrows admin merchant listings.
type MerchantFilter struct {
	KYCStatus string
}

type MerchantRepository interface {
	Create(ctx context.Context, merchant *models.Merchant) error
	GetByID(ctx context.Context, id uint) (*models.Merchant, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Merchant, error)
	Update(ctx context.Context, merchant *models.Merchant) error
	// IncrementTotals adds a completed transaction's amount and fees to the
	// merchant's running totals with a single atomic update.
	IncrementTotals(ctx context.Context, id uint, amount, fees float64) error
	List(ctx context.Context, filter MerchantFilter, offset, limit int) ([]models.Merchant, int64, error)
}

type merchantRepository struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

func (r *merchantRepository) Create(ctx context.Context, merchant *models.Merchant) error {
	return r.db.WithContext(ctx).Create(merchant).Error
}

func (r *merchantRepository) GetByID(ctx context.Context, id uint) (*models.Merchant, error) {
	var merchant models.Merchant
	err := r.db.WithContext(ctx).First(&merchant, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *merchantRepository) GetByUserID(ctx context.Context, userID uint) (*models.Merchant, error) {
	var merchant models.Merchant
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&merchant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *merchantRepository) Update(ctx context.Context, merchant *models.Merchant) error {
	return r.db.WithContext(ctx).Save(merchant).Error
}

func (r *merchantRepository) IncrementTotals(ctx context.Context, id uint, amount, fees float64) error {
	return r.db.WithContext(ctx).Model(&models.Merchant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_processed": gorm.Expr("total_processed + ?", amount),
			"total_fees":      gorm.Expr("total_fees + ?", fees),
		}).Error
}

func (r *merchantRepository) List(ctx context.Context, filter MerchantFilter, offset, limit int) ([]models.Merchant, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Merchant{})
	if filter.KYCStatus != "" {
		q = q.Where("kyc_status = ?", filter.KYCStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var merchants []models.Merchant
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&merchants).Error
	return merchants, total, err
}
