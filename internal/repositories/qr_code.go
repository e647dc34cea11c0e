package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"payflow/internal/models"
)

type QRCodeRepository interface {
	Create(ctx context.Context, qr *models.QRCode) error
	GetByID(ctx context.Context, id uint) (*models.QRCode, error)
	Update(ctx context.Context, qr *models.QRCode) error
	ListByMerchant(ctx context.Context, merchantID uint) ([]models.QRCode, error)
	IncrementScanCount(ctx context.Context, id uint) error
}

type qrCodeRepository struct {
	db *gorm.DB
}

func NewQRCodeRepository(db *gorm.DB) QRCodeRepository {
	return &qrCodeRepository{db: db}
}

func (r *qrCodeRepository) Create(ctx context.Context, qr *models.QRCode) error {
	return r.db.WithContext(ctx).Create(qr).Error
}

func (r *qrCodeRepository) GetByID(ctx context.Context, id uint) (*models.QRCode, error) {
	var qr models.QRCode
	err := r.db.WithContext(ctx).First(&qr, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &qr, nil
}

func (r *qrCodeRepository) Update(ctx context.Context, qr *models.QRCode) error {
	return r.db.WithContext(ctx).Save(qr).Error
}

func (r *qrCodeRepository) ListByMerchant(ctx context.Context, merchantID uint) ([]models.QRCode, error) {
	var qrs []models.QRCode
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&qrs).Error
	return qrs, err
}

func (r *qrCodeRepository) IncrementScanCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.QRCode{}).
		Where("id = ?", id).
		Update("scan_count", gorm.Expr("scan_count + 1")).Error
}
