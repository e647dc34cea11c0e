package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"payflow/internal/models"
)

type RefundRepository interface {
	// CreateAndApply inserts the refund and applies its amount to the parent
	// transaction in one database transaction. The refundable-remainder check
	// and the increment are a single conditional update, so concurrent
	// refunds cannot overshoot the original amount. When the new refunded
	// total reaches the transaction amount, the transaction flips to
	// REFUNDED in the same statement.
	CreateAndApply(ctx context.Context, refund *models.Refund) error
	GetByRefundID(ctx context.Context, refundID string) (*models.Refund, error)
	// CompleteDue marks every pending refund whose ScheduledFor has passed as
	// COMPLETED and returns how many rows it touched.
	CompleteDue(ctx context.Context, now time.Time) ([]models.Refund, error)
	CountByMerchant(ctx context.Context, merchantID uint) (int64, error)
	ListByMerchant(ctx context.Context, merchantID uint, offset, limit int) ([]models.Refund, int64, error)
}

type refundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) RefundRepository {
	return &refundRepository{db: db}
}

func (r *refundRepository) CreateAndApply(ctx context.Context, refund *models.Refund) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ? AND refunded_amount + ? <= amount",
				refund.TransactionID, models.StatusCompleted, refund.Amount).
			Updates(map[string]interface{}{
				"refunded_amount": gorm.Expr("refunded_amount + ?", refund.Amount),
				"status": gorm.Expr(
					"CASE WHEN refunded_amount + ? >= amount THEN ? ELSE status END",
					refund.Amount, models.StatusRefunded,
				),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRefundExceedsRemainder
		}

		return tx.Create(refund).Error
	})
}

func (r *refundRepository) GetByRefundID(ctx context.Context, refundID string) (*models.Refund, error) {
	var refund models.Refund
	err := r.db.WithContext(ctx).Preload("Transaction").Where("refund_id = ?", refundID).First(&refund).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

func (r *refundRepository) CompleteDue(ctx context.Context, now time.Time) ([]models.Refund, error) {
	var due []models.Refund
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("status = ? AND scheduled_for <= ?", models.RefundStatusPending, now).
			Find(&due).Error; err != nil {
			return err
		}
		if len(due) == 0 {
			return nil
		}

		ids := make([]uint, len(due))
		for i, ref := range due {
			ids[i] = ref.ID
		}
		return tx.Model(&models.Refund{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":       models.RefundStatusCompleted,
				"processed_at": now,
			}).Error
	})
	return due, err
}

func (r *refundRepository) CountByMerchant(ctx context.Context, merchantID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Refund{}).
		Where("merchant_id = ?", merchantID).
		Count(&count).Error
	return count, err
}

func (r *refundRepository) ListByMerchant(ctx context.Context, merchantID uint, offset, limit int) ([]models.Refund, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Refund{}).Where("merchant_id = ?", merchantID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var refunds []models.Refund
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&refunds).Error
	return refunds, total, err
}
