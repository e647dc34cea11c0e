package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"payflow/internal/models"
)

// TransactionFilter narrows merchant payment listings.
type TransactionFilter struct {
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

type TransactionRepository interface {
	// CreateEnforcingDailyLimit inserts the transaction only if today's
	// completed volume plus its amount stays within the merchant's daily
	// limit. The check and the insert run in one database transaction with
	// the merchant row locked, so concurrent creates cannot jointly exceed
	// the limit.
	CreateEnforcingDailyLimit(ctx context.Context, t *models.Transaction) error
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Transaction, error)
	// MarkProcessing transitions PENDING -> PROCESSING with a conditional
	// update and reports whether the transition happened.
	MarkProcessing(ctx context.Context, id uint, method string, details models.JSON) (bool, error)
	Update(ctx context.Context, t *models.Transaction) error
	SumCompletedBetween(ctx context.Context, merchantID uint, from, to time.Time) (float64, error)
	// CountByMerchant returns total and completed transaction counts.
	CountByMerchant(ctx context.Context, merchantID uint) (total, completed int64, err error)
	ListByMerchant(ctx context.Context, merchantID uint, filter TransactionFilter, offset, limit int) ([]models.Transaction, int64, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) CreateEnforcingDailyLimit(ctx context.Context, t *models.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var merchant models.Merchant
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&merchant, t.MerchantID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		// Day boundary is local midnight-to-midnight in the server timezone.
		now := time.Now()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		dayEnd := dayStart.AddDate(0, 0, 1)

		var todayTotal float64
		err = tx.Model(&models.Transaction{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("merchant_id = ? AND status = ? AND created_at >= ? AND created_at < ?",
				t.MerchantID, models.StatusCompleted, dayStart, dayEnd).
			Scan(&todayTotal).Error
		if err != nil {
			return err
		}

		if todayTotal+t.Amount > merchant.DailyLimit {
			return ErrDailyLimitExceeded
		}

		return tx.Create(t).Error
	})
}

func (r *transactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.WithContext(ctx).Preload("Merchant").First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.WithContext(ctx).Preload("Merchant").Where("order_id = ?", orderID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) MarkProcessing(ctx context.Context, id uint, method string, details models.JSON) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":          models.StatusProcessing,
			"payment_method":  method,
			"payment_details": details,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *transactionRepository) Update(ctx context.Context, t *models.Transaction) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *transactionRepository) SumCompletedBetween(ctx context.Context, merchantID uint, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("merchant_id = ? AND status = ? AND created_at >= ? AND created_at < ?",
			merchantID, models.StatusCompleted, from, to).
		Scan(&total).Error
	return total, err
}

func (r *transactionRepository) CountByMerchant(ctx context.Context, merchantID uint) (int64, int64, error) {
	var total, completed int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("merchant_id = ?", merchantID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("merchant_id = ? AND status = ?", merchantID, models.StatusCompleted).
		Count(&completed).Error
	return total, completed, err
}

func (r *transactionRepository) ListByMerchant(ctx context.Context, merchantID uint, filter TransactionFilter, offset, limit int) ([]models.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("merchant_id = ?", merchantID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		q = q.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("created_at <= ?", *filter.EndDate)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []models.Transaction
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&txs).Error
	return txs, total, err
}
