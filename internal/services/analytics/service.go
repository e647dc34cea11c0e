// Package analytics aggregates a merchant's transaction history into
// dashboard series. Queries go straight to the database; aggregation runs in
// SQL rather than in memory.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"payflow/internal/models"
)

var ErrUnknownPeriod = errors.New("unknown analytics period")

// Periods accepted by every analytics operation.
const (
	PeriodWeek    = "7d"
	PeriodMonth   = "30d"
	PeriodQuarter = "90d"
	PeriodYear    = "1y"
)

// Groupings accepted by the transaction series.
const (
	GroupDay   = "day"
	GroupWeek  = "week"
	GroupMonth = "month"
)

// Overview is the headline card set.
type Overview struct {
	TotalRevenue     float64 `json:"totalRevenue"`
	TotalFees        float64 `json:"totalFees"`
	NetRevenue       float64 `json:"netRevenue"`
	TransactionCount int64   `json:"transactionCount"`
	CompletedCount   int64   `json:"completedCount"`
	FailedCount      int64   `json:"failedCount"`
	RefundedAmount   float64 `json:"refundedAmount"`
	SuccessRate      float64 `json:"successRate"`
	AverageOrder     float64 `json:"averageOrderValue"`
}

// SeriesPoint is one bucket of a time-grouped aggregate.
type SeriesPoint struct {
	Bucket    time.Time `json:"bucket"`
	Count     int64     `json:"count"`
	Amount    float64   `json:"amount"`
	Completed int64     `json:"completed"`
}

// RevenuePoint is one bucket of the revenue series.
type RevenuePoint struct {
	Bucket  time.Time `json:"bucket"`
	Revenue float64   `json:"revenue"`
	Fees    float64   `json:"fees"`
	Net     float64   `json:"net"`
}

// MethodBreakdown summarizes volume by payment method.
type MethodBreakdown struct {
	Method string  `json:"method"`
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

// RefundSummary covers the refund side of a period.
type RefundSummary struct {
	Count       int64   `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
	Completed   int64   `json:"completed"`
	Pending     int64   `json:"pending"`
}

type Service interface {
	Overview(ctx context.Context, merchantID uint, period string) (*Overview, error)
	Transactions(ctx context.Context, merchantID uint, period, groupBy string) ([]SeriesPoint, error)
	Revenue(ctx context.Context, merchantID uint, period string) ([]RevenuePoint, error)
	PaymentMethods(ctx context.Context, merchantID uint, period string) ([]MethodBreakdown, error)
	Refunds(ctx context.Context, merchantID uint, period string) (*RefundSummary, error)
}

type service struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewService(db *gorm.DB, log zerolog.Logger) Service {
	if db == nil {
		panic("database handle is required")
	}
	return &service{
		db:  db,
		log: log.With().Str("component", "analytics").Logger(),
	}
}

// periodStart resolves a period token to its inclusive lower bound.
func periodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case PeriodWeek:
		return now.AddDate(0, 0, -7), nil
	case PeriodMonth:
		return now.AddDate(0, 0, -30), nil
	case PeriodQuarter:
		return now.AddDate(0, 0, -90), nil
	case PeriodYear:
		return now.AddDate(-1, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
	}
}

// truncUnit maps a grouping token to the date_trunc unit, defaulting to day.
func truncUnit(groupBy string) string {
	switch groupBy {
	case GroupWeek:
		return "week"
	case GroupMonth:
		return "month"
	default:
		return "day"
	}
}

func (s *service) Overview(ctx context.Context, merchantID uint, period string) (*Overview, error) {
	start, err := periodStart(period, time.Now())
	if err != nil {
		return nil, err
	}

	var row struct {
		TotalRevenue   float64
		TotalFees      float64
		TotalCount     int64
		CompletedCount int64
		FailedCount    int64
		RefundedAmount float64
	}
	err = s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select(`
			COALESCE(SUM(CASE WHEN status IN (?, ?) THEN amount ELSE 0 END), 0) AS total_revenue,
			COALESCE(SUM(CASE WHEN status IN (?, ?) THEN commission ELSE 0 END), 0) AS total_fees,
			COUNT(*) AS total_count,
			COUNT(*) FILTER (WHERE status IN (?, ?)) AS completed_count,
			COUNT(*) FILTER (WHERE status = ?) AS failed_count,
			COALESCE(SUM(refunded_amount), 0) AS refunded_amount`,
			models.StatusCompleted, models.StatusRefunded,
			models.StatusCompleted, models.StatusRefunded,
			models.StatusCompleted, models.StatusRefunded,
			models.StatusFailed).
		Where("merchant_id = ? AND created_at >= ?", merchantID, start).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("overview query: %w", err)
	}

	overview := &Overview{
		TotalRevenue:     row.TotalRevenue,
		TotalFees:        row.TotalFees,
		NetRevenue:       row.TotalRevenue - row.TotalFees,
		TransactionCount: row.TotalCount,
		CompletedCount:   row.CompletedCount,
		FailedCount:      row.FailedCount,
		RefundedAmount:   row.RefundedAmount,
	}
	if row.TotalCount > 0 {
		overview.SuccessRate = float64(row.CompletedCount) / float64(row.TotalCount) * 100
	}
	if row.CompletedCount > 0 {
		overview.AverageOrder = row.TotalRevenue / float64(row.CompletedCount)
	}
	return overview, nil
}

func (s *service) Transactions(ctx context.Context, merchantID uint, period, groupBy string) ([]SeriesPoint, error) {
	start, err := periodStart(period, time.Now())
	if err != nil {
		return nil, err
	}
	unit := truncUnit(groupBy)

	var points []SeriesPoint
	err = s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select(`
			date_trunc(?, created_at) AS bucket,
			COUNT(*) AS count,
			COALESCE(SUM(amount), 0) AS amount,
			COUNT(*) FILTER (WHERE status IN (?, ?)) AS completed`,
			unit, models.StatusCompleted, models.StatusRefunded).
		Where("merchant_id = ? AND created_at >= ?", merchantID, start).
		Group("bucket").
		Order("bucket ASC").
		Scan(&points).Error
	if err != nil {
		return nil, fmt.Errorf("transaction series: %w", err)
	}
	return points, nil
}

func (s *service) Revenue(ctx context.Context, merchantID uint, period string) ([]RevenuePoint, error) {
	start, err := periodStart(period, time.Now())
	if err != nil {
		return nil, err
	}

	var points []RevenuePoint
	err = s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select(`
			date_trunc('day', created_at) AS bucket,
			COALESCE(SUM(amount), 0) AS revenue,
			COALESCE(SUM(commission), 0) AS fees,
			COALESCE(SUM(net_amount), 0) AS net`).
		Where("merchant_id = ? AND status IN (?, ?) AND created_at >= ?",
			merchantID, models.StatusCompleted, models.StatusRefunded, start).
		Group("bucket").
		Order("bucket ASC").
		Scan(&points).Error
	if err != nil {
		return nil, fmt.Errorf("revenue series: %w", err)
	}
	return points, nil
}

func (s *service) PaymentMethods(ctx context.Context, merchantID uint, period string) ([]MethodBreakdown, error) {
	start, err := periodStart(period, time.Now())
	if err != nil {
		return nil, err
	}

	var breakdown []MethodBreakdown
	err = s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select(`payment_method AS method, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount`).
		Where("merchant_id = ? AND payment_method <> '' AND created_at >= ?", merchantID, start).
		Group("payment_method").
		Order("amount DESC").
		Scan(&breakdown).Error
	if err != nil {
		return nil, fmt.Errorf("method breakdown: %w", err)
	}
	return breakdown, nil
}

func (s *service) Refunds(ctx context.Context, merchantID uint, period string) (*RefundSummary, error) {
	start, err := periodStart(period, time.Now())
	if err != nil {
		return nil, err
	}

	var summary RefundSummary
	err = s.db.WithContext(ctx).Model(&models.Refund{}).
		Select(`
			COUNT(*) AS count,
			COALESCE(SUM(amount), 0) AS total_amount,
			COUNT(*) FILTER (WHERE status = ?) AS completed,
			COUNT(*) FILTER (WHERE status = ?) AS pending`,
			models.RefundStatusCompleted, models.RefundStatusPending).
		Where("merchant_id = ? AND created_at >= ?", merchantID, start).
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("refund summary: %w", err)
	}
	return &summary, nil
}
