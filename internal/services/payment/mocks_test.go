package payment

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"payflow/internal/models"
	"payflow/internal/repositories"
	"payflow/internal/services/audit"
)

type mockTransactionRepo struct{ mock.Mock }

func (m *mockTransactionRepo) CreateEnforcingDailyLimit(ctx context.Context, t *models.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTransactionRepo) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if t := args.Get(0); t != nil {
		return t.(*models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTransactionRepo) GetByOrderID(ctx context.Context, orderID string) (*models.Transaction, error) {
	args := m.Called(ctx, orderID)
	if t := args.Get(0); t != nil {
		return t.(*models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTransactionRepo) MarkProcessing(ctx context.Context, id uint, method string, details models.JSON) (bool, error) {
	args := m.Called(ctx, id, method, details)
	return args.Bool(0), args.Error(1)
}

func (m *mockTransactionRepo) Update(ctx context.Context, t *models.Transaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTransactionRepo) SumCompletedBetween(ctx context.Context, merchantID uint, from, to time.Time) (float64, error) {
	args := m.Called(ctx, merchantID, from, to)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockTransactionRepo) CountByMerchant(ctx context.Context, merchantID uint) (int64, int64, error) {
	args := m.Called(ctx, merchantID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *mockTransactionRepo) ListByMerchant(ctx context.Context, merchantID uint, filter repositories.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error) {
	args := m.Called(ctx, merchantID, filter, offset, limit)
	return args.Get(0).([]models.Transaction), args.Get(1).(int64), args.Error(2)
}

type mockMerchantRepo struct{ mock.Mock }

func (m *mockMerchantRepo) Create(ctx context.Context, merchant *models.Merchant) error {
	return m.Called(ctx, merchant).Error(0)
}

func (m *mockMerchantRepo) GetByID(ctx context.Context, id uint) (*models.Merchant, error) {
	args := m.Called(ctx, id)
	if mc := args.Get(0); mc != nil {
		return mc.(*models.Merchant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMerchantRepo) GetByUserID(ctx context.Context, userID uint) (*models.Merchant, error) {
	args := m.Called(ctx, userID)
	if mc := args.Get(0); mc != nil {
		return mc.(*models.Merchant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMerchantRepo) Update(ctx context.Context, merchant *models.Merchant) error {
	return m.Called(ctx, merchant).Error(0)
}

func (m *mockMerchantRepo) IncrementTotals(ctx context.Context, id uint, amount, fees float64) error {
	return m.Called(ctx, id, amount, fees).Error(0)
}

func (m *mockMerchantRepo) List(ctx context.Context, filter repositories.MerchantFilter, offset, limit int) ([]models.Merchant, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	return args.Get(0).([]models.Merchant), args.Get(1).(int64), args.Error(2)
}

type mockRefundRepo struct{ mock.Mock }

func (m *mockRefundRepo) CreateAndApply(ctx context.Context, refund *models.Refund) error {
	return m.Called(ctx, refund).Error(0)
}

func (m *mockRefundRepo) GetByRefundID(ctx context.Context, refundID string) (*models.Refund, error) {
	args := m.Called(ctx, refundID)
	if r := args.Get(0); r != nil {
		return r.(*models.Refund), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRefundRepo) CompleteDue(ctx context.Context, now time.Time) ([]models.Refund, error) {
	args := m.Called(ctx, now)
	if r := args.Get(0); r != nil {
		return r.([]models.Refund), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRefundRepo) CountByMerchant(ctx context.Context, merchantID uint) (int64, error) {
	args := m.Called(ctx, merchantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRefundRepo) ListByMerchant(ctx context.Context, merchantID uint, offset, limit int) ([]models.Refund, int64, error) {
	args := m.Called(ctx, merchantID, offset, limit)
	return args.Get(0).([]models.Refund), args.Get(1).(int64), args.Error(2)
}

type mockLinkRepo struct{ mock.Mock }

func (m *mockLinkRepo) Create(ctx context.Context, link *models.PaymentLink) error {
	return m.Called(ctx, link).Error(0)
}

func (m *mockLinkRepo) GetByLinkID(ctx context.Context, linkID string) (*models.PaymentLink, error) {
	args := m.Called(ctx, linkID)
	if l := args.Get(0); l != nil {
		return l.(*models.PaymentLink), args.Error(1)
	}
	return nil, args.Error(1)
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, audit.Entry) {}

type recordingEmitter struct {
	events []string
}

func (e *recordingEmitter) Emit(_ context.Context, _ uint, event string, _ models.JSON) {
	e.events = append(e.events, event)
}
