package user

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"payflow/internal/models"
	"payflow/internal/repositories"
	"payflow/internal/services/audit"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) List(ctx context.Context, filter repositories.UserFilter, offset, limit int) ([]models.User, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
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

type noopAudit struct{}

func (noopAudit) Record(context.Context, audit.Entry) {}

func newUserService(users *mockUserRepo, merchants *mockMerchantRepo, transactions *mockTransactionRepo) Service {
	return NewService(users, merchants, transactions, noopAudit{}, zerolog.Nop())
}

func TestUpdateProfile(t *testing.T) {
	t.Run("applies only the provided fields", func(t *testing.T) {
		users := new(mockUserRepo)
		u := &models.User{FirstName: "Asha", LastName: "Rao", Phone: "+911234567890", Avatar: "old.png"}
		u.ID = 7
		users.On("GetByID", mock.Anything, uint(7)).Return(u, nil)
		users.On("Update", mock.Anything, u).Return(nil)

		svc := newUserService(users, new(mockMerchantRepo), new(mockTransactionRepo))
		got, err := svc.UpdateProfile(context.Background(), 7, ProfileUpdate{LastName: "Rao-Iyer"})
		require.NoError(t, err)

		assert.Equal(t, "Asha", got.FirstName)
		assert.Equal(t, "Rao-Iyer", got.LastName)
		assert.Equal(t, "old.png", got.Avatar)
	})

	t.Run("changing the phone clears its verification", func(t *testing.T) {
		users := new(mockUserRepo)
		u := &models.User{Phone: "+911234567890", PhoneVerified: true}
		u.ID = 7
		users.On("GetByID", mock.Anything, uint(7)).Return(u, nil)
		users.On("Update", mock.Anything, u).Return(nil)

		svc := newUserService(users, new(mockMerchantRepo), new(mockTransactionRepo))
		got, err := svc.UpdateProfile(context.Background(), 7, ProfileUpdate{Phone: "+919876543210"})
		require.NoError(t, err)

		assert.Equal(t, "+919876543210", got.Phone)
		assert.False(t, got.PhoneVerified)
	})

	t.Run("empty request touches nothing", func(t *testing.T) {
		users := new(mockUserRepo)
		u := &models.User{FirstName: "Asha"}
		u.ID = 7
		users.On("GetByID", mock.Anything, uint(7)).Return(u, nil)

		svc := newUserService(users, new(mockMerchantRepo), new(mockTransactionRepo))
		_, err := svc.UpdateProfile(context.Background(), 7, ProfileUpdate{})
		require.NoError(t, err)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing user reads as not found", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetByID", mock.Anything, uint(404)).Return(nil, repositories.ErrNotFound)

		svc := newUserService(users, new(mockMerchantRepo), new(mockTransactionRepo))
		_, err := svc.UpdateProfile(context.Background(), 404, ProfileUpdate{FirstName: "X"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUpdateSettings(t *testing.T) {
	enabled := true

	t.Run("toggles two-factor and keeps the whitelist", func(t *testing.T) {
		users := new(mockUserRepo)
		u := &models.User{IPWhitelist: models.StringList{"10.0.0.1"}}
		u.ID = 7
		users.On("GetByID", mock.Anything, uint(7)).Return(u, nil)
		users.On("Update", mock.Anything, u).Return(nil)

		svc := newUserService(users, new(mockMerchantRepo), new(mockTransactionRepo))
		settings, err := svc.UpdateSettings(context.Background(), 7, SettingsUpdate{TwoFactorEnabled: &enabled})
		require.NoError(t, err)

		assert.True(t, settings.TwoFactorEnabled)
		assert.Equal(t, []string{"10.0.0.1"}, settings.IPWhitelist)
	})

	t.Run("replaces the whitelist when one is sent", func(t *testing.T) {
		users := new(mockUserRepo)
		u := &models.User{IPWhitelist: models.StringList{"10.0.0.1"}}
		u.ID = 7
		users.On("GetByID", mock.Anything, uint(7)).Return(u, nil)
		users.On("Update", mock.Anything, u).Return(nil)

		svc := newUserService(users, new(mockMerchantRepo), new(mockTransactionRepo))
		settings, err := svc.UpdateSettings(context.Background(), 7, SettingsUpdate{
			IPWhitelist: []string{"192.168.1.1", "192.168.1.2"},
		})
		require.NoError(t, err)

		assert.False(t, settings.TwoFactorEnabled)
		assert.Equal(t, []string{"192.168.1.1", "192.168.1.2"}, settings.IPWhitelist)
	})
}

func TestTransactions(t *testing.T) {
	t.Run("lists through the caller's merchant", func(t *testing.T) {
		merchants := new(mockMerchantRepo)
		transactions := new(mockTransactionRepo)
		m := &models.Merchant{UserID: 7}
		m.ID = 3
		merchants.On("GetByUserID", mock.Anything, uint(7)).Return(m, nil)
		transactions.On("ListByMerchant", mock.Anything, uint(3), repositories.TransactionFilter{}, 0, 20).
			Return([]models.Transaction{{OrderID: "ORDER_1_AAAAAAAAA"}}, int64(1), nil)

		svc := newUserService(new(mockUserRepo), merchants, transactions)
		txs, total, err := svc.Transactions(context.Background(), 7, repositories.TransactionFilter{}, 0, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, txs, 1)
	})

	t.Run("no merchant account means an empty history", func(t *testing.T) {
		merchants := new(mockMerchantRepo)
		merchants.On("GetByUserID", mock.Anything, uint(7)).Return(nil, repositories.ErrNotFound)

		svc := newUserService(new(mockUserRepo), merchants, new(mockTransactionRepo))
		txs, total, err := svc.Transactions(context.Background(), 7, repositories.TransactionFilter{}, 0, 20)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, txs)
	})
}
