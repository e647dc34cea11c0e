package merchant

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"payflow/internal/models"
	"payflow/internal/repositories"
	"payflow/internal/services/audit"
)

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

type noopAudit struct{}

func (noopAudit) Record(context.Context, audit.Entry) {}

func newMerchantService(merchants repositories.MerchantRepository, users repositories.UserRepository) Service {
	return NewService(merchants, users, nil, nil, noopAudit{}, zerolog.Nop())
}

func TestRegister(t *testing.T) {
	t.Run("creates merchant and promotes the user", func(t *testing.T) {
		merchants := new(mockMerchantRepo)
		users := new(mockUserRepo)
		merchants.On("GetByUserID", mock.Anything, uint(7)).Return(nil, repositories.ErrNotFound)
		merchants.On("Create", mock.Anything, mock.AnythingOfType("*models.Merchant")).Return(nil)

		user := &models.User{Role: models.RoleUser}
		user.ID = 7
		users.On("GetByID", mock.Anything, uint(7)).Return(user, nil)
		users.On("Update", mock.Anything, user).Return(nil)

		svc := newMerchantService(merchants, users)
		m, err := svc.Register(context.Background(), 7, RegisterRequest{
			BusinessName: "Acme Stores",
			BusinessType: "PRIVATE_LIMITED",
		})
		require.NoError(t, err)

		assert.Equal(t, models.KYCStatusPending, m.KYCStatus)
		assert.True(t, m.IsActive)
		assert.Equal(t, models.RoleMerchant, user.Role)
	})

	t.Run("rejects a second merchant account", func(t *testing.T) {
		merchants := new(mockMerchantRepo)
		users := new(mockUserRepo)
		merchants.On("GetByUserID", mock.Anything, uint(7)).Return(&models.Merchant{}, nil)

		svc := newMerchantService(merchants, users)
		_, err := svc.Register(context.Background(), 7, RegisterRequest{BusinessName: "Again"})
		assert.ErrorIs(t, err, ErrAlreadyMerchant)
	})

	t.Run("keeps admin role untouched", func(t *testing.T) {
		merchants := new(mockMerchantRepo)
		users := new(mockUserRepo)
		merchants.On("GetByUserID", mock.Anything, uint(3)).Return(nil, repositories.ErrNotFound)
		merchants.On("Create", mock.Anything, mock.Anything).Return(nil)

		admin := &models.User{Role: models.RoleAdmin}
		admin.ID = 3
		users.On("GetByID", mock.Anything, uint(3)).Return(admin, nil)

		svc := newMerchantService(merchants, users)
		_, err := svc.Register(context.Background(), 3, RegisterRequest{BusinessName: "Ops"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, admin.Role)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestSubmitKYC(t *testing.T) {
	docs := models.JSON{"pan": "doc://pan.pdf"}

	tests := []struct {
		name    string
		status  string
		wantErr error
	}{
		{"pending submits", models.KYCStatusPending, nil},
		{"rejected resubmits", models.KYCStatusRejected, nil},
		{"submitted cannot resubmit", models.KYCStatusSubmitted, ErrKYCNotResubmittable},
		{"approved cannot resubmit", models.KYCStatusApproved, ErrKYCNotResubmittable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merchants := new(mockMerchantRepo)
			users := new(mockUserRepo)
			m := &models.Merchant{KYCStatus: tt.status, KYCReason: "old reason"}
			m.ID = 1
			merchants.On("GetByUserID", mock.Anything, uint(7)).Return(m, nil)
			merchants.On("Update", mock.Anything, m).Return(nil)

			svc := newMerchantService(merchants, users)
			got, err := svc.SubmitKYC(context.Background(), 7, docs)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.KYCStatusSubmitted, got.KYCStatus)
			assert.Empty(t, got.KYCReason)
			assert.Equal(t, docs, got.KYCDocuments)
		})
	}
}
