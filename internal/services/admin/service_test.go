package admin

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

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

type mockDisputeRepo struct{ mock.Mock }

func (m *mockDisputeRepo) Create(ctx context.Context, dispute *models.Dispute) error {
	return m.Called(ctx, dispute).Error(0)
}

func (m *mockDisputeRepo) GetByID(ctx context.Context, id uint) (*models.Dispute, error) {
	args := m.Called(ctx, id)
	if d := args.Get(0); d != nil {
		return d.(*models.Dispute), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDisputeRepo) Update(ctx context.Context, dispute *models.Dispute) error {
	return m.Called(ctx, dispute).Error(0)
}

func (m *mockDisputeRepo) List(ctx context.Context, filter repositories.DisputeFilter, offset, limit int) ([]models.Dispute, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	return args.Get(0).([]models.Dispute), args.Get(1).(int64), args.Error(2)
}

func (m *mockDisputeRepo) ListMerchant(ctx context.Context, merchantID uint, status string, offset, limit int) ([]models.Dispute, int64, error) {
	args := m.Called(ctx, merchantID, status, offset, limit)
	return args.Get(0).([]models.Dispute), args.Get(1).(int64), args.Error(2)
}

func (m *mockDisputeRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

type mockAuditRepo struct{ mock.Mock }

func (m *mockAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditRepo) List(ctx context.Context, filter repositories.AuditFilter, offset, limit int) ([]models.AuditLog, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	return args.Get(0).([]models.AuditLog), args.Get(1).(int64), args.Error(2)
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, audit.Entry) {}

func newAdminService(users *mockUserRepo, merchants *mockMerchantRepo, disputes *mockDisputeRepo) Service {
	// Dashboard is the only operation touching the raw handle; these tests
	// stay off it.
	return NewService(&gorm.DB{}, users, merchants, disputes, new(mockAuditRepo), noopAudit{}, nil, zerolog.Nop())
}

func TestDecideKYC(t *testing.T) {
	submitted := func() *models.Merchant {
		m := &models.Merchant{UserID: 7, KYCStatus: models.KYCStatusSubmitted}
		m.ID = 1
		return m
	}

	t.Run("approves a submitted merchant", func(t *testing.T) {
		merchants := new(mockMerchantRepo)
		users := new(mockUserRepo)
		m := submitted()
		merchants.On("GetByID", mock.Anything, uint(1)).Return(m, nil)
		merchants.On("Update", mock.Anything, m).Return(nil)

		svc := newAdminService(users, merchants, new(mockDisputeRepo))
		got, err := svc.DecideKYC(context.Background(), 99, 1, KYCDecisionRequest{Status: models.KYCStatusApproved})
		require.NoError(t, err)
		assert.Equal(t, models.KYCStatusApproved, got.KYCStatus)
	})

	t.Run("rejection requires a reason", func(t *testing.T) {
		svc := newAdminService(new(mockUserRepo), new(mockMerchantRepo), new(mockDisputeRepo))
		_, err := svc.DecideKYC(context.Background(), 99, 1, KYCDecisionRequest{Status: models.KYCStatusRejected})
		assert.ErrorIs(t, err, ErrRejectionReason)
	})

	t.Run("only APPROVED or REJECTED are decisions", func(t *testing.T) {
		svc := newAdminService(new(mockUserRepo), new(mockMerchantRepo), new(mockDisputeRepo))
		_, err := svc.DecideKYC(context.Background(), 99, 1, KYCDecisionRequest{Status: models.KYCStatusPending})
		assert.ErrorIs(t, err, ErrInvalidDecision)
	})

	t.Run("refuses merchants that have not submitted", func(t *testing.T) {
		merchants := new(mockMerchantRepo)
		m := &models.Merchant{KYCStatus: models.KYCStatusPending}
		m.ID = 1
		merchants.On("GetByID", mock.Anything, uint(1)).Return(m, nil)

		svc := newAdminService(new(mockUserRepo), merchants, new(mockDisputeRepo))
		_, err := svc.DecideKYC(context.Background(), 99, 1, KYCDecisionRequest{Status: models.KYCStatusApproved})
		assert.ErrorIs(t, err, ErrKYCNotSubmitted)
	})

	t.Run("rejection stores the reason", func(t *testing.T) {
		merchants := new(mockMerchantRepo)
		m := submitted()
		merchants.On("GetByID", mock.Anything, uint(1)).Return(m, nil)
		merchants.On("Update", mock.Anything, m).Return(nil)

		svc := newAdminService(new(mockUserRepo), merchants, new(mockDisputeRepo))
		got, err := svc.DecideKYC(context.Background(), 99, 1, KYCDecisionRequest{
			Status: models.KYCStatusRejected,
			Reason: "PAN mismatch",
		})
		require.NoError(t, err)
		assert.Equal(t, models.KYCStatusRejected, got.KYCStatus)
		assert.Equal(t, "PAN mismatch", got.KYCReason)
	})
}

func TestUpdateUser(t *testing.T) {
	boolPtr := func(b bool) *bool { return &b }

	t.Run("assigns a new role", func(t *testing.T) {
		users := new(mockUserRepo)
		u := &models.User{Role: models.RoleUser, IsActive: true}
		u.ID = 7
		users.On("GetByID", mock.Anything, uint(7)).Return(u, nil)
		users.On("Update", mock.Anything, u).Return(nil)

		svc := newAdminService(users, new(mockMerchantRepo), new(mockDisputeRepo))
		got, err := svc.UpdateUser(context.Background(), 99, 7, UserUpdateRequest{Role: models.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, got.Role)
		assert.True(t, got.IsActive)
	})

	t.Run("deactivates without touching the role", func(t *testing.T) {
		users := new(mockUserRepo)
		u := &models.User{Role: models.RoleMerchant, IsActive: true}
		u.ID = 7
		users.On("GetByID", mock.Anything, uint(7)).Return(u, nil)
		users.On("Update", mock.Anything, u).Return(nil)

		svc := newAdminService(users, new(mockMerchantRepo), new(mockDisputeRepo))
		got, err := svc.UpdateUser(context.Background(), 99, 7, UserUpdateRequest{IsActive: boolPtr(false)})
		require.NoError(t, err)
		assert.False(t, got.IsActive)
		assert.Equal(t, models.RoleMerchant, got.Role)
	})

	t.Run("demotes a super admin", func(t *testing.T) {
		users := new(mockUserRepo)
		u := &models.User{Role: models.RoleSuperAdmin, IsActive: true}
		u.ID = 2
		users.On("GetByID", mock.Anything, uint(2)).Return(u, nil)
		users.On("Update", mock.Anything, u).Return(nil)

		svc := newAdminService(users, new(mockMerchantRepo), new(mockDisputeRepo))
		got, err := svc.UpdateUser(context.Background(), 99, 2, UserUpdateRequest{Role: models.RoleUser})
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, got.Role)
	})

	t.Run("rejects roles outside the enum", func(t *testing.T) {
		users := new(mockUserRepo)
		svc := newAdminService(users, new(mockMerchantRepo), new(mockDisputeRepo))
		_, err := svc.UpdateUser(context.Background(), 99, 7, UserUpdateRequest{Role: "ROOT"})
		assert.ErrorIs(t, err, ErrInvalidRole)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing user reads as not found", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetByID", mock.Anything, uint(404)).Return(nil, repositories.ErrNotFound)

		svc := newAdminService(users, new(mockMerchantRepo), new(mockDisputeRepo))
		_, err := svc.UpdateUser(context.Background(), 99, 404, UserUpdateRequest{Role: models.RoleAdmin})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUpdateDispute(t *testing.T) {
	t.Run("resolving stamps the resolution time", func(t *testing.T) {
		disputes := new(mockDisputeRepo)
		d := &models.Dispute{Status: models.DisputeStatusOpen}
		d.ID = 5
		disputes.On("GetByID", mock.Anything, uint(5)).Return(d, nil)
		disputes.On("Update", mock.Anything, d).Return(nil)

		svc := newAdminService(new(mockUserRepo), new(mockMerchantRepo), disputes)
		got, err := svc.UpdateDispute(context.Background(), 99, 5, DisputeUpdateRequest{
			Status:     models.DisputeStatusResolved,
			Resolution: "refund issued",
		})
		require.NoError(t, err)
		assert.Equal(t, models.DisputeStatusResolved, got.Status)
		assert.Equal(t, "refund issued", got.Resolution)
		assert.NotNil(t, got.ResolvedAt)
	})

	t.Run("missing dispute reads as not found", func(t *testing.T) {
		disputes := new(mockDisputeRepo)
		disputes.On("GetByID", mock.Anything, uint(404)).Return(nil, repositories.ErrNotFound)

		svc := newAdminService(new(mockUserRepo), new(mockMerchantRepo), disputes)
		_, err := svc.UpdateDispute(context.Background(), 99, 404, DisputeUpdateRequest{})
		assert.ErrorIs(t, err, ErrDisputeNotFound)
	})
}
