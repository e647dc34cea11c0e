package auth

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

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

type noopAudit struct{}

func (noopAudit) Record(context.Context, audit.Entry) {}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Email:    "asha@example.com",
		Password: string(hashed),
		Role:     models.RoleUser,
		IsActive: true,
	}
	u.ID = 7
	return u
}

func newAuthService(users repositories.UserRepository) Service {
	return NewService(users, nil, noopAudit{}, nil, zerolog.Nop())
}

func setJWTSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_REFRESH_SECRET", "test-refresh-secret")
}

func TestLogin(t *testing.T) {
	t.Run("succeeds and resets lockout state", func(t *testing.T) {
		setJWTSecrets(t)
		users := new(mockUserRepo)
		user := testUser(t, "Sup3rSecret")
		user.LoginAttempts = 3
		users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
		users.On("Update", mock.Anything, user).Return(nil)

		svc := newAuthService(users)
		got, pair, err := svc.Login(context.Background(), user.Email, "Sup3rSecret", "10.0.0.1")
		require.NoError(t, err)

		assert.Equal(t, 0, got.LoginAttempts)
		assert.Nil(t, got.LockedUntil)
		assert.NotNil(t, got.LastLogin)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
	})

	t.Run("wrong password increments the attempt counter", func(t *testing.T) {
		users := new(mockUserRepo)
		user := testUser(t, "Sup3rSecret")
		users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
		users.On("Update", mock.Anything, user).Return(nil)

		svc := newAuthService(users)
		_, _, err := svc.Login(context.Background(), user.Email, "wrong", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, 1, user.LoginAttempts)
		assert.Nil(t, user.LockedUntil)
	})

	t.Run("fifth failure locks the account", func(t *testing.T) {
		users := new(mockUserRepo)
		user := testUser(t, "Sup3rSecret")
		user.LoginAttempts = 4
		users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
		users.On("Update", mock.Anything, user).Return(nil)

		svc := newAuthService(users)
		_, _, err := svc.Login(context.Background(), user.Email, "wrong", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, 5, user.LoginAttempts)
		require.NotNil(t, user.LockedUntil)
		assert.WithinDuration(t, time.Now().Add(lockoutDuration), *user.LockedUntil, 5*time.Second)
	})

	t.Run("locked account rejects even the correct password", func(t *testing.T) {
		users := new(mockUserRepo)
		user := testUser(t, "Sup3rSecret")
		lockedUntil := time.Now().Add(10 * time.Minute)
		user.LoginAttempts = 5
		user.LockedUntil = &lockedUntil
		users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

		svc := newAuthService(users)
		_, _, err := svc.Login(context.Background(), user.Email, "Sup3rSecret", "")
		assert.ErrorIs(t, err, ErrAccountLocked)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("expired lock admits the correct password", func(t *testing.T) {
		setJWTSecrets(t)
		users := new(mockUserRepo)
		user := testUser(t, "Sup3rSecret")
		expired := time.Now().Add(-time.Minute)
		user.LoginAttempts = 5
		user.LockedUntil = &expired
		users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
		users.On("Update", mock.Anything, user).Return(nil)

		svc := newAuthService(users)
		_, _, err := svc.Login(context.Background(), user.Email, "Sup3rSecret", "")
		require.NoError(t, err)
		assert.Equal(t, 0, user.LoginAttempts)
		assert.Nil(t, user.LockedUntil)
	})

	t.Run("unknown email reads as invalid credentials", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repositories.ErrNotFound)

		svc := newAuthService(users)
		_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive account reads as invalid credentials", func(t *testing.T) {
		users := new(mockUserRepo)
		user := testUser(t, "Sup3rSecret")
		user.IsActive = false
		users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

		svc := newAuthService(users)
		_, _, err := svc.Login(context.Background(), user.Email, "Sup3rSecret", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRegister(t *testing.T) {
	t.Run("rejects duplicate email", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetByEmail", mock.Anything, "asha@example.com").Return(testUser(t, "x"), nil)

		svc := newAuthService(users)
		_, _, err := svc.Register(context.Background(), RegisterRequest{
			Email: "asha@example.com", Password: "Sup3rSecret", FirstName: "Asha",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("insert conflict from a concurrent registration reads as taken", func(t *testing.T) {
		t.Setenv("BCRYPT_ROUNDS", "4")
		users := new(mockUserRepo)
		users.On("GetByEmail", mock.Anything, "race@example.com").Return(nil, repositories.ErrNotFound)
		users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(repositories.ErrDuplicate)

		svc := newAuthService(users)
		_, _, err := svc.Register(context.Background(), RegisterRequest{
			Email: "race@example.com", Password: "Sup3rSecret", FirstName: "Asha",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("creates the user with a hashed password", func(t *testing.T) {
		setJWTSecrets(t)
		t.Setenv("BCRYPT_ROUNDS", "4")
		users := new(mockUserRepo)
		users.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, repositories.ErrNotFound)
		users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

		svc := newAuthService(users)
		user, pair, err := svc.Register(context.Background(), RegisterRequest{
			Email: "new@example.com", Password: "Sup3rSecret", FirstName: "Nia",
		})
		require.NoError(t, err)

		assert.Equal(t, models.RoleUser, user.Role)
		assert.True(t, user.IsActive)
		assert.False(t, user.IsVerified)
		assert.NotEqual(t, "Sup3rSecret", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("Sup3rSecret")))
		assert.NotEmpty(t, pair.AccessToken)
	})
}

func TestChangePassword(t *testing.T) {
	t.Run("rejects wrong current password", func(t *testing.T) {
		users := new(mockUserRepo)
		user := testUser(t, "Sup3rSecret")
		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		svc := newAuthService(users)
		err := svc.ChangePassword(context.Background(), user.ID, "nope", "N3wPassword")
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("replaces the hash", func(t *testing.T) {
		t.Setenv("BCRYPT_ROUNDS", "4")
		users := new(mockUserRepo)
		user := testUser(t, "Sup3rSecret")
		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		users.On("Update", mock.Anything, user).Return(nil)

		svc := newAuthService(users)
		err := svc.ChangePassword(context.Background(), user.ID, "Sup3rSecret", "N3wPassword")
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("N3wPassword")))
	})
}
