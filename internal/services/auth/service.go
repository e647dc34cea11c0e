// Package auth implements registration, login with lockout, token refresh
// and the password/verification flows. Verification and reset tokens are
// volatile state and live in Redis with a TTL.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"payflow/internal/config"
	"payflow/internal/models"
	"payflow/internal/repositories"
	"payflow/internal/repositories/cache"
	"payflow/internal/services/audit"
	"payflow/internal/services/notification"
	"payflow/internal/utils"
)

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials or account is inactive")
	ErrAccountLocked      = errors.New("account is temporarily locked due to multiple failed login attempts")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrAlreadyVerified    = errors.New("email is already verified")
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute

	verificationTTL = 24 * time.Hour
	resetTTL        = time.Hour
)

type RegisterRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      string
}

// TokenPair is an access/refresh token set.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, *TokenPair, error)
	Login(ctx context.Context, email, password, ip string) (*models.User, *TokenPair, error)
	Logout(ctx context.Context, userID uint)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Profile(ctx context.Context, userID uint) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, userID uint) error
}

type service struct {
	users    repositories.UserRepository
	tokens   *cache.Service
	audit    audit.Service
	notifier notification.Service
	log      zerolog.Logger
}

func NewService(
	users repositories.UserRepository,
	tokens *cache.Service,
	auditSvc audit.Service,
	notifier notification.Service,
	log zerolog.Logger,
) Service {
	if users == nil {
		panic("user repository is required")
	}
	if auditSvc == nil {
		panic("audit service is required")
	}
	return &service{
		users:    users,
		tokens:   tokens,
		audit:    auditSvc,
		notifier: notifier,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*models.User, *TokenPair, error) {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, fmt.Errorf("check email: %w", err)
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Email:     req.Email,
		Password:  hashed,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      role,
		IsActive:  true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Two concurrent registrations can both pass the email check; the
		// unique index settles the race.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	s.sendVerification(ctx, user)

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &user.ID,
		Action:     models.ActionUserRegistered,
		Resource:   "User",
		ResourceID: fmt.Sprint(user.ID),
		Details:    models.JSON{"email": user.Email, "role": user.Role},
	})

	return user, pair, nil
}

func (s *service) Login(ctx context.Context, email, password, ip string) (*models.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return nil, nil, ErrInvalidCredentials
	}

	// Lockout applies regardless of password correctness.
	if user.Locked(time.Now()) {
		return nil, nil, ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		user.LoginAttempts++
		if user.LoginAttempts >= maxLoginAttempts {
			lockedUntil := time.Now().Add(lockoutDuration)
			user.LockedUntil = &lockedUntil
		}
		if err := s.users.Update(ctx, user); err != nil {
			s.log.Error().Err(err).Str("email", email).Msg("failed to record login attempt")
		}
		return nil, nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.LoginAttempts = 0
	user.LockedUntil = nil
	user.LastLogin = &now
	if err := s.users.Update(ctx, user); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("failed to stamp login")
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &user.ID,
		Action:     models.ActionUserLogin,
		Resource:   "User",
		ResourceID: fmt.Sprint(user.ID),
		Details:    models.JSON{"email": email},
		IPAddress:  ip,
	})

	return user, pair, nil
}

func (s *service) Logout(ctx context.Context, userID uint) {
	s.audit.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     models.ActionUserLogout,
		Resource:   "User",
		ResourceID: fmt.Sprint(userID),
	})
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := utils.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		return "", ErrInvalidToken
	}

	access, _, err := utils.GenerateTokens(user, merchantID(user))
	return access, err
}

func (s *service) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		// Do not reveal whether the account exists.
		return nil
	}
	if err != nil {
		return err
	}

	token, err := utils.GenerateSecureToken()
	if err != nil {
		return err
	}
	if s.tokens != nil {
		if err := s.tokens.StoreResetToken(ctx, token, user.ID, resetTTL); err != nil {
			return fmt.Errorf("store reset token: %w", err)
		}
	}

	if s.notifier != nil {
		s.notifier.Dispatch(notification.Message{
			To:       user.Email,
			ToName:   user.FirstName,
			Subject:  "Reset your password",
			Template: notification.TemplatePasswordReset,
			Data: map[string]interface{}{
				"Name":     user.FirstName,
				"ResetURL": config.GetEnv("CLIENT_URL", "http://localhost:5173") + "/reset-password?token=" + token,
			},
		})
	}
	return nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if s.tokens == nil {
		return ErrInvalidToken
	}
	userID, err := s.tokens.ConsumeResetToken(ctx, token)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ErrInvalidToken
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	user.LoginAttempts = 0
	user.LockedUntil = nil
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &user.ID,
		Action:     models.ActionPasswordReset,
		Resource:   "User",
		ResourceID: fmt.Sprint(user.ID),
	})
	return nil
}

func (s *service) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)) != nil {
		return ErrWrongPassword
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     models.ActionPasswordChanged,
		Resource:   "User",
		ResourceID: fmt.Sprint(userID),
	})
	return nil
}

func (s *service) VerifyEmail(ctx context.Context, token string) error {
	if s.tokens == nil {
		return ErrInvalidToken
	}
	userID, err := s.tokens.ConsumeVerificationToken(ctx, token)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ErrInvalidToken
	}

	user.IsVerified = true
	user.EmailVerified = true
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &user.ID,
		Action:     models.ActionEmailVerified,
		Resource:   "User",
		ResourceID: fmt.Sprint(user.ID),
	})
	return nil
}

func (s *service) ResendVerification(ctx context.Context, userID uint) error {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	s.sendVerification(ctx, user)
	return nil
}

func (s *service) sendVerification(ctx context.Context, user *models.User) {
	token, err := utils.GenerateSecureToken()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to generate verification token")
		return
	}
	if s.tokens != nil {
		if err := s.tokens.StoreVerificationToken(ctx, token, user.ID, verificationTTL); err != nil {
			s.log.Error().Err(err).Msg("failed to store verification token")
			return
		}
	}
	if s.notifier != nil {
		s.notifier.Dispatch(notification.Message{
			To:       user.Email,
			ToName:   user.FirstName,
			Subject:  "Verify your email address",
			Template: notification.TemplateEmailVerification,
			Data: map[string]interface{}{
				"Name":            user.FirstName,
				"VerificationURL": config.GetEnv("CLIENT_URL", "http://localhost:5173") + "/verify-email?token=" + token,
			},
		})
	}
}

func (s *service) issueTokens(user *models.User) (*TokenPair, error) {
	access, refresh, err := utils.GenerateTokens(user, merchantID(user))
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func merchantID(user *models.User) *uint {
	if user.Merchant == nil {
		return nil
	}
	return &user.Merchant.ID
}

func hashPassword(password string) (string, error) {
	cost := config.GetIntEnv("BCRYPT_ROUNDS", 12)
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
