// Package user covers account self-service: profile edits, security
// settings and the caller's own transaction history. Credential flows stay
// in the auth service; operator mutations live in admin.
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"payflow/internal/models"
	"payflow/internal/repositories"
	"payflow/internal/services/audit"
)

var ErrUserNotFound = errors.New("user not found")

// ProfileUpdate carries the self-editable identity fields. Empty fields are
// left untouched.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Phone     string
	Avatar    string
}

// Settings is the security preference set exposed to the account owner.
type Settings struct {
	TwoFactorEnabled bool     `json:"twoFactorEnabled"`
	IPWhitelist      []string `json:"ipWhitelist"`
}

// SettingsUpdate applies partially: a nil toggle or whitelist keeps the
// stored value.
type SettingsUpdate struct {
	TwoFactorEnabled *bool
	IPWhitelist      []string
}

type Service interface {
	UpdateProfile(ctx context.Context, userID uint, req ProfileUpdate) (*models.User, error)
	Settings(ctx context.Context, userID uint) (*Settings, error)
	UpdateSettings(ctx context.Context, userID uint, req SettingsUpdate) (*Settings, error)
	Transactions(ctx context.Context, userID uint, filter repositories.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error)
}

type service struct {
	users        repositories.UserRepository
	merchants    repositories.MerchantRepository
	transactions repositories.TransactionRepository
	audit        audit.Service
	log          zerolog.Logger
}

func NewService(
	users repositories.UserRepository,
	merchants repositories.MerchantRepository,
	transactions repositories.TransactionRepository,
	auditSvc audit.Service,
	log zerolog.Logger,
) Service {
	if users == nil {
		panic("user repository is required")
	}
	if auditSvc == nil {
		panic("audit service is required")
	}
	return &service{
		users:        users,
		merchants:    merchants,
		transactions: transactions,
		audit:        auditSvc,
		log:          log.With().Str("component", "user").Logger(),
	}
}

func (s *service) UpdateProfile(ctx context.Context, userID uint, req ProfileUpdate) (*models.User, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	changed := models.JSON{}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
		changed["firstName"] = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
		changed["lastName"] = req.LastName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
		user.PhoneVerified = false
		changed["phone"] = req.Phone
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
		changed["avatar"] = req.Avatar
	}
	if len(changed) == 0 {
		return user, nil
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     models.ActionUserUpdated,
		Resource:   "User",
		ResourceID: fmt.Sprint(userID),
		Details:    changed,
	})

	return user, nil
}

func (s *service) Settings(ctx context.Context, userID uint) (*Settings, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return settingsOf(user), nil
}

func (s *service) UpdateSettings(ctx context.Context, userID uint, req SettingsUpdate) (*Settings, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.TwoFactorEnabled != nil {
		user.TwoFactorEnabled = *req.TwoFactorEnabled
	}
	if req.IPWhitelist != nil {
		user.IPWhitelist = models.StringList(req.IPWhitelist)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     models.ActionUserUpdated,
		Resource:   "User",
		ResourceID: fmt.Sprint(userID),
		Details:    models.JSON{"settings": true},
	})

	return settingsOf(user), nil
}

// Transactions lists the caller's processing history. Users without a
// merchant account have none.
func (s *service) Transactions(ctx context.Context, userID uint, filter repositories.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error) {
	merchant, err := s.merchants.GetByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return []models.Transaction{}, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return s.transactions.ListByMerchant(ctx, merchant.ID, filter, offset, limit)
}

func (s *service) load(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func settingsOf(user *models.User) *Settings {
	return &Settings{
		TwoFactorEnabled: user.TwoFactorEnabled,
		IPWhitelist:      user.IPWhitelist,
	}
}
