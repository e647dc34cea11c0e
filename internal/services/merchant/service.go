// Package merchant handles merchant onboarding, profile management and the
// KYC submission side of verification. Admin decisions live in the admin
// service.
package merchant

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"payflow/internal/models"
	"payflow/internal/repositories"
	"payflow/internal/services/audit"
)

var (
	ErrAlreadyMerchant     = errors.New("user already has a merchant account")
	ErrMerchantNotFound    = errors.New("merchant account not found")
	ErrKYCNotResubmittable = errors.New("KYC documents cannot be submitted in the current status")
)

type RegisterRequest struct {
	BusinessName string
	BusinessType string
	GSTIN        string
	PAN          string
	Address      models.JSON
	BankDetails  models.JSON
}

type UpdateRequest struct {
	BusinessName string
	GSTIN        string
	Address      models.JSON
	BankDetails  models.JSON
}

// Stats summarizes a merchant's processing volume.
type Stats struct {
	TotalProcessed float64 `json:"totalProcessed"`
	TotalFees      float64 `json:"totalFees"`
	Transactions   int64   `json:"transactions"`
	Completed      int64   `json:"completed"`
	Refunds        int64   `json:"refunds"`
}

type Service interface {
	Register(ctx context.Context, userID uint, req RegisterRequest) (*models.Merchant, error)
	Profile(ctx context.Context, userID uint) (*models.Merchant, error)
	UpdateProfile(ctx context.Context, userID uint, req UpdateRequest) (*models.Merchant, error)
	SubmitKYC(ctx context.Context, userID uint, documents models.JSON) (*models.Merchant, error)
	KYCStatus(ctx context.Context, userID uint) (string, string, error)
	Stats(ctx context.Context, userID uint) (*Stats, error)
}

type service struct {
	merchants    repositories.MerchantRepository
	users        repositories.UserRepository
	transactions repositories.TransactionRepository
	refunds      repositories.RefundRepository
	audit        audit.Service
	log          zerolog.Logger
}

func NewService(
	merchants repositories.MerchantRepository,
	users repositories.UserRepository,
	transactions repositories.TransactionRepository,
	refunds repositories.RefundRepository,
	auditSvc audit.Service,
	log zerolog.Logger,
) Service {
	if merchants == nil || users == nil {
		panic("merchant and user repositories are required")
	}
	if auditSvc == nil {
		panic("audit service is required")
	}
	return &service{
		merchants:    merchants,
		users:        users,
		transactions: transactions,
		refunds:      refunds,
		audit:        auditSvc,
		log:          log.With().Str("component", "merchant").Logger(),
	}
}

// Register creates the merchant record and promotes the user's role. The new
// account starts with KYC PENDING and the default processing limits.
func (s *service) Register(ctx context.Context, userID uint, req RegisterRequest) (*models.Merchant, error) {
	if _, err := s.merchants.GetByUserID(ctx, userID); err == nil {
		return nil, ErrAlreadyMerchant
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("check merchant: %w", err)
	}

	merchant := &models.Merchant{
		UserID:       userID,
		BusinessName: req.BusinessName,
		BusinessType: req.BusinessType,
		GSTIN:        req.GSTIN,
		PAN:          req.PAN,
		Address:      req.Address,
		BankDetails:  req.BankDetails,
		KYCStatus:    models.KYCStatusPending,
		IsActive:     true,
	}
	if err := s.merchants.Create(ctx, merchant); err != nil {
		return nil, fmt.Errorf("create merchant: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.Role == models.RoleUser {
		user.Role = models.RoleMerchant
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("promote user: %w", err)
		}
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     models.ActionMerchantCreated,
		Resource:   "Merchant",
		ResourceID: fmt.Sprint(merchant.ID),
		Details:    models.JSON{"businessName": merchant.BusinessName, "businessType": merchant.BusinessType},
	})

	return merchant, nil
}

func (s *service) Profile(ctx context.Context, userID uint) (*models.Merchant, error) {
	merchant, err := s.merchants.GetByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrMerchantNotFound
	}
	return merchant, err
}

func (s *service) UpdateProfile(ctx context.Context, userID uint, req UpdateRequest) (*models.Merchant, error) {
	merchant, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.BusinessName != "" {
		merchant.BusinessName = req.BusinessName
	}
	if req.GSTIN != "" {
		merchant.GSTIN = req.GSTIN
	}
	if req.Address != nil {
		merchant.Address = req.Address
	}
	if req.BankDetails != nil {
		merchant.BankDetails = req.BankDetails
	}
	if err := s.merchants.Update(ctx, merchant); err != nil {
		return nil, fmt.Errorf("update merchant: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     models.ActionMerchantUpdated,
		Resource:   "Merchant",
		ResourceID: fmt.Sprint(merchant.ID),
	})

	return merchant, nil
}

// SubmitKYC moves PENDING or REJECTED merchants to SUBMITTED. Approved
// merchants cannot resubmit.
func (s *service) SubmitKYC(ctx context.Context, userID uint, documents models.JSON) (*models.Merchant, error) {
	merchant, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch merchant.KYCStatus {
	case models.KYCStatusPending, models.KYCStatusRejected:
	default:
		return nil, ErrKYCNotResubmittable
	}

	merchant.KYCDocuments = documents
	merchant.KYCStatus = models.KYCStatusSubmitted
	merchant.KYCReason = ""
	if err := s.merchants.Update(ctx, merchant); err != nil {
		return nil, fmt.Errorf("submit kyc: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     models.ActionKYCSubmitted,
		Resource:   "Merchant",
		ResourceID: fmt.Sprint(merchant.ID),
	})

	return merchant, nil
}

func (s *service) KYCStatus(ctx context.Context, userID uint) (string, string, error) {
	merchant, err := s.Profile(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return merchant.KYCStatus, merchant.KYCReason, nil
}

func (s *service) Stats(ctx context.Context, userID uint) (*Stats, error) {
	merchant, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalProcessed: merchant.TotalProcessed,
		TotalFees:      merchant.TotalFees,
	}
	if s.transactions != nil {
		if total, completed, err := s.transactions.CountByMerchant(ctx, merchant.ID); err == nil {
			stats.Transactions = total
			stats.Completed = completed
		} else {
			s.log.Error().Err(err).Uint("merchant_id", merchant.ID).Msg("transaction counts unavailable")
		}
	}
	if s.refunds != nil {
		if refunds, err := s.refunds.CountByMerchant(ctx, merchant.ID); err == nil {
			stats.Refunds = refunds
		} else {
			s.log.Error().Err(err).Uint("merchant_id", merchant.ID).Msg("refund count unavailable")
		}
	}
	return stats, nil
}
