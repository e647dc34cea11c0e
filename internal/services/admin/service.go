// Package admin backs the platform operator endpoints: dashboard counters,
// user and merchant management, KYC decisions, dispute handling and the
// audit-log browser.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"payflow/internal/models"
	"payflow/internal/repositories"
	"payflow/internal/services/audit"
	"payflow/internal/services/notification"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrMerchantNotFound = errors.New("merchant not found")
	ErrDisputeNotFound  = errors.New("dispute not found")
	ErrKYCNotSubmitted  = errors.New("merchant has not submitted KYC documents")
	ErrInvalidDecision  = errors.New("decision must be APPROVED or REJECTED")
	ErrRejectionReason  = errors.New("a rejection requires a reason")
	ErrInvalidRole      = errors.New("unknown role")
)

// Dashboard is the operator landing-page counter set.
type Dashboard struct {
	TotalUsers        int64   `json:"totalUsers"`
	TotalMerchants    int64   `json:"totalMerchants"`
	PendingKYC        int64   `json:"pendingKyc"`
	TotalTransactions int64   `json:"totalTransactions"`
	TotalVolume       float64 `json:"totalVolume"`
	TotalFees         float64 `json:"totalFees"`
	OpenDisputes      int64   `json:"openDisputes"`
	Last24hVolume     float64 `json:"last24hVolume"`
}

// UserUpdateRequest carries the operator-editable user fields. Nil / empty
// fields are left untouched.
type UserUpdateRequest struct {
	IsActive *bool
	Role     string
}

type KYCDecisionRequest struct {
	Status string
	Reason string
}

type DisputeUpdateRequest struct {
	Status     string
	Resolution string
}

type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	ListUsers(ctx context.Context, filter repositories.UserFilter, offset, limit int) ([]models.User, int64, error)
	UpdateUser(ctx context.Context, adminID, userID uint, req UserUpdateRequest) (*models.User, error)
	ListMerchants(ctx context.Context, filter repositories.MerchantFilter, offset, limit int) ([]models.Merchant, int64, error)
	DecideKYC(ctx context.Context, adminID, merchantID uint, req KYCDecisionRequest) (*models.Merchant, error)
	ListDisputes(ctx context.Context, filter repositories.DisputeFilter, offset, limit int) ([]models.Dispute, int64, error)
	UpdateDispute(ctx context.Context, adminID, disputeID uint, req DisputeUpdateRequest) (*models.Dispute, error)
	AuditLogs(ctx context.Context, filter repositories.AuditFilter, offset, limit int) ([]models.AuditLog, int64, error)
}

type service struct {
	db        *gorm.DB
	users     repositories.UserRepository
	merchants repositories.MerchantRepository
	disputes  repositories.DisputeRepository
	auditRepo repositories.AuditRepository
	audit     audit.Service
	notifier  notification.Service
	log       zerolog.Logger
}

func NewService(
	db *gorm.DB,
	users repositories.UserRepository,
	merchants repositories.MerchantRepository,
	disputes repositories.DisputeRepository,
	auditRepo repositories.AuditRepository,
	auditSvc audit.Service,
	notifier notification.Service,
	log zerolog.Logger,
) Service {
	if db == nil {
		panic("database handle is required")
	}
	if users == nil || merchants == nil || disputes == nil || auditRepo == nil {
		panic("repositories are required")
	}
	if auditSvc == nil {
		panic("audit service is required")
	}
	return &service{
		db:        db,
		users:     users,
		merchants: merchants,
		disputes:  disputes,
		auditRepo: auditRepo,
		audit:     auditSvc,
		notifier:  notifier,
		log:       log.With().Str("component", "admin").Logger(),
	}
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&d.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if err := db.Model(&models.Merchant{}).Count(&d.TotalMerchants).Error; err != nil {
		return nil, fmt.Errorf("count merchants: %w", err)
	}
	if err := db.Model(&models.Merchant{}).
		Where("kyc_status = ?", models.KYCStatusSubmitted).
		Count(&d.PendingKYC).Error; err != nil {
		return nil, fmt.Errorf("count pending kyc: %w", err)
	}
	if err := db.Model(&models.Transaction{}).Count(&d.TotalTransactions).Error; err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	var totals struct {
		Volume float64
		Fees   float64
	}
	if err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0) AS volume, COALESCE(SUM(commission), 0) AS fees").
		Where("status IN (?, ?)", models.StatusCompleted, models.StatusRefunded).
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("sum volume: %w", err)
	}
	d.TotalVolume = totals.Volume
	d.TotalFees = totals.Fees

	open, err := s.disputes.CountByStatus(ctx, models.DisputeStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("count disputes: %w", err)
	}
	d.OpenDisputes = open

	if err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status IN (?, ?) AND created_at >= ?",
			models.StatusCompleted, models.StatusRefunded, time.Now().Add(-24*time.Hour)).
		Scan(&d.Last24hVolume).Error; err != nil {
		return nil, fmt.Errorf("sum 24h volume: %w", err)
	}

	return &d, nil
}

func (s *service) ListUsers(ctx context.Context, filter repositories.UserFilter, offset, limit int) ([]models.User, int64, error) {
	return s.users.List(ctx, filter, offset, limit)
}

// UpdateUser applies operator changes: activation toggles and role
// assignments (USER/MERCHANT/ADMIN/SUPER_ADMIN).
func (s *service) UpdateUser(ctx context.Context, adminID, userID uint, req UserUpdateRequest) (*models.User, error) {
	if req.Role != "" {
		valid := false
		for _, role := range models.UserRoles {
			if req.Role == role {
				valid = true
				break
			}
		}
		if !valid {
			return nil, ErrInvalidRole
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	changes := models.JSON{}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
		changes["isActive"] = *req.IsActive
	}
	if req.Role != "" {
		user.Role = req.Role
		changes["role"] = req.Role
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &adminID,
		Action:     models.ActionUserUpdated,
		Resource:   "User",
		ResourceID: fmt.Sprint(userID),
		Details:    changes,
	})

	return user, nil
}

func (s *service) ListMerchants(ctx context.Context, filter repositories.MerchantFilter, offset, limit int) ([]models.Merchant, int64, error) {
	return s.merchants.List(ctx, filter, offset, limit)
}

// DecideKYC approves or rejects a SUBMITTED merchant and emails the outcome.
func (s *service) DecideKYC(ctx context.Context, adminID, merchantID uint, req KYCDecisionRequest) (*models.Merchant, error) {
	if req.Status != models.KYCStatusApproved && req.Status != models.KYCStatusRejected {
		return nil, ErrInvalidDecision
	}
	if req.Status == models.KYCStatusRejected && req.Reason == "" {
		return nil, ErrRejectionReason
	}

	merchant, err := s.merchants.GetByID(ctx, merchantID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrMerchantNotFound
	}
	if err != nil {
		return nil, err
	}
	if merchant.KYCStatus != models.KYCStatusSubmitted {
		return nil, ErrKYCNotSubmitted
	}

	merchant.KYCStatus = req.Status
	merchant.KYCReason = req.Reason
	if err := s.merchants.Update(ctx, merchant); err != nil {
		return nil, fmt.Errorf("update merchant: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &adminID,
		Action:     models.ActionKYCDecision,
		Resource:   "Merchant",
		ResourceID: fmt.Sprint(merchantID),
		Details:    models.JSON{"status": req.Status, "reason": req.Reason},
	})

	s.notifyKYC(ctx, merchant)

	return merchant, nil
}

func (s *service) notifyKYC(ctx context.Context, merchant *models.Merchant) {
	if s.notifier == nil {
		return
	}
	owner, err := s.users.GetByID(ctx, merchant.UserID)
	if err != nil {
		s.log.Error().Err(err).Uint("merchant_id", merchant.ID).Msg("cannot notify kyc decision")
		return
	}
	s.notifier.Dispatch(notification.Message{
		To:       owner.Email,
		ToName:   owner.FirstName,
		Subject:  "Your merchant verification update",
		Template: notification.TemplateKYCDecision,
		Data: map[string]interface{}{
			"Name":   owner.FirstName,
			"Status": merchant.KYCStatus,
			"Reason": merchant.KYCReason,
		},
	})
}

func (s *service) ListDisputes(ctx context.Context, filter repositories.DisputeFilter, offset, limit int) ([]models.Dispute, int64, error) {
	return s.disputes.List(ctx, filter, offset, limit)
}

func (s *service) UpdateDispute(ctx context.Context, adminID, disputeID uint, req DisputeUpdateRequest) (*models.Dispute, error) {
	dispute, err := s.disputes.GetByID(ctx, disputeID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Status != "" {
		dispute.Status = req.Status
		if req.Status == models.DisputeStatusResolved || req.Status == models.DisputeStatusClosed {
			now := time.Now()
			dispute.ResolvedAt = &now
		}
	}
	if req.Resolution != "" {
		dispute.Resolution = req.Resolution
	}
	if err := s.disputes.Update(ctx, dispute); err != nil {
		return nil, fmt.Errorf("update dispute: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &adminID,
		Action:     models.ActionDisputeUpdated,
		Resource:   "Dispute",
		ResourceID: fmt.Sprint(disputeID),
		Details:    models.JSON{"status": dispute.Status},
	})

	return dispute, nil
}

func (s *service) AuditLogs(ctx context.Context, filter repositories.AuditFilter, offset, limit int) ([]models.AuditLog, int64, error) {
	return s.auditRepo.List(ctx, filter, offset, limit)
}
