// Package dispute lets merchants raise disputes on their transactions.
// Resolution is an operator action and lives in the admin service.
package dispute

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
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAccessDenied        = errors.New("transaction belongs to another merchant")
	ErrNotDisputable       = errors.New("only completed or refunded transactions can be disputed")
)

type OpenRequest struct {
	TransactionID uint
	Reason        string
}

type Service interface {
	Open(ctx context.Context, userID, merchantID uint, req OpenRequest) (*models.Dispute, error)
	List(ctx context.Context, merchantID uint, status string, offset, limit int) ([]models.Dispute, int64, error)
}

type service struct {
	disputes     repositories.DisputeRepository
	transactions repositories.TransactionRepository
	audit        audit.Service
	log          zerolog.Logger
}

func NewService(
	disputes repositories.DisputeRepository,
	transactions repositories.TransactionRepository,
	auditSvc audit.Service,
	log zerolog.Logger,
) Service {
	if disputes == nil || transactions == nil {
		panic("dispute and transaction repositories are required")
	}
	if auditSvc == nil {
		panic("audit service is required")
	}
	return &service{
		disputes:     disputes,
		transactions: transactions,
		audit:        auditSvc,
		log:          log.With().Str("component", "dispute").Logger(),
	}
}

func (s *service) Open(ctx context.Context, userID, merchantID uint, req OpenRequest) (*models.Dispute, error) {
	t, err := s.transactions.GetByID(ctx, req.TransactionID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.MerchantID != merchantID {
		return nil, ErrAccessDenied
	}
	if t.Status != models.StatusCompleted && t.Status != models.StatusRefunded {
		return nil, ErrNotDisputable
	}

	dispute := &models.Dispute{
		TransactionID: t.ID,
		MerchantID:    merchantID,
		RaisedByID:    userID,
		Reason:        req.Reason,
		Status:        models.DisputeStatusOpen,
	}
	if err := s.disputes.Create(ctx, dispute); err != nil {
		return nil, fmt.Errorf("create dispute: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     models.ActionDisputeOpened,
		Resource:   "Dispute",
		ResourceID: fmt.Sprint(dispute.ID),
		Details:    models.JSON{"transactionId": t.ID, "reason": req.Reason},
	})

	return dispute, nil
}

func (s *service) List(ctx context.Context, merchantID uint, status string, offset, limit int) ([]models.Dispute, int64, error) {
	return s.disputes.ListMerchant(ctx, merchantID, status, offset, limit)
}
