// Package payment implements the transaction/refund engine: it creates
// payments under merchant limits, advances them through the status machine
// via an Authorizer, and books refunds against the refundable remainder.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"payflow/internal/models"
	"payflow/internal/repositories"
	"payflow/internal/repositories/cache"
	"payflow/internal/services/audit"
	"payflow/internal/services/notification"
	"payflow/internal/utils"
)

type Service interface {
	CreatePayment(ctx context.Context, merchantID, userID uint, req CreatePaymentRequest) (*CreatePaymentResult, error)
	ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (*models.Transaction, error)
	GetPaymentStatus(ctx context.Context, orderID string) (*models.Transaction, error)
	GetTransaction(ctx context.Context, id uint) (*models.Transaction, error)
	CreateRefund(ctx context.Context, merchantID, userID uint, req RefundRequest) (*models.Refund, error)
	GetRefund(ctx context.Context, refundID string) (*models.Refund, error)
	SimulatePayment(ctx context.Context, actorID uint, req SimulateRequest) (*models.Transaction, error)
	HandleCallback(ctx context.Context, req CallbackRequest) error
	CreatePaymentLink(ctx context.Context, merchantID, userID uint, req LinkRequest) (*models.PaymentLink, string, error)
	GetPaymentLink(ctx context.Context, linkID string) (*models.PaymentLink, error)
	ListMerchantPayments(ctx context.Context, merchantID uint, filter repositories.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error)
}

type service struct {
	transactions repositories.TransactionRepository
	merchants    repositories.MerchantRepository
	refunds      repositories.RefundRepository
	links        repositories.PaymentLinkRepository
	authorizer   Authorizer
	cache        *cache.Service
	audit        audit.Service
	notifier     notification.Service
	events       EventEmitter
	metrics      MetricsCollector
	log          zerolog.Logger
	cfg          Config
}

// NewService creates the payment engine. cache may be nil; everything else is
// required.
func NewService(
	transactions repositories.TransactionRepository,
	merchants repositories.MerchantRepository,
	refunds repositories.RefundRepository,
	links repositories.PaymentLinkRepository,
	authorizer Authorizer,
	cacheSvc *cache.Service,
	auditSvc audit.Service,
	notifier notification.Service,
	events EventEmitter,
	metrics MetricsCollector,
	log zerolog.Logger,
	cfg Config,
) Service {
	if transactions == nil || merchants == nil || refunds == nil || links == nil {
		panic("payment repositories are required")
	}
	if authorizer == nil {
		panic("authorizer is required")
	}
	if auditSvc == nil {
		panic("audit service is required")
	}
	if events == nil {
		events = NoopEmitter{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	if cfg.RefundDelay <= 0 {
		cfg.RefundDelay = DefaultRefundDelay
	}

	return &service{
		transactions: transactions,
		merchants:    merchants,
		refunds:      refunds,
		links:        links,
		authorizer:   authorizer,
		cache:        cacheSvc,
		audit:        auditSvc,
		notifier:     notifier,
		events:       events,
		metrics:      metrics,
		log:          log.With().Str("component", "payment").Logger(),
		cfg:          cfg,
	}
}

func (s *service) CreatePayment(ctx context.Context, merchantID, userID uint, req CreatePaymentRequest) (*CreatePaymentResult, error) {
	merchant, err := s.merchants.GetByID(ctx, merchantID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrMerchantInactive
	}
	if err != nil {
		return nil, fmt.Errorf("load merchant: %w", err)
	}
	if !merchant.IsActive {
		return nil, ErrMerchantInactive
	}

	if req.Amount < merchant.MinAmount || req.Amount > merchant.MaxAmount {
		return nil, &AmountBoundsError{Min: merchant.MinAmount, Max: merchant.MaxAmount}
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	commission := req.Amount * merchant.CommissionRate / 100
	t := &models.Transaction{
		MerchantID:      merchantID,
		OrderID:         utils.OrderID(),
		Amount:          req.Amount,
		Currency:        currency,
		Status:          models.StatusPending,
		PaymentMethod:   models.MethodUPI, // default, updated during processing
		CustomerDetails: req.CustomerDetails,
		Description:     req.Description,
		Metadata:        req.Metadata,
		Fees:            commission,
		Commission:      commission,
		NetAmount:       req.Amount - commission,
	}

	if err := s.transactions.CreateEnforcingDailyLimit(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrDailyLimitExceeded) {
			return nil, ErrDailyLimitExceeded
		}
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     models.ActionPaymentCreated,
		Resource:   "Transaction",
		ResourceID: t.OrderID,
		Details:    models.JSON{"orderId": t.OrderID, "amount": t.Amount, "currency": t.Currency},
	})
	s.metrics.RecordCreated(t.Amount)

	return &CreatePaymentResult{
		Transaction: t,
		PaymentURL:  s.cfg.ClientURL + "/pay/" + t.OrderID,
	}, nil
}

func (s *service) ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (*models.Transaction, error) {
	start := time.Now()

	t, err := s.transactions.GetByOrderID(ctx, req.OrderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}

	// Conditional transition: PENDING -> PROCESSING. Anything else has been
	// processed already (or concurrently) and must not be mutated again.
	ok, err := s.transactions.MarkProcessing(ctx, t.ID, req.PaymentMethod, req.PaymentDetails)
	if err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}
	if !ok {
		return nil, ErrNotPending
	}
	t.Status = models.StatusProcessing
	t.PaymentMethod = req.PaymentMethod
	t.PaymentDetails = req.PaymentDetails

	outcome, err := s.authorizer.Authorize(ctx, t)
	if err != nil {
		s.log.Error().Err(err).Str("order_id", t.OrderID).Msg("authorizer error, declining")
		outcome = Outcome{Approved: false, Reason: "Payment gateway error"}
	}

	now := time.Now()
	if outcome.Approved {
		t.Status = models.StatusCompleted
		t.ProcessedAt = &now
		t.CompletedAt = &now
		t.GatewayResponse = models.JSON{
			"success":         true,
			"transactionId":   outcome.Reference,
			"responseCode":    "SUCCESS",
			"responseMessage": "Transaction successful",
		}
	} else {
		t.Status = models.StatusFailed
		t.FailureReason = outcome.Reason
		t.FailedAt = &now
		t.GatewayResponse = models.JSON{
			"success":         false,
			"responseCode":    "FAILED",
			"responseMessage": outcome.Reason,
		}
	}

	if err := s.transactions.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("finalize transaction: %w", err)
	}

	if outcome.Approved {
		if err := s.merchants.IncrementTotals(ctx, t.MerchantID, t.Amount, t.Fees); err != nil {
			s.log.Error().Err(err).Str("order_id", t.OrderID).Msg("failed to update merchant totals")
		}
	}

	s.notifyCustomer(t, outcome)
	s.recordOutcomeAudit(ctx, t)
	s.emitOutcomeEvent(ctx, t)
	s.invalidateStatus(ctx, t.OrderID)
	s.metrics.RecordOutcome(t.Status, t.Amount, time.Since(start))

	return t, nil
}

func (s *service) notifyCustomer(t *models.Transaction, outcome Outcome) {
	if s.notifier == nil {
		return
	}
	email := t.CustomerDetails.String("email")
	if email == "" {
		return
	}

	data := map[string]interface{}{
		"CustomerName": t.CustomerDetails.String("name"),
		"Amount":       t.Amount,
		"Currency":     t.Currency,
		"OrderID":      t.OrderID,
		"Date":         time.Now().Format("02 Jan 2006"),
	}
	msg := notification.Message{
		To:       email,
		ToName:   t.CustomerDetails.String("name"),
		Subject:  "Payment Successful",
		Template: notification.TemplatePaymentSuccess,
		Data:     data,
	}
	if !outcome.Approved {
		msg.Subject = "Payment Failed"
		msg.Template = notification.TemplatePaymentFailed
		data["Reason"] = outcome.Reason
	}
	s.notifier.Dispatch(msg)
}

func (s *service) recordOutcomeAudit(ctx context.Context, t *models.Transaction) {
	action := models.ActionPaymentFailed
	if t.Status == models.StatusCompleted {
		action = models.ActionPaymentCompleted
	}
	var actor *uint
	if t.Merchant != nil {
		actor = &t.Merchant.UserID
	}
	s.audit.Record(ctx, audit.Entry{
		UserID:     actor,
		Action:     action,
		Resource:   "Transaction",
		ResourceID: t.OrderID,
		Details:    models.JSON{"orderId": t.OrderID, "status": t.Status, "amount": t.Amount},
	})
}

func (s *service) emitOutcomeEvent(ctx context.Context, t *models.Transaction) {
	event := models.EventPaymentFailed
	if t.Status == models.StatusCompleted {
		event = models.EventPaymentCompleted
	}
	s.events.Emit(ctx, t.MerchantID, event, models.JSON{
		"orderId":  t.OrderID,
		"amount":   t.Amount,
		"currency": t.Currency,
		"status":   t.Status,
	})
}

func (s *service) invalidateStatus(ctx context.Context, orderID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTransaction(ctx, orderID); err != nil {
		s.log.Warn().Err(err).Str("order_id", orderID).Msg("cache invalidation failed")
	}
}

func (s *service) GetPaymentStatus(ctx context.Context, orderID string) (*models.Transaction, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetTransaction(ctx, orderID); err == nil && cached != nil {
			return cached, nil
		}
	}

	t, err := s.transactions.GetByOrderID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheTransaction(ctx, t); err != nil {
			s.log.Warn().Err(err).Str("order_id", orderID).Msg("status cache write failed")
		}
	}
	return t, nil
}

func (s *service) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	t, err := s.transactions.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	return t, err
}

func (s *service) CreateRefund(ctx context.Context, merchantID, userID uint, req RefundRequest) (*models.Refund, error) {
	t, err := s.transactions.GetByID(ctx, req.TransactionID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}

	if t.MerchantID != merchantID {
		return nil, ErrAccessDenied
	}
	if t.Status != models.StatusCompleted {
		return nil, ErrNotRefundable
	}
	if req.Amount > t.RefundableAmount() {
		return nil, ErrRefundExceedsRemainder
	}

	refund := &models.Refund{
		TransactionID: t.ID,
		MerchantID:    merchantID,
		UserID:        userID,
		RefundID:      utils.RefundID(),
		Amount:        req.Amount,
		Reason:        req.Reason,
		Status:        models.RefundStatusPending,
		ScheduledFor:  time.Now().Add(s.cfg.RefundDelay),
	}

	// The remainder check and the increment are one conditional update in the
	// repository, so a concurrent refund cannot slip past the fast path above.
	if err := s.refunds.CreateAndApply(ctx, refund); err != nil {
		if errors.Is(err, repositories.ErrRefundExceedsRemainder) {
			return nil, ErrRefundExceedsRemainder
		}
		return nil, fmt.Errorf("create refund: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     models.ActionRefundCreated,
		Resource:   "Refund",
		ResourceID: refund.RefundID,
		Details:    models.JSON{"transactionId": t.ID, "amount": req.Amount, "reason": req.Reason},
	})
	s.events.Emit(ctx, merchantID, models.EventRefundCreated, models.JSON{
		"refundId": refund.RefundID,
		"orderId":  t.OrderID,
		"amount":   refund.Amount,
	})
	s.invalidateStatus(ctx, t.OrderID)
	s.metrics.RecordRefundCreated(refund.Amount)

	return refund, nil
}

func (s *service) GetRefund(ctx context.Context, refundID string) (*models.Refund, error) {
	refund, err := s.refunds.GetByRefundID(ctx, refundID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrRefundNotFound
	}
	if err != nil {
		return nil, err
	}
	return refund, nil
}

func (s *service) SimulatePayment(ctx context.Context, actorID uint, req SimulateRequest) (*models.Transaction, error) {
	t, err := s.transactions.GetByOrderID(ctx, req.OrderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	t.Status = req.Status
	t.ProcessedAt = &now
	switch req.Status {
	case models.StatusCompleted:
		t.CompletedAt = &now
		t.GatewayResponse = models.JSON{
			"success":         true,
			"transactionId":   fmt.Sprintf("TXN_%d", now.UnixMilli()),
			"responseCode":    "SUCCESS",
			"responseMessage": "Transaction successful",
		}
	case models.StatusFailed:
		t.FailedAt = &now
		t.FailureReason = req.FailureReason
		t.GatewayResponse = models.JSON{
			"success":         false,
			"responseCode":    "FAILED",
			"responseMessage": req.FailureReason,
		}
	}

	if err := s.transactions.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("simulate payment: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &actorID,
		Action:     models.ActionPaymentSimulated,
		Resource:   "Transaction",
		ResourceID: t.OrderID,
		Details:    models.JSON{"orderId": t.OrderID, "status": req.Status},
	})
	s.invalidateStatus(ctx, t.OrderID)

	return t, nil
}

func (s *service) HandleCallback(ctx context.Context, req CallbackRequest) error {
	t, err := s.transactions.GetByOrderID(ctx, req.OrderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrTransactionNotFound
	}
	if err != nil {
		return err
	}

	now := time.Now()
	t.Status = req.Status
	t.GatewayResponse = req.Raw
	t.ProcessedAt = &now
	switch req.Status {
	case models.StatusCompleted:
		t.CompletedAt = &now
	case models.StatusFailed:
		t.FailedAt = &now
	}

	if err := s.transactions.Update(ctx, t); err != nil {
		return fmt.Errorf("apply callback: %w", err)
	}
	s.invalidateStatus(ctx, t.OrderID)
	return nil
}

func (s *service) CreatePaymentLink(ctx context.Context, merchantID, userID uint, req LinkRequest) (*models.PaymentLink, string, error) {
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}
	expiresAt := time.Now().Add(7 * 24 * time.Hour)
	if req.ExpiresAt != nil {
		expiresAt = *req.ExpiresAt
	}

	link := &models.PaymentLink{
		LinkID:          utils.LinkID(),
		MerchantID:      merchantID,
		Amount:          req.Amount,
		Currency:        currency,
		Description:     req.Description,
		CustomerDetails: req.CustomerDetails,
		ExpiresAt:       expiresAt,
		IsActive:        true,
	}

	if err := s.links.Create(ctx, link); err != nil {
		return nil, "", fmt.Errorf("create payment link: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     models.ActionPaymentLink,
		Resource:   "PaymentLink",
		ResourceID: link.LinkID,
		Details:    models.JSON{"amount": link.Amount, "currency": link.Currency},
	})

	return link, s.cfg.ClientURL + "/pay/link/" + link.LinkID, nil
}

func (s *service) GetPaymentLink(ctx context.Context, linkID string) (*models.PaymentLink, error) {
	link, err := s.links.GetByLinkID(ctx, linkID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	if !link.Usable(time.Now()) {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

func (s *service) ListMerchantPayments(ctx context.Context, merchantID uint, filter repositories.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error) {
	return s.transactions.ListByMerchant(ctx, merchantID, filter, offset, limit)
}
