package payment

import (
	"errors"
	"fmt"
)

var (
	ErrMerchantInactive       = errors.New("merchant account is inactive")
	ErrDailyLimitExceeded     = errors.New("daily transaction limit exceeded")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrNotPending             = errors.New("transaction is not in pending status")
	ErrAccessDenied           = errors.New("access denied")
	ErrNotRefundable          = errors.New("only completed transactions can be refunded")
	ErrRefundExceedsRemainder = errors.New("refund amount exceeds available amount")
	ErrRefundNotFound         = errors.New("refund not found")
	ErrLinkNotFound           = errors.New("payment link not found or inactive")
)

// AmountBoundsError reports a per-transaction bounds violation with the
// merchant's configured limits.
type AmountBoundsError struct {
	Min float64
	Max float64
}

func (e *AmountBoundsError) Error() string {
	return fmt.Sprintf("Amount must be between %.2f and %.2f", e.Min, e.Max)
}
