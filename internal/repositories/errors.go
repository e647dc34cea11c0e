package repositories

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrDailyLimitExceeded is returned when creating a transaction would push
	// today's completed volume past the merchant's daily limit.
	ErrDailyLimitExceeded = errors.New("daily transaction limit exceeded")

	// ErrRefundExceedsRemainder is returned when the conditional refund update
	// matches no row, i.e. the requested amount no longer fits the refundable
	// remainder or the transaction left COMPLETED/REFUNDED-partial state.
	ErrRefundExceedsRemainder = errors.New("refund amount exceeds available amount")

	// ErrDuplicate is returned on unique-constraint conflicts.
	ErrDuplicate = errors.New("record already exists")
)
