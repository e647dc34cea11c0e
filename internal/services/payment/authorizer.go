package payment

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"payflow/internal/models"
)

// Outcome is an authorization decision.
type Outcome struct {
	Approved  bool
	Reason    string
	Reference string
}

// Authorizer decides whether a payment goes through. The engine depends on
// this interface only, so a real gateway integration can replace the
// simulated one without touching the state machine.
type Authorizer interface {
	Authorize(ctx context.Context, t *models.Transaction) (Outcome, error)
}

const defaultSuccessRate = 0.9

// RandomAuthorizer approves a fixed fraction of payments. It stands in for a
// gateway in demo and test environments.
type RandomAuthorizer struct {
	SuccessRate float64
}

func (a RandomAuthorizer) Authorize(_ context.Context, _ *models.Transaction) (Outcome, error) {
	rate := a.SuccessRate
	if rate <= 0 || rate > 1 {
		rate = defaultSuccessRate
	}
	if rand.Float64() < rate {
		return Outcome{
			Approved:  true,
			Reference: fmt.Sprintf("TXN_%d", time.Now().UnixMilli()),
		}, nil
	}
	return Outcome{
		Approved: false,
		Reason:   "Payment gateway error",
	}, nil
}

// StaticAuthorizer always answers the same way. Test helper.
type StaticAuthorizer struct {
	Outcome Outcome
	Err     error
}

func (a StaticAuthorizer) Authorize(context.Context, *models.Transaction) (Outcome, error) {
	return a.Outcome, a.Err
}
