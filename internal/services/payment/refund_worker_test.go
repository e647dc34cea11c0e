package payment

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"payflow/internal/models"
)

func TestRefundWorkerSweep(t *testing.T) {
	t.Run("emits a completion event per due refund", func(t *testing.T) {
		refunds := new(mockRefundRepo)
		due := []models.Refund{
			{MerchantID: 1, RefundID: "REFUND_A", Amount: 100},
			{MerchantID: 2, RefundID: "REFUND_B", Amount: 250},
		}
		refunds.On("CompleteDue", mock.Anything, mock.AnythingOfType("time.Time")).Return(due, nil)

		emitter := &recordingEmitter{}
		w := NewRefundWorker(refunds, emitter, NoopMetrics{}, zerolog.Nop(), 0)
		w.Sweep(context.Background())

		assert.Equal(t, []string{models.EventRefundCompleted, models.EventRefundCompleted}, emitter.events)
	})

	t.Run("quiet when nothing is due", func(t *testing.T) {
		refunds := new(mockRefundRepo)
		refunds.On("CompleteDue", mock.Anything, mock.Anything).Return([]models.Refund{}, nil)

		emitter := &recordingEmitter{}
		w := NewRefundWorker(refunds, emitter, NoopMetrics{}, zerolog.Nop(), 0)
		w.Sweep(context.Background())

		assert.Empty(t, emitter.events)
	})

	t.Run("swallows repository errors", func(t *testing.T) {
		refunds := new(mockRefundRepo)
		refunds.On("CompleteDue", mock.Anything, mock.Anything).Return(nil, assert.AnError)

		emitter := &recordingEmitter{}
		w := NewRefundWorker(refunds, emitter, NoopMetrics{}, zerolog.Nop(), 0)
		w.Sweep(context.Background())

		assert.Empty(t, emitter.events)
	})
}
