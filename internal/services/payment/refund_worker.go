package payment

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"payflow/internal/models"
	"payflow/internal/repositories"
)

// RefundWorker completes pending refunds whose ScheduledFor has passed. The
// schedule lives in the refunds table, so a restart picks up where the
// previous process stopped.
type RefundWorker struct {
	refunds  repositories.RefundRepository
	events   EventEmitter
	metrics  MetricsCollector
	log      zerolog.Logger
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewRefundWorker(
	refunds repositories.RefundRepository,
	events EventEmitter,
	metrics MetricsCollector,
	log zerolog.Logger,
	interval time.Duration,
) *RefundWorker {
	if refunds == nil {
		panic("refund repository is required")
	}
	if events == nil {
		events = NoopEmitter{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &RefundWorker{
		refunds:  refunds,
		events:   events,
		metrics:  metrics,
		log:      log.With().Str("component", "refund_worker").Logger(),
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (w *RefundWorker) Start() {
	go w.run()
}

func (w *RefundWorker) run() {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Sweep immediately so refunds left pending by a previous process do not
	// wait for the first tick.
	w.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			w.Sweep(context.Background())
		case <-w.stop:
			return
		}
	}
}

// Sweep completes every due refund and emits their completion events.
func (w *RefundWorker) Sweep(ctx context.Context) {
	due, err := w.refunds.CompleteDue(ctx, time.Now())
	if err != nil {
		w.log.Error().Err(err).Msg("refund sweep failed")
		return
	}
	if len(due) == 0 {
		return
	}

	for _, refund := range due {
		w.events.Emit(ctx, refund.MerchantID, models.EventRefundCompleted, models.JSON{
			"refundId": refund.RefundID,
			"amount":   refund.Amount,
		})
	}
	w.metrics.RecordRefundsSwept(len(due))
	w.log.Info().Int("count", len(due)).Msg("completed due refunds")
}

// Stop terminates the loop and waits for it to exit.
func (w *RefundWorker) Stop() {
	close(w.stop)
	<-w.done
}
