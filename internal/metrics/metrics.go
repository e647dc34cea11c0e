// Package metrics exposes engine activity as Prometheus series.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements the payment engine's metrics hook.
type Collector struct {
	created        prometheus.Counter
	createdAmount  prometheus.Counter
	outcomes       *prometheus.CounterVec
	outcomeAmounts *prometheus.CounterVec
	processingTime prometheus.Histogram
	refundsCreated prometheus.Counter
	refundAmount   prometheus.Counter
	refundsSwept   prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		created: factory.NewCounter(prometheus.CounterOpts{
			Name: "payflow_payments_created_total",
			Help: "Payments created, before processing.",
		}),
		createdAmount: factory.NewCounter(prometheus.CounterOpts{
			Name: "payflow_payments_created_amount_total",
			Help: "Total amount of created payments.",
		}),
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payflow_payments_processed_total",
			Help: "Processed payments by final status.",
		}, []string{"status"}),
		outcomeAmounts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payflow_payments_processed_amount_total",
			Help: "Total processed amount by final status.",
		}, []string{"status"}),
		processingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "payflow_payment_processing_seconds",
			Help:    "Wall time from process request to final status.",
			Buckets: prometheus.DefBuckets,
		}),
		refundsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "payflow_refunds_created_total",
			Help: "Refunds created.",
		}),
		refundAmount: factory.NewCounter(prometheus.CounterOpts{
			Name: "payflow_refunds_amount_total",
			Help: "Total refunded amount.",
		}),
		refundsSwept: factory.NewCounter(prometheus.CounterOpts{
			Name: "payflow_refunds_completed_total",
			Help: "Refunds completed by the sweep worker.",
		}),
	}
}

func (c *Collector) RecordCreated(amount float64) {
	c.created.Inc()
	c.createdAmount.Add(amount)
}

func (c *Collector) RecordOutcome(status string, amount float64, duration time.Duration) {
	status = strings.ToLower(status)
	c.outcomes.WithLabelValues(status).Inc()
	c.outcomeAmounts.WithLabelValues(status).Add(amount)
	c.processingTime.Observe(duration.Seconds())
}

func (c *Collector) RecordRefundCreated(amount float64) {
	c.refundsCreated.Inc()
	c.refundAmount.Add(amount)
}

func (c *Collector) RecordRefundsSwept(count int) {
	c.refundsSwept.Add(float64(count))
}
