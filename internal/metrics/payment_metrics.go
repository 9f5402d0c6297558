package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics содержит метрики платёжного оркестратора.
type PaymentMetrics struct {
	paymentsInitiated prometheus.Counter
	paymentsSucceeded prometheus.Counter
	paymentsFailed    prometheus.Counter

	callbacksReceived  prometheus.Counter
	callbacksProcessed prometheus.Counter
	callbacksUnmatched prometheus.Counter

	initiateDuration prometheus.Histogram
	callbackDuration prometheus.Histogram
}

// NewPaymentMetrics создаёт метрики в default-регистраторе Prometheus.
func NewPaymentMetrics() *PaymentMetrics {
	return newPaymentMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newPaymentMetricsWithRegisterer(registerer prometheus.Registerer) *PaymentMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &PaymentMetrics{
		paymentsInitiated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_payments_initiated_total",
			Help: "Total number of payment initiation requests",
		}),
		paymentsSucceeded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_payments_succeeded_total",
			Help: "Total number of successfully initiated payments",
		}),
		paymentsFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_payments_failed_total",
			Help: "Total number of payment initiations rejected by the gateway",
		}),
		callbacksReceived: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_payment_callbacks_received_total",
			Help: "Total number of payment callbacks received",
		}),
		callbacksProcessed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_payment_callbacks_processed_total",
			Help: "Total number of payment callbacks post-processed by a gateway",
		}),
		callbacksUnmatched: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_payment_callbacks_unmatched_total",
			Help: "Total number of payment callbacks no configured gateway validated",
		}),
		initiateDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "orders_payment_initiate_duration_seconds",
			Help:    "Duration of payment initiation in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		callbackDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "orders_payment_callback_duration_seconds",
			Help:    "Duration of payment callback reconciliation in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordPaymentInitiated увеличивает счётчик инициаций платежей.
func (m *PaymentMetrics) RecordPaymentInitiated() {
	m.paymentsInitiated.Inc()
}

// RecordPaymentSucceeded увеличивает счётчик успешных инициаций.
func (m *PaymentMetrics) RecordPaymentSucceeded() {
	m.paymentsSucceeded.Inc()
}

// RecordPaymentFailed увеличивает счётчик отклонённых шлюзом инициаций.
func (m *PaymentMetrics) RecordPaymentFailed() {
	m.paymentsFailed.Inc()
}

// RecordCallbackReceived увеличивает счётчик принятых callback-ов.
func (m *PaymentMetrics) RecordCallbackReceived() {
	m.callbacksReceived.Inc()
}

// RecordCallbackProcessed увеличивает счётчик пост-обработанных callback-ов.
func (m *PaymentMetrics) RecordCallbackProcessed() {
	m.callbacksProcessed.Inc()
}

// RecordCallbackUnmatched увеличивает счётчик callback-ов, не признанных
// ни одним шлюзом.
func (m *PaymentMetrics) RecordCallbackUnmatched() {
	m.callbacksUnmatched.Inc()
}

// RecordInitiateDuration записывает длительность инициации платежа.
func (m *PaymentMetrics) RecordInitiateDuration(duration time.Duration) {
	m.initiateDuration.Observe(duration.Seconds())
}

// RecordCallbackDuration записывает длительность reconciliation callback-а.
func (m *PaymentMetrics) RecordCallbackDuration(duration time.Duration) {
	m.callbackDuration.Observe(duration.Seconds())
}
