package metrics

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink on top of client_golang collectors.
type PrometheusSink struct {
	requestsAccepted    *prometheus.CounterVec
	requestsRejected    *prometheus.CounterVec
	deliveriesScheduled prometheus.Counter
	deliveriesTotal     *prometheus.CounterVec
	deliveryDuration    *prometheus.HistogramVec
	deliveriesAbandoned prometheus.Counter
}

// NewPrometheusSink creates the collectors and registers them with reg.
// Registration failures are logged; the sink stays usable either way.
func NewPrometheusSink(reg prometheus.Registerer, logger *slog.Logger) *PrometheusSink {
	s := &PrometheusSink{}

	s.requestsAccepted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fakewebhook_requests_accepted_total",
		Help: "Inbound event requests accepted, by event type.",
	}, []string{"event_type"})
	s.requestsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fakewebhook_requests_rejected_total",
		Help: "Inbound event requests rejected, by validation code.",
	}, []string{"code"})
	s.deliveriesScheduled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fakewebhook_deliveries_scheduled_total",
		Help: "Deferred deliveries scheduled.",
	})
	s.deliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fakewebhook_deliveries_total",
		Help: "Delivery attempts by event type, outcome and status class.",
	}, []string{"event_type", "outcome", "status_class"})
	s.deliveryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fakewebhook_delivery_duration_seconds",
		Help:    "Callback request latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"event_type"})
	s.deliveriesAbandoned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fakewebhook_deliveries_abandoned_total",
		Help: "Deliveries dropped because the process was shutting down.",
	})

	for name, c := range map[string]prometheus.Collector{
		"fakewebhook_requests_accepted_total":    s.requestsAccepted,
		"fakewebhook_requests_rejected_total":    s.requestsRejected,
		"fakewebhook_deliveries_scheduled_total": s.deliveriesScheduled,
		"fakewebhook_deliveries_total":           s.deliveriesTotal,
		"fakewebhook_delivery_duration_seconds":  s.deliveryDuration,
		"fakewebhook_deliveries_abandoned_total": s.deliveriesAbandoned,
	} {
		if err := reg.Register(c); err != nil {
			logger.Warn("Failed to register metric", "metric", name, "error", err)
		}
	}
	return s
}

func (s *PrometheusSink) RequestAccepted(eventType string) {
	s.requestsAccepted.WithLabelValues(eventType).Inc()
}

func (s *PrometheusSink) RequestRejected(code string) {
	s.requestsRejected.WithLabelValues(code).Inc()
}

func (s *PrometheusSink) DeliveryScheduled() {
	s.deliveriesScheduled.Inc()
}

func (s *PrometheusSink) DeliveryCompleted(eventType, statusClass string, duration time.Duration) {
	s.deliveriesTotal.WithLabelValues(eventType, OutcomeFor(statusClass), statusClass).Inc()
	s.deliveryDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

func (s *PrometheusSink) DeliveryAbandoned() {
	s.deliveriesAbandoned.Inc()
}
