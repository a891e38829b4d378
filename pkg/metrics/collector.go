package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	webhookRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Total number of webhook requests labeled by response status",
		},
		[]string{"status"},
	)
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_total",
			Help: "Total number of accepted events labeled by event type",
		},
		[]string{"type"},
	)
	deliveryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_attempts_total",
			Help: "Total number of Telegram send attempts labeled by message kind",
		},
		[]string{"kind"},
	)
	deliveryOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_outcomes_total",
			Help: "Delivery outcomes labeled ok, transient, permanent or exhausted",
		},
		[]string{"outcome"},
	)
	documentOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_operations_total",
			Help: "Shared document reads and writes labeled by operation and status",
		},
		[]string{"op", "status"},
	)
	documentOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "document_operation_duration_seconds",
			Help:    "Duration of shared document reads and writes including lock wait",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	bindingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binding_transitions_total",
			Help: "Binding state transitions labeled by resulting state",
		},
		[]string{"to"},
	)
)

// RecordWebhookRequest counts one webhook response by HTTP status.
func RecordWebhookRequest(status int) {
	webhookRequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// RecordEvent counts one accepted event by type.
func RecordEvent(eventType string) {
	if eventType == "" {
		eventType = "unknown"
	}
	eventsTotal.WithLabelValues(eventType).Inc()
}

// RecordDeliveryAttempt counts one Telegram send attempt.
func RecordDeliveryAttempt(kind string) {
	deliveryAttemptsTotal.WithLabelValues(kind).Inc()
}

// RecordDeliveryOutcome counts the final outcome of one message delivery.
func RecordDeliveryOutcome(outcome string) {
	deliveryOutcomesTotal.WithLabelValues(outcome).Inc()
}

// ObserveDocumentOp records one document store operation with its duration.
func ObserveDocumentOp(op string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	documentOpsTotal.WithLabelValues(op, status).Inc()
	documentOpDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordBindingTransition counts one persisted binding state change.
func RecordBindingTransition(to string) {
	bindingTransitionsTotal.WithLabelValues(to).Inc()
}
