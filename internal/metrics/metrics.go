// Package metrics holds the Prometheus collectors of the incident pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "incidentdetection"

// Analyze outcomes.
const (
	OutcomeEmergency           = "emergency"
	OutcomeNotEmergency        = "not_emergency"
	OutcomeBadRequest          = "bad_request"
	OutcomeClassificationError = "classification_error"
	OutcomeInternalError       = "internal_error"
)

// Notification statuses.
const (
	StatusSent            = "sent"
	StatusFailed          = "failed"
	StatusChannelNotFound = "channel_not_found"
	StatusSkipped         = "skipped"
)

var (
	analyzeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analyze",
			Name:      "requests_total",
			Help:      "Analyze requests by outcome",
		},
		[]string{"outcome"},
	)

	classificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "duration_seconds",
			Help:      "Time spent waiting for the vision model",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 40},
		},
	)

	notificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "sent_total",
			Help:      "Alert notifications by channel and status",
		},
		[]string{"channel", "status"},
	)

	liveSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "subscribers",
			Help:      "Currently connected live subscribers",
		},
	)
)

// RecordAnalyze counts one analyze request.
func RecordAnalyze(outcome string) {
	analyzeRequests.WithLabelValues(outcome).Inc()
}

// RecordClassification observes one classifier round trip.
func RecordClassification(d time.Duration) {
	classificationDuration.Observe(d.Seconds())
}

// RecordNotification counts one notification attempt; channel is "push" or "broadcast".
func RecordNotification(channel, status string) {
	notificationsSent.WithLabelValues(channel, status).Inc()
}

// SetLiveSubscribers updates the connected subscriber gauge.
func SetLiveSubscribers(n int) {
	liveSubscribers.Set(float64(n))
}
