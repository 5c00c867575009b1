// Package metrics declares the Prometheus collectors of the detector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline Metrics
var (
	// FramesProcessed counts frames that reached the state machine
	FramesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "handsignal_frames_processed_total",
			Help: "Total frames evaluated by the state machine",
		},
	)

	// HandsRejected counts hand observations skipped as malformed
	HandsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "handsignal_hands_rejected_total",
			Help: "Total hand observations skipped as malformed",
		},
	)

	// DetectorErrors counts frames where the estimator failed
	DetectorErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "handsignal_detector_errors_total",
			Help: "Total estimator failures, each processed as an empty frame",
		},
	)

	// StateTransitions counts status changes by edge and reason
	StateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handsignal_state_transitions_total",
			Help: "Total state machine transitions by from, to and reason",
		},
		[]string{"from", "to", "reason"},
	)
)

// Alert Metrics
var (
	// AlertsTotal counts alert sends by result (delivered, failed, skipped)
	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handsignal_alerts_total",
			Help: "Total distress alerts by delivery result",
		},
		[]string{"result"},
	)

	// AlertDuration tracks alert send latency in seconds
	AlertDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "handsignal_alert_duration_seconds",
			Help:    "Alert send duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)
)
