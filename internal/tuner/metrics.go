package tuner

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	probesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modeltune",
			Subsystem: "tuner",
			Name:      "probes_total",
			Help:      "Total inference probes issued",
		},
		[]string{"result"},
	)

	shrinkStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modeltune",
			Subsystem: "tuner",
			Name:      "shrink_steps_total",
			Help:      "Downward ladder steps taken",
		},
		[]string{"param"},
	)

	climbStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modeltune",
			Subsystem: "tuner",
			Name:      "climb_steps_total",
			Help:      "Upward climb steps proposed",
		},
		[]string{"param", "result"},
	)

	sessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modeltune",
			Subsystem: "tuner",
			Name:      "sessions_total",
			Help:      "Completed tuning sessions",
		},
		[]string{"outcome"},
	)

	sessionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "modeltune",
			Subsystem: "tuner",
			Name:      "session_duration_seconds",
			Help:      "Duration of tuning sessions in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
)

func init() {
	prometheus.MustRegister(probesTotal, shrinkStepsTotal, climbStepsTotal, sessionsTotal, sessionDuration)
}
