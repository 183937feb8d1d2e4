package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	RatingPasses       prometheus.Counter
	TeamMatchesRated   prometheus.Counter
	SubMatchesRated    *prometheus.CounterVec
	SubMatchesSkipped  *prometheus.CounterVec
	RatingsBackfilled  prometheus.Counter
	MatchDuration      prometheus.Histogram
	LastPassDuration   prometheus.Gauge
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
