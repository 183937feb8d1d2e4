package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncRatingPasses()
	IncTeamMatchesRated()
	IncSubMatchesRated(kind string)
	IncSubMatchesSkipped(kind string)
	AddRatingsBackfilled(n int)
	ObserveMatchDuration(seconds float64)
	SetLastPassDuration(seconds float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}

// MetricsStore persists counters across restarts.
type MetricsStore interface {
	Add(key string, delta int)
	GetAll() (map[string]int, error)
}

// Sub-match kinds used as label values.
const (
	KindSingles = "singles"
	KindDoubles = "doubles"
)
