package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		RatingPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "darts_rating_passes_total",
			Help: "The total number of rating passes run.",
		}),
		TeamMatchesRated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "darts_team_matches_rated_total",
			Help: "The total number of team matches applied to ratings.",
		}),
		SubMatchesRated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "darts_sub_matches_rated_total",
			Help: "The total number of singles and doubles applied to ratings.",
		}, []string{"kind"}),
		SubMatchesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "darts_sub_matches_skipped_total",
			Help: "The total number of singles and doubles skipped for an unusable result.",
		}, []string{"kind"}),
		RatingsBackfilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "darts_ratings_backfilled_total",
			Help: "The total number of default ratings created for unrated players.",
		}),
		MatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "darts_team_match_rating_duration_seconds",
			Help:    "The duration of rating a single team match.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		LastPassDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "darts_last_rating_pass_duration_seconds",
			Help: "The duration of the most recent rating pass.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "darts_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "darts_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "darts_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.RatingPasses,
		s.TeamMatchesRated,
		s.SubMatchesRated,
		s.SubMatchesSkipped,
		s.RatingsBackfilled,
		s.MatchDuration,
		s.LastPassDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncRatingPasses() {
	s.RatingPasses.Inc()
}

func (s *Service) IncTeamMatchesRated() {
	s.TeamMatchesRated.Inc()
}

func (s *Service) IncSubMatchesRated(kind string) {
	s.SubMatchesRated.WithLabelValues(kind).Inc()
}

func (s *Service) IncSubMatchesSkipped(kind string) {
	s.SubMatchesSkipped.WithLabelValues(kind).Inc()
}

func (s *Service) AddRatingsBackfilled(n int) {
	s.RatingsBackfilled.Add(float64(n))
}

func (s *Service) ObserveMatchDuration(seconds float64) {
	s.MatchDuration.Observe(seconds)
}

func (s *Service) SetLastPassDuration(seconds float64) {
	s.LastPassDuration.Set(seconds)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
