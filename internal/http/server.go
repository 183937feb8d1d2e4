package http

import (
	"net/http"

	"github.com/mauv0809/ndv-elo/internal/config"
	"github.com/mauv0809/ndv-elo/internal/ingest"
	"github.com/mauv0809/ndv-elo/internal/league"
	"github.com/mauv0809/ndv-elo/internal/metrics"
	"github.com/mauv0809/ndv-elo/internal/notifier"
	"github.com/mauv0809/ndv-elo/internal/processor"
	"github.com/mauv0809/ndv-elo/internal/pubsub"
)

func NewServer(store league.LeagueStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, metricsStore metrics.MetricsStore, cfg config.Config, notifier notifier.Notifier, processor *processor.Processor, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		MetricsStore:   metricsStore,
		Cfg:            cfg,
		Notifier:       notifier,
		Processor:      processor,
		Importer:       ingest.New(store),
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/stats", Chain(s.StatsHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/players/ratings", Chain(s.PlayerRatingsHandler(), paramsMiddleware))
	s.Router.Handle("/head-to-head", Chain(s.HeadToHeadHandler(), paramsMiddleware))
	s.Router.Handle("/predict", Chain(s.PredictHandler(), paramsMiddleware))
	s.Router.Handle("/compute", Chain(s.ComputeHandler(), paramsMiddleware))
	s.Router.Handle("/import", Chain(s.ImportHandler(), paramsMiddleware))
	s.Router.Handle("/pubsub/compute", Chain(s.PubSubComputeHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware, slackVerifier(s.Cfg.Slack.SigningSecret)))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
