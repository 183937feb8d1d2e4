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

type Server struct {
	Store          league.LeagueStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	MetricsStore   metrics.MetricsStore
	Cfg            config.Config
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Importer       *ingest.Importer
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

// pushEnvelope is the body of a Pub/Sub push request.
type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data string `json:"data"` // base64-encoded MessagePack payload
	} `json:"message"`
}

// computeResponse reports a rating pass. Warning carries the players that
// could not be given a rating.
type computeResponse struct {
	Summary processor.Summary `json:"summary"`
	Warning string            `json:"warning,omitempty"`
}

type playerRatingsResponse struct {
	Player  league.Player        `json:"player"`
	Ratings []league.SkillRating `json:"ratings"`
}
