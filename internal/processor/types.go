package processor

import (
	"sync"
	"time"

	"github.com/mauv0809/ndv-elo/internal/metrics"
	"github.com/mauv0809/ndv-elo/internal/pubsub"
	"github.com/mauv0809/ndv-elo/internal/trueskill"
)

// Processor rates team matches and publishes the outcome.
type Processor struct {
	// mu serializes rating passes within one process.
	mu       sync.Mutex
	store    Store
	pubsub   pubsub.PubSubClient
	notifier Notifier
	metrics  metrics.Metrics
	env      trueskill.Env
	now      func() time.Time
}

// Options select what a rating pass processes.
type Options struct {
	// Season restricts the pass to one season, empty means all seasons.
	Season string
	// DryRun computes every team match but rolls its transaction back.
	DryRun bool
}

// Summary describes a finished rating pass.
type Summary struct {
	RunID          string        `json:"run_id"`
	MatchesRated   int           `json:"matches_rated"`
	SinglesRated   int           `json:"singles_rated"`
	DoublesRated   int           `json:"doubles_rated"`
	Skipped        int           `json:"skipped"`
	Backfilled     int           `json:"backfilled"`
	LastMatchDate  time.Time     `json:"last_match_date"`
	MissingContext []int64       `json:"missing_context,omitempty"`
	Duration       time.Duration `json:"duration"`
	DryRun         bool          `json:"dry_run"`
}

// Prediction is the expected outcome of a game between two sides.
type Prediction struct {
	HomeWinProbability float64 `json:"home_win_probability"`
	AwayWinProbability float64 `json:"away_win_probability"`
	Quality            float64 `json:"quality"`
	// Unrated lists players that were assumed to hold the default prior.
	Unrated []int64 `json:"unrated,omitempty"`
}

// matchCounts are the per team match tallies merged into a Summary.
type matchCounts struct {
	singles      int
	doubles      int
	skipped      int
	alreadyRated bool
}
