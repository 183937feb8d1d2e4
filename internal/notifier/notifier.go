package notifier

import (
	"time"

	"github.com/mauv0809/ndv-elo/internal/league"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// After a rating pass
	SendRatingSummary(report RatingReport, dryRun bool) error
	// For a competition ranking
	SendLeaderboard(competition league.Competition, entries []league.LeaderboardEntry, dryRun bool) error

	// For formatting HTTP responses
	FormatLeaderboardResponse(competition league.Competition, entries []league.LeaderboardEntry) (any, error)
}

// RatingReport describes the outcome of one rating pass.
type RatingReport struct {
	RunID          string
	MatchesRated   int
	SinglesRated   int
	DoublesRated   int
	Skipped        int
	Backfilled     int
	MissingContext int
	LastMatchDate  time.Time
	Duration       time.Duration
}
