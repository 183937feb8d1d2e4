package processor

import (
	"context"
	"time"

	"github.com/mauv0809/ndv-elo/internal/league"
	"github.com/mauv0809/ndv-elo/internal/notifier"
)

// Store defines the database operations required by the processor.
type Store interface {
	UnratedTeamMatches(ctx context.Context, season string) ([]league.TeamMatch, error)
	BeginMatch(ctx context.Context) (league.MatchTx, error)
	PlayersMissingDefaultRating(ctx context.Context) ([]league.Player, error)
	PlayersWithoutContext(ctx context.Context) ([]league.Player, error)
	CreateRatingIfAbsent(ctx context.Context, rating league.SkillRating) (bool, error)
	LatestMatchDate(ctx context.Context, competitionID int64) (time.Time, bool, error)
	Ratings(ctx context.Context, competitionID int64, playerIDs []int64) (map[int64]league.SkillRating, error)
}

// MatchTx is the per team match unit of work of the Store.
type MatchTx = league.MatchTx

// Notifier defines the notification operations required by the processor.
// This is an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}
