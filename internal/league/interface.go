package league

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by lookups of a single record that does not exist.
	ErrNotFound = errors.New("league: not found")
	// ErrDuplicateRating signals more than one rating for a player in a competition.
	ErrDuplicateRating = errors.New("league: duplicate skill rating")
)

// LeagueStore defines the interface for interacting with the league's data.
type LeagueStore interface {
	// Rating pipeline
	UnratedTeamMatches(ctx context.Context, season string) ([]TeamMatch, error)
	BeginMatch(ctx context.Context) (MatchTx, error)
	PlayersMissingDefaultRating(ctx context.Context) ([]Player, error)
	PlayersWithoutContext(ctx context.Context) ([]Player, error)
	CreateRatingIfAbsent(ctx context.Context, rating SkillRating) (bool, error)
	LatestMatchDate(ctx context.Context, competitionID int64) (time.Time, bool, error)
	ResetRatings(ctx context.Context, rerate bool) (int64, error)

	// Reporting
	Competitions(ctx context.Context) ([]Competition, error)
	GetCompetition(ctx context.Context, id int64) (Competition, error)
	GetPlayer(ctx context.Context, id int64) (Player, error)
	Leaderboard(ctx context.Context, competitionID int64) ([]LeaderboardEntry, error)
	PlayerRatings(ctx context.Context, playerID int64) ([]SkillRating, error)
	Ratings(ctx context.Context, competitionID int64, playerIDs []int64) (map[int64]SkillRating, error)
	HeadToHead(ctx context.Context, playerA, playerB int64) ([]SinglesGame, error)

	// Ingestion
	BeginImport(ctx context.Context) (ImportTx, error)
}

// MatchTx is the unit of work in which one team match is rated. Nothing it
// writes is visible to other readers before Commit.
type MatchTx interface {
	SinglesMatches(teamMatchID int64) ([]SinglesMatch, error)
	DoublesMatches(teamMatchID int64) ([]DoublesMatch, error)
	// GetRating reports found=false when the player has no rating in the
	// competition yet.
	GetRating(playerID, competitionID int64) (rating SkillRating, found bool, err error)
	// SaveRating inserts the rating or updates it in place and sets its ID.
	SaveRating(rating *SkillRating) error
	// MarkRated flags the team match as used for rating. It reports false,
	// and changes nothing, when another pass already flagged it.
	MarkRated(teamMatchID int64) (claimed bool, err error)
	Commit() error
	Rollback() error
}

// ImportTx upserts crawled league records inside one transaction.
type ImportTx interface {
	UpsertCompetition(c Competition) (int64, error)
	UpsertClub(name string) (int64, error)
	UpsertTeam(t Team) (int64, error)
	// UpsertPlayer matches players by name and club. Missing optional fields
	// of an existing player are filled in, present ones are kept.
	UpsertPlayer(p Player) (int64, error)
	// UpsertTeamMatch reports created=false for a known fixture, whose rating
	// flag is left untouched.
	UpsertTeamMatch(m TeamMatch) (id int64, created bool, err error)
	AddSinglesMatch(m SinglesMatch) (bool, error)
	AddDoublesMatch(m DoublesMatch) (bool, error)
	Commit() error
	Rollback() error
}
