package league_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mauv0809/ndv-elo/internal/database"
	"github.com/mauv0809/ndv-elo/internal/league"
	"github.com/mauv0809/ndv-elo/internal/trueskill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (league.LeagueStore, *sql.DB, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	return league.New(db), db, teardown
}

// seedLeague creates two competitions, two clubs with a team each, four
// players and three team matches of which the second is already rated.
func seedLeague(t *testing.T, db *sql.DB) {
	t.Helper()
	stmts := []string{
		`INSERT INTO competitions (id, name, association, season) VALUES (1, 'Bezirksliga', 'NDV', '2023'), (2, 'Landesliga', 'NDV', '2022')`,
		`INSERT INTO clubs (id, name) VALUES (1, 'DC Hamburg'), (2, 'SV Lurup')`,
		`INSERT INTO teams (id, club_id, rank, season, competition_id) VALUES (1, 1, 'A', '2023', 1), (2, 2, 'A', '2023', 1), (3, 1, 'A', '2022', 2), (4, 2, 'A', '2022', 2)`,
		`INSERT INTO players (id, human_id, name, club_id, team_id, default_competition_id) VALUES
			(1, 'h1', 'Anna Schmidt', 1, 1, 1),
			(2, 'h2', 'Bernd Meyer', 2, 2, 1),
			(3, 'h3', 'Carla Vogt', 1, 1, NULL),
			(4, 'h4', 'Dirk Krause', 2, 2, NULL)`,
		`INSERT INTO team_matches (id, date, competition_id, home_team_id, away_team_id, result, used_for_rating) VALUES
			(3, '2023-02-01', 1, 1, 2, '8:4', 0),
			(2, '2023-01-15', 1, 2, 1, '6:6', 1),
			(1, '2023-02-01', 1, 2, 1, '7:5', 0),
			(4, '2022-03-01', 2, 3, 4, '9:3', 0)`,
		`INSERT INTO singles_matches (team_match_id, home_player_id, away_player_id, result, match_number) VALUES
			(3, 1, 2, '3:1', 2),
			(3, 3, 4, '1:3', 1),
			(1, 2, 1, '3:2', 1)`,
		`INSERT INTO doubles_matches (team_match_id, home_player1_id, home_player2_id, away_player1_id, away_player2_id, result, match_number) VALUES
			(3, 1, 3, 2, 4, '3:0', 1)`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func TestUnratedTeamMatches(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedLeague(t, db)
	ctx := context.Background()

	t.Run("orders by date then id and skips rated matches", func(t *testing.T) {
		matches, err := store.UnratedTeamMatches(ctx, "")
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, int64(4), matches[0].ID)
		assert.Equal(t, int64(1), matches[1].ID)
		assert.Equal(t, int64(3), matches[2].ID)
		assert.Equal(t, time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), matches[1].Date)
		assert.False(t, matches[1].UsedForRating)
	})

	t.Run("filters by season", func(t *testing.T) {
		matches, err := store.UnratedTeamMatches(ctx, "2022")
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, int64(4), matches[0].ID)
	})
}

func TestMatchTx(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedLeague(t, db)
	ctx := context.Background()

	t.Run("loads sub-matches ordered by match number", func(t *testing.T) {
		tx, err := store.BeginMatch(ctx)
		require.NoError(t, err)
		defer tx.Rollback()

		singles, err := tx.SinglesMatches(3)
		require.NoError(t, err)
		require.Len(t, singles, 2)
		assert.Equal(t, 1, singles[0].MatchNumber)
		assert.Equal(t, int64(3), singles[0].HomePlayerID)
		assert.Equal(t, "1:3", singles[0].Result)

		doubles, err := tx.DoublesMatches(3)
		require.NoError(t, err)
		require.Len(t, doubles, 1)
		assert.Equal(t, int64(4), doubles[0].AwayPlayer2ID)
	})

	t.Run("saves ratings and flags the match on commit", func(t *testing.T) {
		tx, err := store.BeginMatch(ctx)
		require.NoError(t, err)

		_, found, err := tx.GetRating(1, 1)
		require.NoError(t, err)
		assert.False(t, found)

		now := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
		rating := league.SkillRating{PlayerID: 1, CompetitionID: 1, Mu: 29.4, Sigma: 7.2, LastUpdate: now}
		require.NoError(t, tx.SaveRating(&rating))
		assert.NotZero(t, rating.ID)

		rating.Mu = 30
		require.NoError(t, tx.SaveRating(&rating))

		got, found, err := tx.GetRating(1, 1)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 30.0, got.Mu)
		assert.Equal(t, now, got.LastUpdate)

		claimed, err := tx.MarkRated(3)
		require.NoError(t, err)
		assert.True(t, claimed)
		require.NoError(t, tx.Commit())

		ratings, err := store.PlayerRatings(ctx, 1)
		require.NoError(t, err)
		require.Len(t, ratings, 1)
		assert.Equal(t, 30.0, ratings[0].Mu)

		matches, err := store.UnratedTeamMatches(ctx, "")
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	})

	t.Run("rollback discards writes", func(t *testing.T) {
		tx, err := store.BeginMatch(ctx)
		require.NoError(t, err)
		rating := league.SkillRating{PlayerID: 2, CompetitionID: 1, Mu: 20, Sigma: 7, LastUpdate: time.Now()}
		require.NoError(t, tx.SaveRating(&rating))
		claimed, err := tx.MarkRated(1)
		require.NoError(t, err)
		assert.True(t, claimed)
		require.NoError(t, tx.Rollback())

		ratings, err := store.PlayerRatings(ctx, 2)
		require.NoError(t, err)
		assert.Empty(t, ratings)

		var used bool
		require.NoError(t, db.QueryRow(`SELECT used_for_rating FROM team_matches WHERE id = 1`).Scan(&used))
		assert.False(t, used)
	})

	t.Run("marking an unknown match fails", func(t *testing.T) {
		tx, err := store.BeginMatch(ctx)
		require.NoError(t, err)
		defer tx.Rollback()
		_, err = tx.MarkRated(999)
		assert.ErrorIs(t, err, league.ErrNotFound)
	})

	t.Run("a rated match cannot be claimed again", func(t *testing.T) {
		tx, err := store.BeginMatch(ctx)
		require.NoError(t, err)
		defer tx.Rollback()
		claimed, err := tx.MarkRated(3)
		require.NoError(t, err)
		assert.False(t, claimed)
	})
}

func TestBackfillQueries(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedLeague(t, db)
	ctx := context.Background()

	missing, err := store.PlayersMissingDefaultRating(ctx)
	require.NoError(t, err)
	require.Len(t, missing, 2)
	assert.Equal(t, "Anna Schmidt", missing[0].Name)
	require.NotNil(t, missing[0].DefaultCompetitionID)
	assert.Equal(t, int64(1), *missing[0].DefaultCompetitionID)
	assert.Nil(t, missing[0].AssociationID)

	orphans, err := store.PlayersWithoutContext(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 2)
	assert.Equal(t, int64(3), orphans[0].ID)

	created, err := store.CreateRatingIfAbsent(ctx, league.SkillRating{PlayerID: 1, CompetitionID: 1, Mu: 25, Sigma: 25.0 / 3, LastUpdate: time.Now()})
	require.NoError(t, err)
	assert.True(t, created)
	created, err = store.CreateRatingIfAbsent(ctx, league.SkillRating{PlayerID: 1, CompetitionID: 1, Mu: 1, Sigma: 1, LastUpdate: time.Now()})
	require.NoError(t, err)
	assert.False(t, created, "an existing rating must not be replaced")

	created, err = store.CreateRatingIfAbsent(ctx, league.SkillRating{PlayerID: 3, CompetitionID: 2, Mu: 25, Sigma: 25.0 / 3, LastUpdate: time.Now()})
	require.NoError(t, err)
	assert.True(t, created)

	missing, err = store.PlayersMissingDefaultRating(ctx)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, int64(2), missing[0].ID)

	orphans, err = store.PlayersWithoutContext(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, int64(4), orphans[0].ID)

	t.Run("latest match date", func(t *testing.T) {
		date, found, err := store.LatestMatchDate(ctx, 1)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), date)

		_, err = db.Exec(`INSERT INTO competitions (id, name, association, season) VALUES (3, 'Kreisliga', 'DBH', '2023')`)
		require.NoError(t, err)
		_, found, err = store.LatestMatchDate(ctx, 3)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestLeaderboardAndRatings(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedLeague(t, db)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO skill_ratings (player_id, competition_id, mu, sigma, last_update) VALUES
		(1, 1, 30, 2, '2023-02-01T00:00:00Z'),
		(2, 1, 35, 6, '2023-02-01T00:00:00Z'),
		(3, 1, 25, 1, '2023-02-01T00:00:00Z'),
		(3, 2, 20, 4, '2022-03-01T00:00:00Z')`)
	require.NoError(t, err)

	entries, err := store.Leaderboard(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Anna Schmidt", entries[0].PlayerName)
	assert.Equal(t, "DC Hamburg", entries[0].ClubName)
	assert.InDelta(t, 24.0, entries[0].Exposure, 1e-9)
	assert.Equal(t, int64(3), entries[1].PlayerID)
	assert.Equal(t, int64(2), entries[2].PlayerID)

	ratings, err := store.PlayerRatings(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, ratings, 2)

	byPlayer, err := store.Ratings(ctx, 1, []int64{1, 2, 4})
	require.NoError(t, err)
	assert.Len(t, byPlayer, 2)
	assert.Equal(t, 35.0, byPlayer[2].Mu)
	_, ok := byPlayer[4]
	assert.False(t, ok)

	t.Run("reset restores defaults", func(t *testing.T) {
		n, err := store.ResetRatings(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)

		ratings, err := store.PlayerRatings(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, trueskill.DefaultMu, ratings[0].Mu)
		assert.Equal(t, trueskill.DefaultSigma, ratings[0].Sigma)

		matches, err := store.UnratedTeamMatches(ctx, "")
		require.NoError(t, err)
		assert.Len(t, matches, 3)
	})

	t.Run("reset with rerate clears rating flags", func(t *testing.T) {
		_, err := store.ResetRatings(ctx, true)
		require.NoError(t, err)

		matches, err := store.UnratedTeamMatches(ctx, "")
		require.NoError(t, err)
		assert.Len(t, matches, 4)
	})
}

func TestHeadToHead(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedLeague(t, db)

	games, err := store.HeadToHead(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, int64(3), games[0].TeamMatchID, "same date, lower singles id first")
	assert.Equal(t, "3:1", games[0].Result)
	assert.Equal(t, int64(2), games[1].HomePlayerID)
	assert.Equal(t, int64(1), games[1].CompetitionID)
}

func TestLookups(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedLeague(t, db)
	ctx := context.Background()

	competitions, err := store.Competitions(ctx)
	require.NoError(t, err)
	require.Len(t, competitions, 2)
	assert.Equal(t, "2023", competitions[0].Season)

	c, err := store.GetCompetition(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Landesliga", c.Name)
	_, err = store.GetCompetition(ctx, 42)
	assert.ErrorIs(t, err, league.ErrNotFound)

	p, err := store.GetPlayer(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Bernd Meyer", p.Name)
	require.NotNil(t, p.TeamID)
	assert.Equal(t, int64(2), *p.TeamID)
	_, err = store.GetPlayer(ctx, 42)
	assert.ErrorIs(t, err, league.ErrNotFound)
}

func TestImportTx(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	tx, err := store.BeginImport(ctx)
	require.NoError(t, err)

	compID, err := tx.UpsertCompetition(league.Competition{Name: "Bezirksliga", Association: "NDV", Season: "2023"})
	require.NoError(t, err)
	again, err := tx.UpsertCompetition(league.Competition{Name: "Bezirksliga", Association: "NDV", Season: "2023"})
	require.NoError(t, err)
	assert.Equal(t, compID, again)

	clubID, err := tx.UpsertClub("DC Hamburg")
	require.NoError(t, err)
	teamID, err := tx.UpsertTeam(league.Team{ClubID: clubID, Rank: "A", Season: "2023", CompetitionID: &compID})
	require.NoError(t, err)
	sameTeam, err := tx.UpsertTeam(league.Team{ClubID: clubID, Rank: "A", Season: "2023"})
	require.NoError(t, err)
	assert.Equal(t, teamID, sameTeam)

	playerID, err := tx.UpsertPlayer(league.Player{Name: "Anna Schmidt", ClubID: clubID})
	require.NoError(t, err)
	assocID := "NDV-123"
	samePlayer, err := tx.UpsertPlayer(league.Player{Name: "Anna Schmidt", ClubID: clubID, TeamID: &teamID, AssociationID: &assocID, DefaultCompetitionID: &compID})
	require.NoError(t, err)
	assert.Equal(t, playerID, samePlayer)
	otherID, err := tx.UpsertPlayer(league.Player{Name: "Bernd Meyer", ClubID: clubID})
	require.NoError(t, err)

	date := time.Date(2023, 3, 4, 0, 0, 0, 0, time.UTC)
	matchID, created, err := tx.UpsertTeamMatch(league.TeamMatch{Date: date, CompetitionID: compID, HomeTeamID: teamID, AwayTeamID: teamID, Result: "-:-"})
	require.NoError(t, err)
	assert.True(t, created)

	added, err := tx.AddSinglesMatch(league.SinglesMatch{TeamMatchID: matchID, HomePlayerID: playerID, AwayPlayerID: otherID, Result: "3:1", MatchNumber: 1})
	require.NoError(t, err)
	assert.True(t, added)
	added, err = tx.AddSinglesMatch(league.SinglesMatch{TeamMatchID: matchID, HomePlayerID: playerID, AwayPlayerID: otherID, Result: "3:1", MatchNumber: 1})
	require.NoError(t, err)
	assert.False(t, added)

	added, err = tx.AddDoublesMatch(league.DoublesMatch{TeamMatchID: matchID, HomePlayer1ID: playerID, HomePlayer2ID: otherID, AwayPlayer1ID: otherID, AwayPlayer2ID: playerID, Result: "2:3", MatchNumber: 1})
	require.NoError(t, err)
	assert.True(t, added)
	require.NoError(t, tx.Commit())

	player, err := store.GetPlayer(ctx, playerID)
	require.NoError(t, err)
	require.NotNil(t, player.AssociationID)
	assert.Equal(t, "NDV-123", *player.AssociationID)
	assert.NotEmpty(t, player.HumanID)

	t.Run("re-import keeps the rating flag", func(t *testing.T) {
		_, err := db.Exec(`UPDATE team_matches SET used_for_rating = 1 WHERE id = ?`, matchID)
		require.NoError(t, err)

		tx, err := store.BeginImport(ctx)
		require.NoError(t, err)
		id, created, err := tx.UpsertTeamMatch(league.TeamMatch{Date: date, CompetitionID: compID, HomeTeamID: teamID, AwayTeamID: teamID, Result: "8:4"})
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		assert.Equal(t, matchID, id)
		assert.False(t, created)

		var used bool
		var result string
		require.NoError(t, db.QueryRow(`SELECT used_for_rating, result FROM team_matches WHERE id = ?`, matchID).Scan(&used, &result))
		assert.True(t, used)
		assert.Equal(t, "8:4", result)
	})
}
